// Package workspace holds the client-side state of one edit session: the
// current project files, the active file, its preview and the chat
// transcript. The transcript is never persisted.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"zapp_server/internal/projects"
	"zapp_server/internal/types"
	"zapp_server/internal/vfs"
)

// ErrBusy is returned when a request is already in flight.
var ErrBusy = errors.New("a generation request is already in progress")

const (
	createdReply = "I've created your project structure. What's next?"
	changedReply = "Here are the changes."
	imageOnly    = "Image prompt"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat transcript entry.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Backend is the server side of a session.
type Backend interface {
	Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error)
	Preview(ctx context.Context, req types.PreviewRequest) (*types.GenerateResponse, error)
}

// State is a copy of the session taken under its lock. Filesystem is nil
// until a project exists.
type State struct {
	Stack       types.Stack
	Filesystem  vfs.Filesystem
	ActiveFile  string
	PreviewCode string
	Messages    []Message
	Loading     bool
}

// Session serializes generation requests: at most one is in flight, and a
// failed request leaves the last good state in place.
type Session struct {
	backend Backend
	log     *logrus.Entry

	mu       sync.Mutex
	stack    types.Stack
	fs       vfs.Filesystem
	active   string
	preview  string
	messages []Message
	loading  bool
}

// NewSession creates an empty session for stack.
func NewSession(backend Backend, stack types.Stack, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		backend: backend,
		stack:   stack,
		log:     log.WithFields(logrus.Fields{"component": "workspace", "stack": stack}),
	}
}

// Open resumes a saved project. The transcript starts empty.
func Open(backend Backend, p *projects.Project, log *logrus.Entry) *Session {
	s := NewSession(backend, p.Stack, log)
	s.fs = p.VirtualFilesystem.Clone()
	s.active = deref(p.ActiveFile)
	s.preview = deref(p.ActiveFilePreviewCode)
	return s
}

// Start discards the current state and generates a new project from prompt.
func (s *Session) Start(ctx context.Context, prompt string, images []string) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.loading = true
	s.fs = nil
	s.active = ""
	s.preview = ""
	s.messages = []Message{{Role: RoleUser, Text: prompt}}
	stack := s.stack
	s.mu.Unlock()

	res, err := s.backend.Generate(ctx, types.GenerateRequest{Prompt: prompt, Stack: stack, Images: images})
	return s.finish(res, err, createdReply)
}

// Submit sends an iterative change request. It does nothing when there is
// no prompt and no image, or no project yet.
func (s *Session) Submit(ctx context.Context, prompt string, images []string) error {
	prompt = strings.TrimSpace(prompt)

	s.mu.Lock()
	if (prompt == "" && len(images) == 0) || s.fs == nil {
		s.mu.Unlock()
		return nil
	}
	if s.loading {
		s.mu.Unlock()
		return ErrBusy
	}
	text := prompt
	if text == "" {
		text = imageOnly
	}
	s.messages = append(s.messages, Message{Role: RoleUser, Text: text})
	s.loading = true
	req := types.GenerateRequest{
		Prompt:            prompt,
		Stack:             s.stack,
		VirtualFilesystem: s.fs.Clone(),
		Images:            images,
	}
	if s.active != "" {
		active := s.active
		req.ActiveFile = &active
	}
	s.mu.Unlock()

	res, err := s.backend.Generate(ctx, req)
	return s.finish(res, err, changedReply)
}

// finish applies a generation result, or records the failure in the
// transcript without touching the project state.
func (s *Session) finish(res *types.GenerateResponse, err error, reply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.log.Warnf("Generation failed: %v", err)
		s.messages = append(s.messages, Message{Role: RoleAssistant, Text: "Error: " + err.Error()})
		return err
	}
	s.fs = res.VirtualFilesystem
	s.active = deref(res.ActiveFile)
	s.preview = deref(res.ActiveFilePreviewCode)
	s.messages = append(s.messages, Message{Role: RoleAssistant, Text: reply})
	return nil
}

// SelectFile makes path the active file. Flutter previews cover the whole
// project so nothing else changes. React Native previews one screen: paths
// outside a screens directory clear the preview, screens get a fresh one.
// A screen selected while a request is in flight returns ErrBusy and
// leaves the state untouched.
func (s *Session) SelectFile(ctx context.Context, path string) error {
	s.mu.Lock()
	if path == s.active {
		s.mu.Unlock()
		return nil
	}
	screen := s.stack != types.StackFlutter && strings.Contains(path, "/screens/")
	if screen && s.loading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.active = path
	if s.stack == types.StackFlutter {
		s.mu.Unlock()
		return nil
	}
	if !screen {
		s.preview = ""
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	req := types.PreviewRequest{Stack: s.stack, VirtualFilesystem: s.fs.Clone(), ActiveFile: &path}
	s.mu.Unlock()

	res, err := s.backend.Preview(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Warnf("Failed to generate preview for %s: %v", path, err)
		if s.active == path {
			s.preview = ""
		}
		return fmt.Errorf("preview %s: %w", path, err)
	}
	// A later selection wins over a slow preview.
	if s.active == path {
		s.preview = deref(res.ActiveFilePreviewCode)
	}
	return nil
}

// State returns a copy of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Stack:       s.stack,
		ActiveFile:  s.active,
		PreviewCode: s.preview,
		Messages:    append([]Message(nil), s.messages...),
		Loading:     s.loading,
	}
	if s.fs != nil {
		st.Filesystem = s.fs.Clone()
	}
	return st
}

// ActiveContent returns the content shown in the code viewer.
func (s *Session) ActiveContent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, _ := s.fs.Get(s.active)
	return content
}

// Tree returns the file explorer view of the project.
func (s *Session) Tree() []*vfs.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fs.Tree()
}

// Snapshot returns the project fields to save under name.
func (s *Session) Snapshot(name, prompt string) projects.NewProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	np := projects.NewProject{
		Name:              name,
		Prompt:            prompt,
		Stack:             s.stack,
		VirtualFilesystem: s.fs.Clone(),
	}
	if s.active != "" {
		active := s.active
		np.ActiveFile = &active
	}
	if s.preview != "" {
		preview := s.preview
		np.ActiveFilePreviewCode = &preview
	}
	return np
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
