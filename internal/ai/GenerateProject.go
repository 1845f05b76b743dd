package ai

import (
	"context"
	"fmt"
	"strings"

	"zapp_server/internal/ai/prompts"
	"zapp_server/internal/vfs"
)

// activeFileHints mark paths that are likely to hold a screen.
var activeFileHints = []string{"screen", "view", "page"}

// GenerateProject creates a fresh project from the prompt with a single
// model call and picks the file to focus.
func (g *Generator) GenerateProject(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	g.log.Infof("Generating %s project", in.Stack)

	out, err := g.complete(ctx, "initial generation", Completion{
		Prompt: prompts.GetInitialProjectPrompt(in.Prompt, string(in.Stack)),
		Images: in.Images,
	})
	if err != nil {
		return nil, err
	}

	files, err := ParseFiles(out)
	if err != nil {
		return nil, fmt.Errorf("initial generation: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("initial generation: %w: the model did not generate any files", ErrMalformedOutput)
	}

	fs := vfs.FromContents(files)
	active := SelectActiveFile(fs)
	g.log.Infof("Successfully parsed %d files from LLM; active file %s", len(fs), active)

	return &GenerateResult{Filesystem: fs, ActiveFile: active}, nil
}

// SelectActiveFile returns the first path (in sorted order) that looks like a
// screen, else the first path. It returns "" only for an empty filesystem.
func SelectActiveFile(fs vfs.Filesystem) string {
	paths := fs.Paths()
	for _, p := range paths {
		for _, hint := range activeFileHints {
			if strings.Contains(p, hint) {
				return p
			}
		}
	}
	if len(paths) > 0 {
		return paths[0]
	}
	return ""
}
