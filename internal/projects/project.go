package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"zapp_server/internal/types"
	"zapp_server/internal/vfs"
)

// ErrInvalidProject marks a snapshot or patch that cannot be stored.
var ErrInvalidProject = errors.New("invalid project")

// Project is a saved snapshot of one edit session.
type Project struct {
	ID                    string         `json:"id"`
	UserID                string         `json:"user_id"`
	Name                  string         `json:"name"`
	Prompt                string         `json:"prompt"`
	Stack                 types.Stack    `json:"stack"`
	VirtualFilesystem     vfs.Filesystem `json:"virtual_filesystem"`
	ActiveFile            *string        `json:"active_file"`
	ActiveFilePreviewCode *string        `json:"active_file_preview_code"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// NewProject is the snapshot written by Create.
type NewProject struct {
	Name                  string         `json:"name" binding:"required"`
	Prompt                string         `json:"prompt"`
	Stack                 types.Stack    `json:"stack" binding:"required,oneof=react-native flutter"`
	VirtualFilesystem     vfs.Filesystem `json:"virtual_filesystem"`
	ActiveFile            *string        `json:"active_file"`
	ActiveFilePreviewCode *string        `json:"active_file_preview_code"`
}

// Update is a partial patch. Nil fields and unset nullable fields are left
// untouched.
type Update struct {
	Name                  *string        `json:"name,omitempty"`
	Prompt                *string        `json:"prompt,omitempty"`
	Stack                 *types.Stack   `json:"stack,omitempty"`
	VirtualFilesystem     vfs.Filesystem `json:"virtual_filesystem,omitempty"`
	ActiveFile            NullableString `json:"active_file,omitzero"`
	ActiveFilePreviewCode NullableString `json:"active_file_preview_code,omitzero"`
}

// NullableString is a patch value for a nullable column. An absent key
// leaves Set false; null sets the column to NULL.
type NullableString struct {
	Set   bool
	Value *string
}

// SetString returns a patch value writing s.
func SetString(s string) NullableString {
	return NullableString{Set: true, Value: &s}
}

// SetNull returns a patch value clearing the column.
func SetNull() NullableString {
	return NullableString{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullableString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// bind returns the driver value: nil for NULL.
func (n NullableString) bind() any {
	if n.Value == nil {
		return nil
	}
	return *n.Value
}

// Store persists projects. Get returns (nil, nil) for an unknown id, and
// Update on an unknown id is a no-op. Writes are last-write-wins.
type Store interface {
	List(ctx context.Context, userID string) ([]Project, error)
	Create(ctx context.Context, userID string, p NewProject) (*Project, error)
	Update(ctx context.Context, id string, u Update) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Project, error)
	Close() error
}

// Open picks the backend from the DSN: postgres:// and postgresql:// URLs go
// to Postgres, anything else is treated as a sqlite file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		s, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewSQLiteStore(dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// column is one SET clause of a partial update.
type column struct {
	name  string
	value any
	json  bool
}

// columns lists the fields present in u, in a fixed order.
func (u Update) columns() ([]column, error) {
	var cols []column
	if u.Name != nil {
		cols = append(cols, column{name: "name", value: *u.Name})
	}
	if u.Prompt != nil {
		cols = append(cols, column{name: "prompt", value: *u.Prompt})
	}
	if u.Stack != nil {
		if !u.Stack.Valid() {
			return nil, fmt.Errorf("%w: unsupported stack %q", ErrInvalidProject, *u.Stack)
		}
		cols = append(cols, column{name: "stack", value: string(*u.Stack)})
	}
	if u.VirtualFilesystem != nil {
		data, err := encodeFilesystem(u.VirtualFilesystem)
		if err != nil {
			return nil, err
		}
		cols = append(cols, column{name: "virtual_filesystem", value: data, json: true})
	}
	if u.ActiveFile.Set {
		cols = append(cols, column{name: "active_file", value: u.ActiveFile.bind()})
	}
	if u.ActiveFilePreviewCode.Set {
		cols = append(cols, column{name: "active_file_preview_code", value: u.ActiveFilePreviewCode.bind()})
	}
	return cols, nil
}

// buildUpdate renders "UPDATE projects SET ... WHERE id = ..." with
// placeholder(i) producing the i-th (1-based) bind marker. updated_at is
// always stamped.
func buildUpdate(u Update, id string, now time.Time, placeholder func(i int, json bool) string) (string, []any, error) {
	cols, err := u.columns()
	if err != nil {
		return "", nil, err
	}
	cols = append(cols, column{name: "updated_at", value: now})

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = %s", c.name, placeholder(i+1, c.json)))
		args = append(args, c.value)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = %s", strings.Join(sets, ", "), placeholder(len(args), false))
	return query, args, nil
}

func validateNew(p NewProject) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProject)
	}
	if !p.Stack.Valid() {
		return fmt.Errorf("%w: unsupported stack %q", ErrInvalidProject, p.Stack)
	}
	return nil
}

func encodeFilesystem(fs vfs.Filesystem) (string, error) {
	if fs == nil {
		fs = vfs.Filesystem{}
	}
	data, err := json.Marshal(fs)
	if err != nil {
		return "", fmt.Errorf("marshal virtual filesystem: %w", err)
	}
	return string(data), nil
}

func decodeFilesystem(data []byte) (vfs.Filesystem, error) {
	fs := vfs.Filesystem{}
	if len(data) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("unmarshal virtual filesystem: %w", err)
	}
	return fs, nil
}
