package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"zapp_server/internal/types"
)

// SQLiteStore keeps projects in a local sqlite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, ":memory:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize project store: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		prompt TEXT NOT NULL DEFAULT '',
		stack TEXT NOT NULL,
		virtual_filesystem TEXT NOT NULL DEFAULT '{}',
		active_file TEXT,
		active_file_preview_code TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_user_updated ON projects(user_id, updated_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

const sqliteColumns = `id, user_id, name, prompt, stack, virtual_filesystem, active_file, active_file_preview_code, created_at, updated_at`

// List returns the user's projects, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, userID string) ([]Project, error) {
	query := `SELECT ` + sqliteColumns + ` FROM projects WHERE user_id = ? ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Create inserts a full snapshot and returns the stored row.
func (s *SQLiteStore) Create(ctx context.Context, userID string, np NewProject) (*Project, error) {
	if err := validateNew(np); err != nil {
		return nil, err
	}
	fsJSON, err := encodeFilesystem(np.VirtualFilesystem)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id := uuid.NewString()
	query := `
	INSERT INTO projects (` + sqliteColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		id, userID, np.Name, np.Prompt, string(np.Stack), fsJSON,
		nullString(np.ActiveFile), nullString(np.ActiveFilePreviewCode), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.Get(ctx, id)
}

// Update applies a partial patch and stamps updated_at.
func (s *SQLiteStore) Update(ctx context.Context, id string, u Update) error {
	query, args, err := buildUpdate(u, id, s.now(), func(int, bool) string { return "?" })
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return nil
}

// Delete removes the project permanently.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// Get fetches one project; (nil, nil) when it does not exist.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(sc scanner) (*Project, error) {
	var (
		p             Project
		stack, fsJSON string
		active, code  sql.NullString
	)
	err := sc.Scan(&p.ID, &p.UserID, &p.Name, &p.Prompt, &stack, &fsJSON, &active, &code, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Stack = types.Stack(stack)
	if p.VirtualFilesystem, err = decodeFilesystem([]byte(fsJSON)); err != nil {
		return nil, err
	}
	if active.Valid {
		p.ActiveFile = &active.String
	}
	if code.Valid {
		p.ActiveFilePreviewCode = &code.String
	}
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
