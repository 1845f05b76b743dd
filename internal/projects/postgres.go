package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zapp_server/internal/types"
)

// PostgresStore keeps projects in a hosted Postgres database. The
// filesystem snapshot lives in a jsonb column.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore connects to dsn and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize project store: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) init(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		prompt TEXT NOT NULL DEFAULT '',
		stack TEXT NOT NULL,
		virtual_filesystem JSONB NOT NULL DEFAULT '{}'::jsonb,
		active_file TEXT,
		active_file_preview_code TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_user_updated ON projects(user_id, updated_at DESC);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const postgresColumns = `id::text, user_id, name, prompt, stack, virtual_filesystem, active_file, active_file_preview_code, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+postgresColumns+` FROM projects WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, userID string, np NewProject) (*Project, error) {
	if err := validateNew(np); err != nil {
		return nil, err
	}
	fsJSON, err := encodeFilesystem(np.VirtualFilesystem)
	if err != nil {
		return nil, err
	}

	now := s.now()
	query := `
	INSERT INTO projects (id, user_id, name, prompt, stack, virtual_filesystem, active_file, active_file_preview_code, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)
	RETURNING ` + postgresColumns

	row := s.pool.QueryRow(ctx, query,
		uuid.NewString(), userID, np.Name, np.Prompt, string(np.Stack), fsJSON,
		np.ActiveFile, np.ActiveFilePreviewCode, now, now,
	)
	p, err := scanPostgres(row)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, u Update) error {
	query, args, err := buildUpdate(u, id, s.now(), func(i int, json bool) string {
		if json {
			return fmt.Sprintf("$%d::jsonb", i)
		}
		return fmt.Sprintf("$%d", i)
	})
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Project, error) {
	// A malformed id can never match a uuid column.
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	p, err := scanPostgres(s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func scanPostgres(sc scanner) (*Project, error) {
	var (
		p      Project
		stack  string
		fsJSON []byte
	)
	err := sc.Scan(&p.ID, &p.UserID, &p.Name, &p.Prompt, &stack, &fsJSON, &p.ActiveFile, &p.ActiveFilePreviewCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Stack = types.Stack(stack)
	if p.VirtualFilesystem, err = decodeFilesystem(fsJSON); err != nil {
		return nil, err
	}
	return &p, nil
}
