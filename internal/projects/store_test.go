package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapp_server/internal/types"
	"zapp_server/internal/vfs"
)

func ptr[T any](v T) *T { return &v }

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "zapp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.now = stepClock()
	return s
}

func sampleProject(name string) NewProject {
	return NewProject{
		Name:   name,
		Prompt: "a login screen",
		Stack:  types.StackFlutter,
		VirtualFilesystem: vfs.FromContents(map[string]string{
			"lib/main.dart":                 "void main() {}",
			"lib/screens/login_screen.dart": "class LoginScreen {}",
		}),
		ActiveFile:            ptr("lib/screens/login_screen.dart"),
		ActiveFilePreviewCode: ptr("void main() => runApp(App());"),
	}
}

func TestSQLiteCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	created, err := s.Create(ctx, "user-1", sampleProject("Login"))
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)
	assert.Equal(t, types.StackFlutter, created.Stack)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "class LoginScreen {}", created.VirtualFilesystem["lib/screens/login_screen.dart"].Content)
	require.NoError(t, created.VirtualFilesystem.Validate())
	require.NotNil(t, created.ActiveFile)
	assert.Equal(t, "lib/screens/login_screen.dart", *created.ActiveFile)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSQLiteGetMissingIsNotAnError(t *testing.T) {
	got, err := newSQLiteStore(t).Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteCreateNullableFields(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	created, err := s.Create(ctx, "user-1", NewProject{Name: "Empty", Stack: types.StackReactNative})
	require.NoError(t, err)
	assert.Nil(t, created.ActiveFile)
	assert.Nil(t, created.ActiveFilePreviewCode)
	assert.Equal(t, vfs.Filesystem{}, created.VirtualFilesystem)
}

func TestSQLiteCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, err := s.Create(ctx, "user-1", NewProject{Name: " ", Stack: types.StackFlutter})
	assert.ErrorIs(t, err, ErrInvalidProject)

	_, err = s.Create(ctx, "user-1", NewProject{Name: "x", Stack: "ionic"})
	assert.ErrorIs(t, err, ErrInvalidProject)
}

func TestSQLiteListOrdersByUpdatedAtAndScopesByUser(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	first, err := s.Create(ctx, "user-1", sampleProject("first"))
	require.NoError(t, err)
	second, err := s.Create(ctx, "user-1", sampleProject("second"))
	require.NoError(t, err)
	_, err = s.Create(ctx, "user-2", sampleProject("other"))
	require.NoError(t, err)

	list, err := s.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{second.ID, first.ID}, []string{list[0].ID, list[1].ID})

	// Touching the older project moves it to the front.
	require.NoError(t, s.Update(ctx, first.ID, Update{Name: ptr("first, renamed")}))
	list, err = s.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "first, renamed", list[0].Name)

	empty, err := s.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteUpdatePatchesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	created, err := s.Create(ctx, "user-1", sampleProject("Login"))
	require.NoError(t, err)

	fs := created.VirtualFilesystem.Clone()
	fs.Put("lib/screens/home_screen.dart", "class HomeScreen {}")
	require.NoError(t, s.Update(ctx, created.ID, Update{
		VirtualFilesystem: fs,
		ActiveFile:        SetString("lib/screens/home_screen.dart"),
	}))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, fs, got.VirtualFilesystem)
	assert.Equal(t, "lib/screens/home_screen.dart", *got.ActiveFile)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Prompt, got.Prompt)
	assert.Equal(t, *created.ActiveFilePreviewCode, *got.ActiveFilePreviewCode)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
}

func TestSQLiteUpdateAlwaysStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	created, err := s.Create(ctx, "user-1", sampleProject("Login"))
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, created.ID, Update{}))
	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
}

func TestSQLiteUpdateUnknownIDIsNoop(t *testing.T) {
	assert.NoError(t, newSQLiteStore(t).Update(context.Background(), "missing", Update{Name: ptr("x")}))
}

func TestSQLiteUpdateRejectsBadStack(t *testing.T) {
	err := newSQLiteStore(t).Update(context.Background(), "id", Update{Stack: ptr(types.Stack("ionic"))})
	assert.ErrorIs(t, err, ErrInvalidProject)
}

func TestSQLiteUpdateClearsNullableFields(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	created, err := s.Create(ctx, "user-1", sampleProject("Login"))
	require.NoError(t, err)
	require.NotNil(t, created.ActiveFilePreviewCode)

	require.NoError(t, s.Update(ctx, created.ID, Update{ActiveFilePreviewCode: SetNull()}))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ActiveFilePreviewCode)
	assert.Equal(t, *created.ActiveFile, *got.ActiveFile)
}

func TestUpdateJSONDistinguishesNullFromAbsent(t *testing.T) {
	var u Update
	require.NoError(t, json.Unmarshal([]byte(`{"active_file": null, "name": "x"}`), &u))
	assert.Equal(t, SetNull(), u.ActiveFile)
	assert.False(t, u.ActiveFilePreviewCode.Set)

	cols, err := u.columns()
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "active_file", cols[1].name)
	assert.Nil(t, cols[1].value)

	data, err := json.Marshal(Update{ActiveFilePreviewCode: SetString("code")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"active_file_preview_code": "code"}`, string(data))
}

func TestSQLiteDelete(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	created, err := s.Create(ctx, "user-1", sampleProject("Login"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, created.ID))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, s.Delete(ctx, created.ID))
}

func TestSQLiteLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	created, err := s.Create(ctx, "user-1", sampleProject("Login"))
	require.NoError(t, err)

	a := vfs.FromContents(map[string]string{"lib/main.dart": "// session a"})
	b := vfs.FromContents(map[string]string{"lib/main.dart": "// session b"})
	require.NoError(t, s.Update(ctx, created.ID, Update{VirtualFilesystem: a}))
	require.NoError(t, s.Update(ctx, created.ID, Update{VirtualFilesystem: b}))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got.VirtualFilesystem)
}

func TestBuildUpdate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := buildUpdate(Update{
		Name:              ptr("n"),
		VirtualFilesystem: vfs.Filesystem{},
	}, "id-1", now, func(i int, json bool) string {
		if json {
			return fmt.Sprintf("$%d::jsonb", i)
		}
		return fmt.Sprintf("$%d", i)
	})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE projects SET name = $1, virtual_filesystem = $2::jsonb, updated_at = $3 WHERE id = $4", query)
	assert.Equal(t, []any{"n", "{}", now, "id-1"}, args)
}

func TestOpenPicksSQLiteForPaths(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "zapp.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStore{}, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("ZAPP_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("ZAPP_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	store, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	s := store.(*PostgresStore)
	s.now = stepClock()

	created, err := s.Create(ctx, "pg-user", sampleProject("Login"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Delete(ctx, created.ID) })

	require.NoError(t, s.Update(ctx, created.ID, Update{ActiveFile: SetString("lib/main.dart")}))
	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "lib/main.dart", *got.ActiveFile)
	assert.Equal(t, created.VirtualFilesystem, got.VirtualFilesystem)

	missing, err := s.Get(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
