package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapp_server/internal/ai"
	"zapp_server/internal/gist"
	"zapp_server/internal/projects"
	"zapp_server/internal/types"
	"zapp_server/internal/vfs"
)

// stubLLM answers model calls from a fixed script.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

func (s *stubLLM) Model() string { return "stub" }

func (s *stubLLM) Complete(_ context.Context, c ai.Completion) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, c.Prompt)
	if len(s.prompts) > len(s.responses) {
		return "", errors.Join(ai.ErrUpstream, errors.New("model unavailable"))
	}
	return s.responses[len(s.prompts)-1], nil
}

type testServer struct {
	router    *gin.Engine
	store     projects.Store
	gistCalls *atomic.Int32
}

func newTestServer(t *testing.T, llm ai.Completer) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	calls := &atomic.Int32{}
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"gist-42"}`))
	}))
	t.Cleanup(gh.Close)

	store, err := projects.Open(context.Background(), filepath.Join(t.TempDir(), "zapp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	router := gin.New()
	RegisterRoutes(router, NewAPIHandler(ai.NewGenerator(llm, log), store, gist.NewClient("token", gh.URL, log), log))
	return &testServer{router: router, store: store, gistCalls: calls}
}

func (s *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGenerateInitialFlutterLoginScreen(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"```json\n{\"lib/main.dart\": \"void main() => runApp(const App());\", \"lib/screens/login_screen.dart\": \"class LoginScreen extends StatelessWidget {}\"}\n```",
		"```dart\nvoid main() => runApp(const LoginPreview());\n```",
	}}
	s := newTestServer(t, llm)

	w := s.do(http.MethodPost, "/api/generate", `{"prompt": "a login screen", "stack": "flutter"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[types.GenerateResponse](t, w)
	require.NoError(t, res.VirtualFilesystem.Validate())
	assert.Len(t, res.VirtualFilesystem, 2)
	require.NotNil(t, res.ActiveFile)
	assert.Equal(t, "lib/screens/login_screen.dart", *res.ActiveFile)
	require.NotNil(t, res.ActiveFilePreviewCode)
	assert.Equal(t, "void main() => runApp(const LoginPreview());", *res.ActiveFilePreviewCode)
	assert.Empty(t, res.Changes)

	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[0], "a login screen")
}

func TestGenerateModifyReturnsChanges(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`[{"action": "MODIFY_FILE", "path": "src/screens/HomeScreen.js", "task": "Add a logout button."}]`,
		"```jsx\nexport default function HomeScreen() { return <Button title=\"Logout\" />; }\n```",
		"```jsx\nconst App = () => <button>Logout</button>;\n```",
	}}
	s := newTestServer(t, llm)

	body := types.GenerateRequest{
		Prompt: "add logout",
		Stack:  types.StackReactNative,
		VirtualFilesystem: vfs.FromContents(map[string]string{
			"App.js":                    "export default App;",
			"src/screens/HomeScreen.js": "export default function HomeScreen() {}",
		}),
	}
	w := s.do(http.MethodPost, "/api/generate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[types.GenerateResponse](t, w)
	require.NotNil(t, res.ActiveFile)
	assert.Equal(t, "src/screens/HomeScreen.js", *res.ActiveFile)
	assert.Contains(t, res.VirtualFilesystem["src/screens/HomeScreen.js"].Content, "Logout")
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "MODIFY_FILE", res.Changes[0].Action)
	assert.Contains(t, res.Changes[0].Diff, "+export default function HomeScreen()")
	require.NotNil(t, res.ActiveFilePreviewCode)
}

func TestGenerateEmptyFilesystemIsModification(t *testing.T) {
	llm := &stubLLM{responses: []string{"[]", "void main() {}"}}
	s := newTestServer(t, llm)

	w := s.do(http.MethodPost, "/api/generate", `{"prompt": "tweak", "stack": "flutter", "virtualFilesystem": {}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[types.GenerateResponse](t, w)
	assert.Empty(t, res.VirtualFilesystem)
	assert.Nil(t, res.ActiveFile)
	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[0], "tweak")
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, &stubLLM{})

	for name, body := range map[string]string{
		"not json":      `{`,
		"missing stack": `{"prompt": "x"}`,
		"bad stack":     `{"prompt": "x", "stack": "ionic"}`,
		"empty prompt":  `{"prompt": "  ", "stack": "flutter"}`,
		"path mismatch": `{"prompt": "x", "stack": "flutter", "virtualFilesystem": {"a.dart": {"path": "b.dart", "content": "", "type": "file"}}}`,
	} {
		w := s.do(http.MethodPost, "/api/generate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
		assert.NotEmpty(t, decode[types.ErrorResponse](t, w).Error, name)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	s := newTestServer(t, &stubLLM{})

	w := s.do(http.MethodPost, "/api/generate", `{"prompt": "a login screen", "stack": "flutter"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode[types.ErrorResponse](t, w).Error, "model unavailable")
}

func TestGenerateMalformedModelOutput(t *testing.T) {
	s := newTestServer(t, &stubLLM{responses: []string{"Sure! Here is your app."}})

	w := s.do(http.MethodPost, "/api/generate", `{"prompt": "a login screen", "stack": "react-native"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decode[types.ErrorResponse](t, w).Error)
}

func TestPreviewEndpoint(t *testing.T) {
	llm := &stubLLM{responses: []string{"```jsx\nconst App = () => <div>Home</div>;\n```"}}
	s := newTestServer(t, llm)

	fs := vfs.FromContents(map[string]string{"src/screens/Home.js": "export default Home;"})
	w := s.do(http.MethodPost, "/api/generate/preview", types.PreviewRequest{
		Stack:             types.StackReactNative,
		VirtualFilesystem: fs,
		ActiveFile:        ptr("src/screens/Home.js"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[types.GenerateResponse](t, w)
	assert.Equal(t, fs, res.VirtualFilesystem)
	assert.Equal(t, "src/screens/Home.js", *res.ActiveFile)
	assert.Equal(t, "const App = () => <div>Home</div>;", *res.ActiveFilePreviewCode)

	w = s.do(http.MethodPost, "/api/generate/preview", `{"stack": "flutter"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateSingleReactNative(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"```jsx\nexport default function App() { return <View />; }\n```",
		"```jsx\nconst App = () => <div />;\n```",
	}}
	s := newTestServer(t, llm)

	w := s.do(http.MethodPost, "/api/generate/single", `{"prompt": "a counter", "stack": "react-native"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Code types.Blueprint `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "export default function App() { return <View />; }", res.Code.RN)
	assert.Equal(t, "const App = () => <div />;", res.Code.Next)
}

func TestGenerateSingleFlutterModify(t *testing.T) {
	llm := &stubLLM{responses: []string{"```dart\nvoid main() { print(1); }\n```"}}
	s := newTestServer(t, llm)

	w := s.do(http.MethodPost, "/api/generate/single", `{"prompt": "print 1", "stack": "flutter", "code": "void main() {}"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "void main() { print(1); }", res.Code)
	assert.Contains(t, llm.prompts[0], "void main() {}")
}

func TestCreateGist(t *testing.T) {
	s := newTestServer(t, &stubLLM{})

	w := s.do(http.MethodPost, "/api/create-gist?theme=dark", `{"code": "void main() {}"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[types.GistResponse](t, w)
	assert.Equal(t, "gist-42", res.GistID)
	assert.Contains(t, res.DartPadURL, "id=gist-42")
	assert.Contains(t, res.DartPadURL, "theme=dark")
	assert.Equal(t, int32(1), s.gistCalls.Load())
}

func TestCreateGistEmptyCode(t *testing.T) {
	s := newTestServer(t, &stubLLM{})

	for _, body := range []string{`{"code": ""}`, `{}`} {
		w := s.do(http.MethodPost, "/api/create-gist", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "missing code", decode[types.ErrorResponse](t, w).Error)
	}
	assert.Zero(t, s.gistCalls.Load())
}

func TestReactNativePreviewHTML(t *testing.T) {
	s := newTestServer(t, &stubLLM{})

	w := s.do(http.MethodPost, "/api/preview/react-native", `{"code": "const App = () => <div>Hi</div>;"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "const App = () => <div>Hi</div>;")

	w = s.do(http.MethodPost, "/api/preview/react-native", `{"code": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubLLM{})
	w := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func ptr[T any](v T) *T { return &v }
