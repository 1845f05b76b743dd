package preview

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

// DartPadEmbedURL is the Flutter embed that renders a gist by id.
const DartPadEmbedURL = "https://dartpad.dev/embed-flutter.html"

var reactNativeTmpl = template.Must(template.New("react-native").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <script src="https://cdn.tailwindcss.com"></script>
  <script src="https://unpkg.com/react@18/umd/react.development.js"></script>
  <script src="https://unpkg.com/react-dom@18/umd/react-dom.development.js"></script>
  <script src="https://unpkg.com/@babel/standalone/babel.min.js"></script>
  <style>
    body { display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background-color: #f0f0f0; }
  </style>
</head>
<body>
  <div id="root"></div>

  <script type="text/babel">
    try {
{{.Code}}

      const root = ReactDOM.createRoot(document.getElementById('root'));
      root.render(<App />);
    } catch (e) {
      const root = document.getElementById('root');
      root.innerHTML = '<div style="color: red; padding: 20px;"><h3>Preview Error</h3><pre>' + e.message + '</pre></div>';
      console.error(e);
    }
  </script>
</body>
</html>
`))

// ReactNativeHTML wraps a browser component that defines App into a
// standalone document meant for a sandboxed iframe. The code is inserted
// verbatim; errors thrown while evaluating it are shown in the page.
func ReactNativeHTML(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	var sb strings.Builder
	if err := reactNativeTmpl.Execute(&sb, struct{ Code string }{code}); err != nil {
		return "", fmt.Errorf("render preview document: %w", err)
	}
	return sb.String(), nil
}

// DartPadURL links the DartPad embed to a gist, running it immediately
// with the editor hidden. An empty gistID yields the bare embed.
func DartPadURL(gistID string, dark bool) string {
	q := url.Values{}
	if gistID != "" {
		q.Set("id", gistID)
	}
	theme := "light"
	if dark {
		theme = "dark"
	}
	q.Set("theme", theme)
	q.Set("run", "true")
	q.Set("split", "0")
	return DartPadEmbedURL + "?" + q.Encode()
}
