package vfs

import (
	"path/filepath"
	"strings"
)

// Kind classifies a project file by extension; the result doubles as the
// fence language when file contents are quoted in prompts.
func Kind(path string) string {
	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".dart":
		return "dart"
	case ".js":
		return "javascript"
	case ".jsx":
		return "jsx"
	case ".ts":
		return "typescript"
	case ".tsx":
		return "tsx"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".md":
		return "markdown"
	case ".css":
		return "css"
	case ".html":
		return "html"
	case ".xml":
		return "xml"
	case ".gradle":
		return "groovy"
	case ".kt":
		return "kotlin"
	case ".swift":
		return "swift"
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
		return "image"
	default:
		base := filepath.Base(lower)
		switch {
		case base == "pubspec.lock":
			return "yaml"
		case strings.HasPrefix(base, ".env"):
			return "env"
		case base == ".gitignore":
			return "gitignore"
		}
		return "text"
	}
}
