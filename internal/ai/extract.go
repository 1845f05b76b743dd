package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// fenceRe matches one fenced block with its optional language tag. Matches
// are taken left to right without overlap, so a closing fence never opens
// the next match.
var fenceRe = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n(.*?)\\r?\\n[ \\t]*```")

// jsonBlock returns the body of the first ```json block, or of the first
// untagged block when no block is tagged json.
func jsonBlock(text string) (string, bool) {
	untagged, found := "", false
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		switch strings.ToLower(m[1]) {
		case "json":
			return m[2], true
		case "":
			if !found {
				untagged, found = m[2], true
			}
		}
	}
	return untagged, found
}

// ExtractJSON decodes the first fenced JSON block of text into v, or the
// whole text when there is no fenced block.
func ExtractJSON(text string, v any) error {
	if block, ok := jsonBlock(text); ok {
		if err := json.Unmarshal([]byte(block), v); err != nil {
			return fmt.Errorf("%w: invalid JSON in fenced block: %v", ErrMalformedOutput, err)
		}
		return nil
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err != nil {
		return fmt.Errorf("%w: received invalid JSON from AI model: %v", ErrMalformedOutput, err)
	}
	return nil
}

// ExtractCode strips a surrounding code fence, if any, and trims the result.
func ExtractCode(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	body := ""
	if nl := strings.Index(cleaned, "\n"); nl >= 0 {
		body = cleaned[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// extractSource is ExtractCode that rejects an empty result.
func extractSource(stage, text string) (string, error) {
	code := ExtractCode(text)
	if code == "" {
		return "", fmt.Errorf("%w: %s returned no code", ErrMalformedOutput, stage)
	}
	return code, nil
}

// Action kinds a plan may contain.
const (
	ActionCreateFile = "CREATE_FILE"
	ActionModifyFile = "MODIFY_FILE"
)

// Action is one planned file edit.
type Action struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	Task   string `json:"task"`
}

var planKeys = []string{"actions", "plan", "steps"}

// ParsePlan extracts the ordered action list from planner output. A bare
// array is expected; an object wrapping the array under a common key is
// tolerated.
func ParsePlan(text string) ([]Action, error) {
	var plan []Action
	err := ExtractJSON(text, &plan)
	if err != nil {
		var raw json.RawMessage
		if ExtractJSON(text, &raw) == nil {
			for _, key := range planKeys {
				r := gjson.GetBytes(raw, key)
				if !r.IsArray() {
					continue
				}
				if errInner := json.Unmarshal([]byte(r.Raw), &plan); errInner == nil {
					err = nil
					break
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	for i := range plan {
		a := &plan[i]
		a.Action = strings.ToUpper(strings.TrimSpace(a.Action))
		a.Path = strings.TrimSpace(a.Path)
		if a.Action != ActionCreateFile && a.Action != ActionModifyFile {
			return nil, fmt.Errorf("%w: plan step %d has unknown action %q", ErrMalformedOutput, i+1, a.Action)
		}
		if a.Path == "" {
			return nil, fmt.Errorf("%w: plan step %d has no path", ErrMalformedOutput, i+1)
		}
	}
	return plan, nil
}

// ParseFiles extracts the path -> content object of a fresh project. Values
// may also be {"content": ...} objects, and the whole object may be wrapped
// under "files".
func ParseFiles(text string) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := ExtractJSON(text, &raw); err != nil {
		return nil, err
	}
	if inner, ok := raw["files"]; ok && len(raw) == 1 && gjson.ParseBytes(inner).IsObject() {
		raw = nil
		if err := json.Unmarshal(inner, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
	}

	files := make(map[string]string, len(raw))
	for path, val := range raw {
		v := gjson.ParseBytes(val)
		switch {
		case v.Type == gjson.String:
			files[path] = v.String()
		case v.IsObject() && v.Get("content").Exists():
			files[path] = v.Get("content").String()
		default:
			return nil, fmt.Errorf("%w: file %q has no string content", ErrMalformedOutput, path)
		}
	}
	return files, nil
}
