// Package types holds the wire shapes shared by the HTTP handlers, the
// generation pipelines and the HTTP client.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"zapp_server/internal/vfs"
)

// Stack is the target mobile framework.
type Stack string

const (
	StackReactNative Stack = "react-native"
	StackFlutter     Stack = "flutter"
)

// Valid reports whether s is a supported stack.
func (s Stack) Valid() bool {
	return s == StackReactNative || s == StackFlutter
}

// GenerateRequest is the multi-file generation payload. A nil
// VirtualFilesystem selects initial generation; any other value (including
// an empty object) selects iterative modification.
type GenerateRequest struct {
	Prompt            string         `json:"prompt"`
	Stack             Stack          `json:"stack" binding:"required,oneof=react-native flutter"`
	VirtualFilesystem vfs.Filesystem `json:"virtualFilesystem"`
	ActiveFile        *string        `json:"activeFile,omitempty"`
	Images            []string       `json:"images,omitempty"`
}

// PreviewRequest re-derives preview code without touching the filesystem.
type PreviewRequest struct {
	Stack             Stack          `json:"stack" binding:"required,oneof=react-native flutter"`
	VirtualFilesystem vfs.Filesystem `json:"virtualFilesystem" binding:"required"`
	ActiveFile        *string        `json:"activeFile,omitempty"`
}

// Change describes one applied plan action.
type Change struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	Diff   string `json:"diff,omitempty"`
}

// GenerateResponse is returned by the multi-file and preview endpoints.
type GenerateResponse struct {
	VirtualFilesystem     vfs.Filesystem `json:"virtualFilesystem"`
	ActiveFile            *string        `json:"activeFile"`
	ActiveFilePreviewCode *string        `json:"activeFilePreviewCode"`
	Changes               []Change       `json:"changes,omitempty"`
}

// Blueprint pairs the native React Native source with its derived
// browser-runnable version.
type Blueprint struct {
	RN   string `json:"rn"`
	Next string `json:"next"`
}

// SingleFileCode is either a plain source string (Flutter) or a Blueprint
// (React Native) on the wire.
type SingleFileCode struct {
	Source    string
	Blueprint *Blueprint
}

// IsZero reports whether no code is present.
func (c SingleFileCode) IsZero() bool {
	return c.Source == "" && (c.Blueprint == nil || c.Blueprint.RN == "")
}

// MarshalJSON implements json.Marshaler.
func (c SingleFileCode) MarshalJSON() ([]byte, error) {
	if c.Blueprint != nil {
		return json.Marshal(c.Blueprint)
	}
	return json.Marshal(c.Source)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *SingleFileCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = SingleFileCode{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &c.Source)
	case '{':
		var b Blueprint
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		c.Blueprint = &b
		return nil
	default:
		return fmt.Errorf("code must be a string or an object with rn/next fields")
	}
}

// SingleFileRequest is the payload of the single-file variant.
type SingleFileRequest struct {
	Prompt string          `json:"prompt" binding:"required"`
	Stack  Stack           `json:"stack" binding:"required,oneof=react-native flutter"`
	Code   *SingleFileCode `json:"code,omitempty"`
}

// SingleFileResponse mirrors the request's code shape.
type SingleFileResponse struct {
	Code SingleFileCode `json:"code"`
}

// GistRequest carries the Dart source to publish.
type GistRequest struct {
	Code string `json:"code"`
}

// GistResponse identifies the created gist.
type GistResponse struct {
	GistID     string `json:"gistId"`
	DartPadURL string `json:"dartpadUrl,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
