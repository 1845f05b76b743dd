package ai

import (
	"context"
	"fmt"

	"zapp_server/internal/ai/prompts"
	"zapp_server/internal/types"
	"zapp_server/internal/vfs"
)

// PreviewInput asks for preview code of an existing project.
type PreviewInput struct {
	Stack      types.Stack
	Filesystem vfs.Filesystem
	ActiveFile string
}

// Preview derives preview code only; the filesystem is returned untouched.
func (g *Generator) Preview(ctx context.Context, in PreviewInput) (*GenerateResult, error) {
	if !in.Stack.Valid() {
		return nil, fmt.Errorf("%w: unsupported stack %q", ErrInvalidInput, in.Stack)
	}
	if in.Filesystem == nil {
		return nil, fmt.Errorf("%w: virtualFilesystem is required", ErrInvalidInput)
	}
	in.Filesystem.Normalize()
	if err := in.Filesystem.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	code, err := g.DerivePreview(ctx, in.Stack, in.Filesystem, in.ActiveFile)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{Filesystem: in.Filesystem, ActiveFile: in.ActiveFile, PreviewCode: code}, nil
}

// DerivePreview builds the single-file preview. Flutter folds the whole
// project into one main.dart; React Native converts the active file only
// and yields nil when there is no active file content.
func (g *Generator) DerivePreview(ctx context.Context, stack types.Stack, fs vfs.Filesystem, activeFile string) (*string, error) {
	var prompt string
	switch stack {
	case types.StackFlutter:
		prompt = prompts.GetFlutterPreviewPrompt(fs)
	case types.StackReactNative:
		content, ok := fs.Get(activeFile)
		if activeFile == "" || !ok || content == "" {
			g.log.Infof("No active file content to preview (active file %q)", activeFile)
			return nil, nil
		}
		prompt = prompts.GetReactNativePreviewPrompt(content)
	default:
		return nil, fmt.Errorf("%w: unsupported stack %q", ErrInvalidInput, stack)
	}

	stage := fmt.Sprintf("%s preview", stack)
	out, err := g.complete(ctx, stage, Completion{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	code, err := extractSource(stage, out)
	if err != nil {
		return nil, err
	}
	return &code, nil
}
