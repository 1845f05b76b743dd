package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"zapp_server/internal/types"
	"zapp_server/internal/vfs"
)

const systemPrompt = "You are a helpful AI assistant that generates mobile app code based on user prompts and specific formatting instructions."

// Generator runs the generation pipelines. Every pipeline is a strictly
// sequential chain of model calls; the first failure aborts the request.
type Generator struct {
	llm Completer
	log *logrus.Entry
}

// NewGenerator wires a Generator to a model backend.
func NewGenerator(llm Completer, log *logrus.Entry) *Generator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Generator{
		llm: llm,
		log: log.WithField("component", "generator"),
	}
}

// GenerateInput is one multi-file generation request. A nil Filesystem
// selects initial generation.
type GenerateInput struct {
	Prompt     string
	Stack      types.Stack
	Filesystem vfs.Filesystem
	ActiveFile string
	Images     []string
}

// GenerateResult is the new project state. PreviewCode is nil when no
// preview could be derived.
type GenerateResult struct {
	Filesystem  vfs.Filesystem
	ActiveFile  string
	PreviewCode *string
	Changes     []types.Change
}

// Generate runs initial generation or iterative modification, then derives
// the preview code from the resulting filesystem.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if !in.Stack.Valid() {
		return nil, fmt.Errorf("%w: unsupported stack %q", ErrInvalidInput, in.Stack)
	}
	if strings.TrimSpace(in.Prompt) == "" && len(in.Images) == 0 {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}

	var (
		res *GenerateResult
		err error
	)
	if in.Filesystem == nil {
		res, err = g.GenerateProject(ctx, in)
	} else {
		in.Filesystem.Normalize()
		if err := in.Filesystem.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		res, err = g.ModifyProject(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	res.PreviewCode, err = g.DerivePreview(ctx, in.Stack, res.Filesystem, res.ActiveFile)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// complete sends one prompt and logs the exchange under stage.
func (g *Generator) complete(ctx context.Context, stage string, c Completion) (string, error) {
	if c.System == "" {
		c.System = systemPrompt
	}
	log := g.log.WithFields(logrus.Fields{"stage": stage, "model": g.llm.Model()})
	log.Debugf("Full prompt for LLM: %s", c.Prompt)

	out, err := g.llm.Complete(ctx, c)
	if err != nil {
		log.Errorf("Model call failed: %v", err)
		return "", fmt.Errorf("%s: %w", stage, err)
	}
	log.Debugf("LLM raw output: %s", out)
	log.Infof("Model call completed (%d chars)", len(out))
	return out, nil
}
