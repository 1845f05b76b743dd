package ai

import (
	"context"
	"fmt"
	"strings"

	"zapp_server/internal/ai/prompts"
	"zapp_server/internal/types"
)

// SingleFileInput is a request of the filesystem-less workflow.
type SingleFileInput struct {
	Prompt string
	Stack  types.Stack
	Code   types.SingleFileCode
}

// GenerateSingleFile generates or modifies one source file. Flutter takes a
// single call. React Native first generates or modifies the blueprint, then
// always re-derives the browser version from it.
func (g *Generator) GenerateSingleFile(ctx context.Context, in SingleFileInput) (types.SingleFileCode, error) {
	if !in.Stack.Valid() {
		return types.SingleFileCode{}, fmt.Errorf("%w: unsupported stack %q", ErrInvalidInput, in.Stack)
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return types.SingleFileCode{}, fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}

	if in.Stack == types.StackFlutter {
		if in.Code.Blueprint != nil {
			return types.SingleFileCode{}, fmt.Errorf("%w: flutter code must be a plain string", ErrInvalidInput)
		}
		code, err := g.generateOrModify(ctx, "flutter single file", in.Prompt, in.Stack, in.Code.Source)
		if err != nil {
			return types.SingleFileCode{}, err
		}
		return types.SingleFileCode{Source: code}, nil
	}

	existing := in.Code.Source
	if in.Code.Blueprint != nil {
		existing = in.Code.Blueprint.RN
	}
	rn, err := g.generateOrModify(ctx, "react-native blueprint", in.Prompt, in.Stack, existing)
	if err != nil {
		return types.SingleFileCode{}, err
	}

	const stage = "react-native browser version"
	out, err := g.complete(ctx, stage, Completion{Prompt: prompts.GetBlueprintToBrowserPrompt(rn)})
	if err != nil {
		return types.SingleFileCode{}, err
	}
	next, err := extractSource(stage, out)
	if err != nil {
		return types.SingleFileCode{}, err
	}
	return types.SingleFileCode{Blueprint: &types.Blueprint{RN: rn, Next: next}}, nil
}

func (g *Generator) generateOrModify(ctx context.Context, stage, prompt string, stack types.Stack, existing string) (string, error) {
	p := prompts.GetSingleFileGeneratePrompt(prompt, string(stack))
	if existing != "" {
		p = prompts.GetSingleFileModifyPrompt(prompt, string(stack), existing)
	}
	out, err := g.complete(ctx, stage, Completion{Prompt: p})
	if err != nil {
		return "", err
	}
	return extractSource(stage, out)
}
