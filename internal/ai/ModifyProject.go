package ai

import (
	"context"
	"fmt"
	"strings"

	"zapp_server/internal/ai/prompts"
	"zapp_server/internal/types"
	"zapp_server/internal/vfs"
)

// ModifyProject plans the change request, then executes the plan one action
// at a time. Each action sees the edits of the actions before it. The input
// filesystem is not mutated.
func (g *Generator) ModifyProject(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	fs := in.Filesystem.Clone()
	res := &GenerateResult{Filesystem: fs, ActiveFile: in.ActiveFile}

	out, err := g.complete(ctx, "planner", Completion{
		Prompt: prompts.GetPlannerPrompt(in.Prompt, fs.Listing(), string(in.Stack)),
		Images: in.Images,
	})
	if err != nil {
		return nil, err
	}
	plan, err := ParsePlan(out)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	g.log.Infof("LLM planned %d file actions", len(plan))

	for i, action := range plan {
		stage := fmt.Sprintf("executor step %d/%d (%s %s)", i+1, len(plan), action.Action, action.Path)

		out, err := g.complete(ctx, stage, Completion{
			Prompt: prompts.GetExecutorPrompt(action.Task, RelevantFiles(fs, action.Path), fs.Listing()),
		})
		if err != nil {
			return nil, err
		}
		content, err := extractSource(stage, out)
		if err != nil {
			return nil, err
		}

		old, existed := fs.Get(action.Path)
		fs.Put(action.Path, content)
		res.ActiveFile = action.Path
		res.Changes = append(res.Changes, types.Change{
			Action: action.Action,
			Path:   action.Path,
			Diff:   vfs.Diff(action.Path, old, content, existed),
		})
	}
	return res, nil
}

// RelevantFiles selects the files quoted to the executor for an action on
// target: every path containing the target's base name ("main" when it has
// none) and every path containing "service".
func RelevantFiles(fs vfs.Filesystem, target string) []vfs.VirtualFile {
	base := vfs.Base(target)
	if base == "" {
		base = "main"
	}
	var out []vfs.VirtualFile
	for _, f := range fs.Files() {
		if strings.Contains(f.Path, base) || strings.Contains(f.Path, "service") {
			out = append(out, f)
		}
	}
	return out
}
