package prompts

import (
	"fmt"
	"strings"

	"zapp_server/internal/vfs"
)

// GetExecutorPrompt asks for the complete new content of exactly one file.
// relevantFiles are quoted in full; the tree gives the rest of the project.
func GetExecutorPrompt(task string, relevantFiles []vfs.VirtualFile, fileTree string) string {
	var sb strings.Builder
	for _, f := range relevantFiles {
		fmt.Fprintf(&sb, "\n--- START OF FILE: %s (%s) ---\n%s\n--- END OF FILE: %s ---\n", f.Path, vfs.Kind(f.Path), f.Content, f.Path)
	}

	prompt := `
You are an expert programmer and UI designer specializing in the Apple VisionOS aesthetic (glassmorphism, translucency, blurred backgrounds). Your task is to execute a single step in a larger plan.
**Task:** %s

**CRITICAL STYLING RULE:** The UI must adhere to a minimal, glassy, VisionOS-inspired design. For React Native, use 'react-native-paper' and 'react-native-blur'. For Flutter, use 'BackdropFilter'.
Here is the full directory tree for context:
%s

Here are the full contents of the relevant file(s) you need to read or modify.
%s
Return ONLY the complete, updated source code for the single file you were asked to modify or create. Do not include markdown fences, file paths, or explanations.
`
	return fmt.Sprintf(prompt, task, fileTree, sb.String())
}
