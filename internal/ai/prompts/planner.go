package prompts

import "fmt"

// GetPlannerPrompt asks for an ordered JSON array of file actions that
// implement the change request against the given path listing.
func GetPlannerPrompt(userPrompt, fileTree, stack string) string {
	prompt := `
You are an expert %s project architect. A user wants to modify their project with the following request: "%s".

Here is the current file structure of the project:
%s

Based on the user's request, create a step-by-step plan. Return a JSON array of "actions".
Valid actions are: "CREATE_FILE", "MODIFY_FILE".
For each action, provide the file path and a concise, one-sentence task description for another AI to execute. Do not suggest adding dependencies.

**Example Response:**
` + "```json" + `
[
  { "action": "CREATE_FILE", "path": "src/services/authService.js", "task": "Create a new file to handle Firebase authentication logic." },
  { "action": "MODIFY_FILE", "path": "src/screens/HomeScreen.js", "task": "Import the new authService and add a logout button." }
]
` + "```" + `
`
	return fmt.Sprintf(prompt, stack, userPrompt, fileTree)
}
