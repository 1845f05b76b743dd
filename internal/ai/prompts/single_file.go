package prompts

import "fmt"

// Prompts for the single-file workflow. React Native keeps a native
// "blueprint" source and re-derives the browser version from it with
// GetBlueprintToBrowserPrompt; Flutter keeps one DartPad-ready file.

// GetSingleFileGeneratePrompt asks for a brand-new single source file.
func GetSingleFileGeneratePrompt(userPrompt, stack string) string {
	prompt := `
You are an expert %[1]s developer and a senior UI/UX designer specializing in the Apple VisionOS aesthetic. Build a single screen for the following request: "%[2]s".

%[3]s

%[4]s

Return ONLY the complete source code of that one file. Do not include markdown fences, file paths, or explanations.
`
	return fmt.Sprintf(prompt, stack, userPrompt, visionStyle, singleFileRules(stack))
}

// GetSingleFileModifyPrompt asks for a revised version of existing code.
func GetSingleFileModifyPrompt(userPrompt, stack, code string) string {
	prompt := `
You are an expert %[1]s developer and a senior UI/UX designer specializing in the Apple VisionOS aesthetic. Apply the following change request to the code below: "%[2]s".

%[3]s

%[4]s

Current code:
` + "```" + `
%[5]s
` + "```" + `

Return ONLY the complete, updated source code. Do not include markdown fences, file paths, or explanations.
`
	return fmt.Sprintf(prompt, stack, userPrompt, visionStyle, singleFileRules(stack), code)
}

// GetBlueprintToBrowserPrompt converts a React Native blueprint into the
// browser-runnable component shown in the preview frame.
func GetBlueprintToBrowserPrompt(blueprint string) string {
	return GetReactNativePreviewPrompt(blueprint)
}

func singleFileRules(stack string) string {
	if stack == "flutter" {
		return `**CRITICAL REQUIREMENTS:**
- The file must be a complete 'main.dart' that runs on DartPad with only core Flutter imports.
- The MaterialApp widget MUST include ` + "`debugShowCheckedModeBanner: false,`" + `.
- Use ` + "`BackdropFilter`" + ` with ` + "`ImageFilter.blur`" + ` for the glassmorphism effect.
- Use ` + "`Image.network('https://picsum.photos/seed/picsum/WIDTH/HEIGHT')`" + ` for placeholder images.`
	}
	return `**CRITICAL REQUIREMENTS:**
- Export a single default React Native component.
- Use 'react-native-paper' for core UI elements and <BlurView> from 'react-native-blur' for translucent backgrounds.`
}
