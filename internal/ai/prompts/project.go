// Package prompts builds the text sent to the model at each pipeline stage.
// Every function is a pure function of its arguments.
package prompts

import "fmt"

// Design mandate shared by generation and edit prompts.
const visionStyle = `The design language MUST be ultra-minimal, glassy, and inspired by VisionOS. This means using blurred backgrounds, translucency (glassmorphism), rounded corners, and subtle gradients.`

// GetInitialProjectPrompt asks for a complete starting project as one JSON
// object mapping file paths to file contents.
func GetInitialProjectPrompt(userPrompt, stack string) string {
	prompt := `
You are an expert %[1]s project architect and a senior UI/UX designer specializing in the Apple VisionOS aesthetic. A user wants to build an application based on the following prompt: "%[2]s".

Your task is to generate a complete, production-ready starting file structure. %[3]s

**CRITICAL REQUIREMENTS for React Native:**
- Create a visually stunning, VisionOS-inspired interface using the principles of glassmorphism.
- You MUST use the 'react-native-paper' component library for core UI elements like Buttons, TextInputs, etc., but style them to fit the glassy aesthetic.
- When generating the package.json, you MUST include "react-native-paper" and "react-native-blur" in the dependencies.
- Use the <BlurView> component from 'react-native-blur' for translucent backgrounds.
- Place every screen component under a "screens/" directory.
- Pay close attention to a clean color palette, generous spacing, and modern typography.

**CRITICAL REQUIREMENTS for Flutter:**
- The MaterialApp widget MUST include ` + "`debugShowCheckedModeBanner: false,`" + `.
- Use widgets like ` + "`BackdropFilter`" + ` with ` + "`ImageFilter.blur`" + ` to achieve the glassmorphism effect.

**Output:**
Return a single JSON object where keys are the full file paths and values are the complete source code for that file. The output MUST be only the raw JSON object.
`
	return fmt.Sprintf(prompt, stack, userPrompt, visionStyle)
}
