package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"zapp_server/internal/vfs"
)

// GetFlutterPreviewPrompt asks for the whole project folded into one
// runnable main.dart for DartPad.
func GetFlutterPreviewPrompt(fs vfs.Filesystem) string {
	// Source code is full of <, > and &; keep them readable.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// A Filesystem holds only strings, so Encode cannot fail.
	_ = enc.Encode(fs)
	project := strings.TrimRight(buf.String(), "\n")

	prompt := `
You are a Flutter preview generator. Your task is to combine a multi-file Flutter project into a single, runnable 'main.dart' file for a preview environment like DartPad.

Here is the entire project's file system:
%s

CRITICAL RULES:
- Inline every widget, model and service the project defines; the result must not import any project file.
- Only import 'package:flutter/material.dart', 'dart:ui' and other core Dart/Flutter libraries. No third-party packages.
- The MaterialApp widget MUST include ` + "`debugShowCheckedModeBanner: false,`" + `.
- **CRUCIAL: For all placeholder images, you MUST use ` + "`Image.network('https://picsum.photos/seed/picsum/WIDTH/HEIGHT')`" + `, replacing WIDTH and HEIGHT. Do NOT use ` + "`via.placeholder.com`" + ` or ` + "`Image.asset`" + `, as they are blocked by browser security (CORS).**
- Do not use any icons that are not part of the standard 'Icons' class.
- Output ONLY the raw Dart code.
`
	return fmt.Sprintf(prompt, project)
}

// GetReactNativePreviewPrompt asks for one screen rewritten as a
// self-contained browser component named App.
func GetReactNativePreviewPrompt(reactNativeCode string) string {
	prompt := `
You are an expert web developer. Convert the following React Native code into a single, self-contained block of JSX code that can run directly in a browser with React and Tailwind CSS.
CRITICAL RULES:
1.  Output ONLY the raw JSX code block. No markdown fences.
2.  NO IMPORTS OR EXPORTS.
3.  Define the component as a constant named "App". Example: ` + "`const App = () => { ... };`" + `.
4.  Use Tailwind CSS for All Styling.
5.  The root element must be a ` + "`<div>`" + ` with ` + "`className=\"w-full h-full bg-white overflow-y-auto\"`" + `.

React Native Code to Convert:
` + "```jsx" + `
%s
` + "```" + `
`
	return fmt.Sprintf(prompt, reactNativeCode)
}
