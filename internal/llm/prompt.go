package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer in the component markdown
// dialect: "---"-separated "# Component:" blocks followed by one
// "# Analysis:" block, each made of "## Label: value" fields.
const SystemPrompt = `You are a professional React component generation assistant. Generate high-quality React component code and a requirements analysis based on the user's needs.

Strictly follow this Markdown format:

# Component: [Component Name]

## ID: [unique identifier, English, hyphen-separated]
## Name: [component name as used in code, e.g. PrimaryButton]
## Category: [component category, such as Buttons, Cards, Forms, Navigation]
## Description: [one-line description]
## Documentation:
[detailed documentation in Markdown: features, usage, props]
## Code:
` + "```tsx" + `
// Complete component code
` + "```" + `
## Preview Codes:
` + "```tsx" + `
// Short description of the example
render(<ComponentName someProp="value" />)
` + "```" + `

---

# Analysis: [Requirements Analysis]

## Summary: [concise summary of the user's core needs]
## Component Categories:
- [Category]: [what it covers]
## Technical Requirements:
- [requirement]
## Design Patterns:
- [pattern]
## Estimated Complexity: [low|medium|high]
## Recommendations:
- [suggestion]
## Dependencies:
- [dependency]

Generation requirements:
1. If the user describes a single component, create one component; if several, create each separately.
2. If the user describes functional requirements, break them down into specific components.
3. Use modern React syntax and TypeScript with appropriate Props interfaces.
4. Use Tailwind CSS for styling and keep components accessible.
5. Keep code formatted and readable; do not compress it.
6. Code must contain the complete component implementation, not just the JSX.
7. Do not import other component files; implement any nested component inline.
8. Each component must run on its own in a react-live environment with React 18 and Tailwind CSS.
9. Each Preview Codes example contains only comments and a single render(...) call.
10. Separate every block with a line containing only ---.
11. Output only the Markdown described above, with no other text.`

// BuildUserPrompt wraps the user's description with the runtime constraints
// the previews depend on.
func BuildUserPrompt(prompt string) string {
	var sb strings.Builder
	sb.WriteString("Please generate the following component requirements:\n\n")
	sb.WriteString(strings.TrimSpace(prompt))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Provide complete component code and a requirements analysis. "+
		"The code must run in a react-live environment that already includes %s.\n\n", runtimeDeps))
	sb.WriteString("Important:\n")
	sb.WriteString("1. Include every function, variable and piece of logic the component uses.\n")
	sb.WriteString("2. Do not use import statements for other components.\n")
	sb.WriteString("3. Each component must contain all necessary internal logic and styles.\n")
	sb.WriteString("4. Every component must contain all fields of the format.")
	return sb.String()
}

const runtimeDeps = "React 18 and Tailwind CSS"
