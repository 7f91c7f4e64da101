package parser

// fixture is a complete two-component response followed by an analysis.
const fixture = "# Component: Primary Button\n" +
	"## ID: primary-button\n" +
	"## Name: PrimaryButton\n" +
	"## Category: Inputs\n" +
	"## Description: A clickable button.\n" +
	"## Documentation:\n" +
	"Use for the main call to action.\n" +
	"\n" +
	"### Props\n" +
	"- label: text\n" +
	"## Code:\n" +
	"```tsx\n" +
	"const PrimaryButton = ({ label }) => <button>{label}</button>;\n" +
	"```\n" +
	"## Preview Codes:\n" +
	"```tsx\n" +
	"// Default\n" +
	"render(<PrimaryButton label=\"Go\" />)\n" +
	"```\n" +
	"```tsx\n" +
	"import x from 'y';\n" +
	"render(\n" +
	"  <PrimaryButton label=\"Multi\" />\n" +
	")\n" +
	"```\n" +
	"---\n" +
	"# Component: Card\n" +
	"## ID: card\n" +
	"## Name: Card\n" +
	"## Code:\n" +
	"```tsx\n" +
	"function Card({ title }) { return <div>{title}</div>; }\n" +
	"```\n" +
	"---\n" +
	"# Analysis: Overview\n" +
	"## Summary: Two components.\n" +
	"## Component Categories:\n" +
	"- Inputs: Things you click\n" +
	"- Layout: Containers\n" +
	"## Technical Requirements:\n" +
	"- React 18\n" +
	"- Tailwind\n" +
	"## Estimated Complexity: Low\n"

const (
	buttonDef = "function PrimaryButton({ label }) {\n  return <button>{label}</button>;\n}"
	cardDef   = "function Card({ title }) {\n  return <div>{title}</div>;\n}"
)
