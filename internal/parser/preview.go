package parser

import (
	"strings"
	"unicode"

	"github.com/dgallion1/compgen/internal/record"
	"github.com/dgallion1/compgen/internal/synth"
)

const renderPrefix = "render("

// attachPreviews fills PreviewCode and PreviewCodes for a component whose
// code is present.
func (p *Parser) attachPreviews(c *record.Component, block string) {
	def := synth.Synthesize(c.Code)
	if def.Err != nil && p.opts.Logger != nil {
		p.opts.Logger.Debug("preview synthesized with fallback",
			"component", c.ID,
			"strategy", def.Strategy.String(),
			"error", def.Err,
		)
	}

	src := def.String()
	c.PreviewCode = src

	var examples []Fence
	if span, ok := fencedSection(block, labelPreviewCodes); ok {
		examples = codeFences(span)
	}
	if len(examples) == 0 {
		c.PreviewCodes = []string{src + "\n\n" + def.RenderCall()}
		return
	}

	c.PreviewCodes = make([]string, 0, len(examples))
	for _, f := range examples {
		script, ok := renderScript(f.Content)
		if !ok {
			script = joinLines(script, def.RenderCall())
		}
		c.PreviewCodes = append(c.PreviewCodes, src+"\n\n"+script)
	}
}

// renderScript keeps the comment lines of an example and its first render
// invocation, dropping anything else the model echoed (imports, stray
// component definitions). The invocation may span several lines; it ends
// where its parentheses balance.
func renderScript(content string) (string, bool) {
	var (
		out      []string
		rendered bool
	)
	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		switch {
		case !rendered && strings.HasPrefix(t, renderPrefix):
			end := invocationEnd(lines, i)
			out = append(out, t)
			for _, ln := range lines[i+1 : end+1] {
				out = append(out, strings.TrimRight(ln, " \t"))
			}
			i = end
			rendered = true
		case isComment(t):
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n"), rendered
}

// invocationEnd returns the index of the line on which the render call that
// starts on lines[start] closes. Parentheses inside string literals do not
// count. An unbalanced call runs to the last line.
func invocationEnd(lines []string, start int) int {
	depth := 0
	var quote rune // open string delimiter, 0 outside strings
	for i := start; i < len(lines); i++ {
		ln := lines[i]
		if i == start {
			ln = ln[strings.Index(ln, renderPrefix):]
		}
		escaped := false
		prev := rune(0)
		for _, r := range ln {
			switch {
			case escaped:
				escaped = false
			case quote != 0 && r == '\\':
				escaped = true
			case quote != 0:
				if r == quote {
					quote = 0
				}
			case r == '"' || r == '`' || (r == '\'' && !isWordRune(prev)):
				quote = r
			case r == '(':
				depth++
			case r == ')':
				depth--
				if depth == 0 {
					return i
				}
			}
			prev = r
		}
		// Only template literals span lines.
		if quote != '`' {
			quote = 0
		}
	}
	return len(lines) - 1
}

// isWordRune reports whether r can precede an apostrophe inside JSX text,
// as in "Don't".
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isComment(t string) bool {
	return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*")
}

func joinLines(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}
