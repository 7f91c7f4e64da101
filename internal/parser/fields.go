package parser

import (
	"strings"

	"github.com/dgallion1/compgen/internal/record"
)

// Field labels recognized inside blocks.
const (
	labelID            = "ID"
	labelName          = "Name"
	labelCategory      = "Category"
	labelDescription   = "Description"
	labelDocumentation = "Documentation"
	labelCode          = "Code"
	labelPreviewCodes  = "Preview Codes"

	labelSummary      = "Summary"
	labelCategories   = "Component Categories"
	labelRequirements = "Technical Requirements"
	labelPatterns     = "Design Patterns"
	labelComplexity   = "Estimated Complexity"
	labelRecommends   = "Recommendations"
	labelDependencies = "Dependencies"
)

func labelPrefix(label string) string {
	return "## " + label + ":"
}

// findLabel returns the index of the first line carrying label and the text
// that follows the label on that line.
func findLabel(lines []string, label string) (int, string, bool) {
	prefix := labelPrefix(label)
	for i, ln := range lines {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(ln), prefix); ok {
			return i, rest, true
		}
	}
	return -1, "", false
}

// scalar returns the single-line value of label. An empty value counts as
// absent.
func scalar(block, label string) string {
	_, rest, ok := findLabel(strings.Split(block, "\n"), label)
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}

// section returns the text after label up to the first line for which stop
// reports true, or the end of the block.
func section(block, label string, stop func(trimmed string) bool) (string, bool) {
	lines := strings.Split(block, "\n")
	i, rest, ok := findLabel(lines, label)
	if !ok {
		return "", false
	}
	body := []string{rest}
	for _, ln := range lines[i+1:] {
		if stop(strings.TrimSpace(ln)) {
			break
		}
		body = append(body, ln)
	}
	return strings.TrimSpace(strings.Join(body, "\n")), true
}

func untilCode(t string) bool { return strings.HasPrefix(t, labelPrefix(labelCode)) }

func untilHeading(t string) bool { return strings.HasPrefix(t, "##") }

// fencedSection is like section but stops at the next "## " line that is
// not inside a fenced block.
func fencedSection(block, label string) (string, bool) {
	inFence := false
	return section(block, label, func(t string) bool {
		if inFence {
			if t == fenceMarker {
				inFence = false
			}
			return false
		}
		if strings.HasPrefix(t, fenceMarker) {
			inFence = true
			return false
		}
		return strings.HasPrefix(t, "## ")
	})
}

func extractComponent(block string) record.Component {
	c := record.Component{
		ID:          scalar(block, labelID),
		Name:        scalar(block, labelName),
		Category:    scalar(block, labelCategory),
		Description: scalar(block, labelDescription),
	}
	c.Documentation, _ = section(block, labelDocumentation, untilCode)
	if span, ok := fencedSection(block, labelCode); ok {
		if f, ok := firstFence(span); ok {
			c.Code = strings.TrimSpace(f.Content)
		}
	}
	return c
}

func extractAnalysis(block string) record.Analysis {
	var a record.Analysis
	a.Summary = scalar(block, labelSummary)
	if body, ok := section(block, labelCategories, untilHeading); ok {
		a.ComponentCategories = categories(body)
	}
	if body, ok := section(block, labelRequirements, untilHeading); ok {
		a.TechnicalRequirements = bullets(body)
	}
	if body, ok := section(block, labelPatterns, untilHeading); ok {
		a.DesignPatterns = bullets(body)
	}
	a.EstimatedComplexity = scalar(block, labelComplexity)
	if body, ok := section(block, labelRecommends, untilHeading); ok {
		a.Recommendations = bullets(body)
	}
	if body, ok := section(block, labelDependencies, untilHeading); ok {
		a.Dependencies = bullets(body)
	}
	return a
}

// bullets returns the non-blank lines of body with a leading "-" or "*"
// marker removed.
func bullets(body string) []string {
	var out []string
	for _, ln := range strings.Split(body, "\n") {
		if t := stripBullet(strings.TrimSpace(ln)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func stripBullet(t string) string {
	if strings.HasPrefix(t, "-") || strings.HasPrefix(t, "*") {
		return strings.TrimSpace(t[1:])
	}
	return t
}

// categories parses "Name: description" lines. Lines without a colon are
// skipped.
func categories(body string) []record.CategoryInfo {
	var out []record.CategoryInfo
	for _, ln := range bullets(body) {
		name, desc, ok := strings.Cut(ln, ":")
		if !ok {
			continue
		}
		out = append(out, record.CategoryInfo{
			Category:    strings.TrimSpace(name),
			Description: strings.TrimSpace(desc),
			Components:  []string{},
		})
	}
	return out
}
