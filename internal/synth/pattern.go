package synth

import (
	"errors"
	"regexp"
)

var errNoMarkup = errors.New("no markup element found")

// jsxRe matches the first opening/closing element pair (greedy up to the last
// closing tag) or the first self-closing element.
var jsxRe = regexp.MustCompile(`(?s)(<[^>]*>.*</[^>]*>|<[^>]*/>)`)

// pattern wraps the first markup-looking substring in a generic component.
func pattern(code string) (Definition, error) {
	m := jsxRe.FindString(code)
	if m == "" {
		return Definition{}, errNoMarkup
	}
	return Definition{Name: DefaultName, Return: m}, nil
}
