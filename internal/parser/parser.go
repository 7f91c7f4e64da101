// Package parser incrementally recognizes component and analysis records in
// model-produced markdown.
//
// Every call reprocesses the whole accumulated text; nothing is carried over
// between calls. Parser values are safe for concurrent use.
package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/compgen/internal/record"
)

var (
	// ErrMalformed reports that the extraction pipeline failed on the current
	// text. Callers treat it as "not yet parseable" and wait for more text.
	ErrMalformed = errors.New("markdown not parseable")

	// ErrNoComponents is the terminal failure: the stream ended without a
	// single valid component.
	ErrNoComponents = errors.New("no components could be parsed from the response")
)

// Options controls parsing behavior.
type Options struct {
	// FenceAwareSplit stops `---` lines inside fenced code from splitting
	// blocks. Off by default to match the line-exact delimiter grammar.
	FenceAwareSplit bool

	// Logger receives debug lines for skipped component blocks and for
	// preview synthesis falling back to a weaker strategy. Nil disables
	// logging.
	Logger *slog.Logger
}

// Parser assembles records from accumulated text.
type Parser struct {
	opts Options
}

// New returns a Parser with the given options.
func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

var defaultParser = New(Options{})

// Parse runs the default Parser over text.
func Parse(text string) (*record.Result, error) {
	return defaultParser.Parse(text)
}

// Parse builds a fresh Result from the full accumulated text.
func (p *Parser) Parse(text string) (res *record.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	res = &record.Result{Components: []record.Component{}}
	for _, b := range Split(text, p.opts.FenceAwareSplit) {
		switch b.Kind {
		case KindComponent:
			c := extractComponent(b.Text)
			if !c.Valid() {
				if p.opts.Logger != nil {
					p.opts.Logger.Debug("component block without id skipped", "title", b.Title)
				}
				continue
			}
			if c.HasPreview() {
				p.attachPreviews(&c, b.Text)
			}
			res.Components = append(res.Components, c)
		case KindAnalysis:
			res.Analysis.Merge(extractAnalysis(b.Text))
		}
	}
	return res, nil
}
