// Package synth turns one extracted code fragment into a standalone component
// definition suitable for isolated preview.
//
// Synthesize tries an ordered list of strategies and returns the first one that
// succeeds. The last tier is a fixed stub, so Synthesize never fails and never
// panics, whatever the input.
package synth

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultName is used when no component identifier can be recovered.
const DefaultName = "Component"

// Strategy identifies which tier produced a Definition.
type Strategy int

const (
	StrategyStructural Strategy = iota
	StrategyPattern
	StrategyStub
)

func (s Strategy) String() string {
	switch s {
	case StrategyStructural:
		return "structural"
	case StrategyPattern:
		return "pattern"
	case StrategyStub:
		return "stub"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

var errPanic = errors.New("strategy panicked")

// Definition is a synthesized component definition.
type Definition struct {
	Name       string
	Params     []string
	Statements []string // verbatim source of every non-return body statement, in order
	Return     string   // verbatim source of the returned expression
	Strategy   Strategy

	// Err is the failure of the last stronger strategy, nil when the
	// structural strategy succeeded.
	Err error
}

// String emits the definition as a function declaration.
func (d Definition) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "function %s(%s) {\n", d.Name, strings.Join(d.Params, ", "))
	if len(d.Statements) > 0 {
		sb.WriteString("  ")
		sb.WriteString(strings.Join(d.Statements, "\n  "))
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "  return %s;\n}", d.Return)
	return sb.String()
}

// RenderCall returns the default render invocation for the definition.
func (d Definition) RenderCall() string {
	return "render(<" + d.Name + " />)"
}

type strategyFunc func(code string) (Definition, error)

var chain = []struct {
	kind Strategy
	run  strategyFunc
}{
	{StrategyStructural, structural},
	{StrategyPattern, pattern},
}

// Synthesize returns a standalone definition for code. First success wins.
func Synthesize(code string) Definition {
	var lastErr error
	for _, s := range chain {
		d, err := attempt(s.run, code)
		if err == nil {
			d.Strategy = s.kind
			d.Err = lastErr
			return d
		}
		lastErr = fmt.Errorf("%s: %w", s.kind, err)
	}
	d := stub()
	d.Err = lastErr
	return d
}

func attempt(run strategyFunc, code string) (d Definition, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = Definition{}
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return run(code)
}

// stub is the unconditional last tier.
func stub() Definition {
	return Definition{
		Name:     DefaultName,
		Return:   "<div>Preview unavailable</div>",
		Strategy: StrategyStub,
	}
}
