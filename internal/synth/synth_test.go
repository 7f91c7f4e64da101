package synth

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func source(code string) string {
	return Synthesize(code).String()
}

func TestSynthesize_ArrowWithExpressionBody(t *testing.T) {
	d := Synthesize("const Foo = () => <div>Hi</div>")

	if d.Strategy != StrategyStructural {
		t.Fatalf("expected structural strategy, got %s (err: %v)", d.Strategy, d.Err)
	}
	if d.Name != "Foo" {
		t.Errorf("expected name %q, got %q", "Foo", d.Name)
	}
	if d.Return != "<div>Hi</div>" {
		t.Errorf("expected return %q, got %q", "<div>Hi</div>", d.Return)
	}
	if len(d.Statements) != 0 {
		t.Errorf("expected no statements, got %v", d.Statements)
	}
	want := "function Foo() {\n  return <div>Hi</div>;\n}"
	if d.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, d.String())
	}
}

func TestSynthesize_FunctionWithDestructuredParams(t *testing.T) {
	d := Synthesize("function Foo({ a, b }) { return <span>{a}{b}</span> }")

	if d.Strategy != StrategyStructural {
		t.Fatalf("expected structural strategy, got %s (err: %v)", d.Strategy, d.Err)
	}
	if len(d.Params) != 1 || d.Params[0] != "{ a, b }" {
		t.Errorf("expected params [{ a, b }], got %v", d.Params)
	}
	if d.Return != "<span>{a}{b}</span>" {
		t.Errorf("expected return %q, got %q", "<span>{a}{b}</span>", d.Return)
	}
	if !strings.HasPrefix(d.String(), "function Foo({ a, b }) {") {
		t.Errorf("unexpected definition header: %q", d.String())
	}
}

func TestSynthesize_TypedArrowKeepsStatementsVerbatim(t *testing.T) {
	code := `import React, { useState } from 'react';

interface CounterProps {
  initial?: number;
  label: string;
}

const Counter: React.FC<CounterProps> = ({ initial = 0, label: title }) => {
  const [count, setCount] = useState(initial);
  // increments the counter
  const inc = () => setCount(count + 1);
  return (
    <button onClick={inc}>{title}: {count}</button>
  );
};

export default Counter;`

	d := Synthesize(code)
	if d.Strategy != StrategyStructural {
		t.Fatalf("expected structural strategy, got %s (err: %v)", d.Strategy, d.Err)
	}
	if d.Name != "Counter" {
		t.Errorf("expected name Counter, got %q", d.Name)
	}
	if len(d.Params) != 1 || d.Params[0] != "{ initial, label }" {
		t.Errorf("expected params [{ initial, label }], got %v", d.Params)
	}
	wantStmts := []string{
		"const [count, setCount] = useState(initial);",
		"const inc = () => setCount(count + 1);",
	}
	if len(d.Statements) != len(wantStmts) {
		t.Fatalf("expected %d statements, got %d: %v", len(wantStmts), len(d.Statements), d.Statements)
	}
	for i, w := range wantStmts {
		if d.Statements[i] != w {
			t.Errorf("statement[%d]: expected %q, got %q", i, w, d.Statements[i])
		}
	}
	if d.Return != "<button onClick={inc}>{title}: {count}</button>" {
		t.Errorf("unexpected return: %q", d.Return)
	}
	if strings.Contains(d.String(), "CounterProps") {
		t.Errorf("expected type annotations to be dropped, got:\n%s", d.String())
	}
}

func TestSynthesize_SingleBareParameter(t *testing.T) {
	d := Synthesize("const Label = props => <label>{props.text}</label>;")
	if d.Strategy != StrategyStructural {
		t.Fatalf("expected structural strategy, got %s (err: %v)", d.Strategy, d.Err)
	}
	if len(d.Params) != 1 || d.Params[0] != "props" {
		t.Errorf("expected params [props], got %v", d.Params)
	}
}

func TestSynthesize_PrefersDefaultExport(t *testing.T) {
	code := `export default function Panel() {
  return <section />;
}

const Extra = () => <i />;`

	d := Synthesize(code)
	if d.Name != "Panel" {
		t.Errorf("expected default export Panel, got %q", d.Name)
	}
	if d.Return != "<section />" {
		t.Errorf("unexpected return: %q", d.Return)
	}
}

func TestSynthesize_LastCapitalizedDefinitionWins(t *testing.T) {
	code := `const Icon = () => <svg />;

function Card({ title }) {
  return <div><Icon />{title}</div>;
}

const helper = () => <b />;`

	d := Synthesize(code)
	if d.Name != "Card" {
		t.Errorf("expected Card, got %q", d.Name)
	}
	if len(d.Params) != 1 || d.Params[0] != "{ title }" {
		t.Errorf("expected params [{ title }], got %v", d.Params)
	}
}

func TestSynthesize_LastReturnWins(t *testing.T) {
	code := `function Toggle({ on }) {
  if (on) {
    return <b>on</b>;
  }
  return <i>off</i>;
}`
	d := Synthesize(code)
	if d.Return != "<i>off</i>" {
		t.Errorf("expected final return, got %q", d.Return)
	}
	if len(d.Statements) != 1 || !strings.HasPrefix(d.Statements[0], "if (on)") {
		t.Errorf("expected the if statement to be kept verbatim, got %v", d.Statements)
	}
}

func TestSynthesize_PatternFallbackOnSyntaxError(t *testing.T) {
	d := Synthesize(`return <div className="x">hello</div> }}}`)

	if d.Strategy != StrategyPattern {
		t.Fatalf("expected pattern strategy, got %s", d.Strategy)
	}
	if d.Err == nil {
		t.Error("expected the structural failure to be recorded")
	}
	want := "function Component() {\n  return <div className=\"x\">hello</div>;\n}"
	if d.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, d.String())
	}
}

func TestSynthesize_PatternFallbackSelfClosing(t *testing.T) {
	d := Synthesize("const = = <Spinner size={3} />")
	if d.Strategy != StrategyPattern {
		t.Fatalf("expected pattern strategy, got %s", d.Strategy)
	}
	if d.Return != "<Spinner size={3} />" {
		t.Errorf("unexpected return: %q", d.Return)
	}
}

func TestSynthesize_StubWhenNothingUsable(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"unbalanced", "{{{{ (((("},
		{"no return", "const useThing = () => { doIt(); }"},
		{"plain value", "const x = 1;"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Synthesize(tc.code)
			if d.Strategy != StrategyStub {
				t.Fatalf("expected stub strategy, got %s", d.Strategy)
			}
			if d.Name != DefaultName {
				t.Errorf("expected name %q, got %q", DefaultName, d.Name)
			}
		})
	}
}

func TestSynthesize_NeverFailsOnHostileInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	garbage := make([]byte, 512)
	for i := range garbage {
		garbage[i] = byte(rng.IntN(256))
	}

	inputs := []string{
		"",
		"\x00\xff\xfe\x01",
		string(garbage),
		strings.Repeat("{", 2000),
		strings.Repeat("(<div>", 500),
		"function (",
		"const A = () => <div>",
		"```tsx\nconst A = () => <a/>\n```",
	}
	for i, in := range inputs {
		out := source(in)
		if out == "" {
			t.Errorf("input %d: expected non-empty output", i)
		}
		if !strings.Contains(out, "function ") {
			t.Errorf("input %d: expected a function definition, got %q", i, out)
		}
	}
}

func TestRenderCall(t *testing.T) {
	d := Definition{Name: "Button"}
	if got := d.RenderCall(); got != "render(<Button />)" {
		t.Errorf("expected render(<Button />), got %q", got)
	}
}

func TestAttemptRecoversPanics(t *testing.T) {
	_, err := attempt(func(string) (Definition, error) { panic("boom") }, "x")
	if err == nil {
		t.Fatal("expected an error from a panicking strategy")
	}
}

func FuzzSynthesize(f *testing.F) {
	f.Add("const Foo = () => <div>Hi</div>")
	f.Add("function Foo({ a, b }) { return <span>{a}{b}</span> }")
	f.Add("<<<>>>")
	f.Add("")
	f.Fuzz(func(t *testing.T, code string) {
		out := source(code)
		if !strings.Contains(out, "function ") {
			t.Fatalf("expected a function definition, got %q", out)
		}
	})
}
