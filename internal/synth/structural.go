package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

var (
	errSyntax      = errors.New("fragment has syntax errors")
	errNoCandidate = errors.New("no component definition with a return expression")
)

// span is a byte range of the original fragment.
type span struct {
	start, end uint32
}

func spanOf(n *sitter.Node) span {
	return span{start: n.StartByte(), end: n.EndByte()}
}

func (s span) text(src []byte) string {
	return string(src[s.start:s.end])
}

// param is an identifier parameter or a destructuring parameter.
type param interface {
	signature() string
}

type identParam struct {
	name string
}

func (p identParam) signature() string { return p.name }

type destructParam struct {
	keys []string
}

func (p destructParam) signature() string {
	if len(p.keys) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(p.keys, ", ") + " }"
}

// body is a statement block or a single expression.
type body interface {
	isBody()
}

type blockBody struct {
	stmts []span
	ret   *span // argument of the last top-level return, nil if none
}

type exprBody struct {
	expr span
}

func (blockBody) isBody() {}
func (exprBody) isBody()  {}

// candidate is one top-level function declaration or arrow-bound variable.
type candidate struct {
	name     string
	params   []param
	body     body
	exported bool // declared under export default
}

// resolve returns the verbatim statements and return expression.
func (c candidate) resolve(src []byte) (stmts []string, ret string, ok bool) {
	switch b := c.body.(type) {
	case blockBody:
		if b.ret == nil {
			return nil, "", false
		}
		for _, s := range b.stmts {
			stmts = append(stmts, s.text(src))
		}
		return stmts, b.ret.text(src), true
	case exprBody:
		return nil, b.expr.text(src), true
	default:
		return nil, "", false
	}
}

// structural parses the fragment as TSX and rebuilds the component from
// verbatim source spans.
func structural(code string) (Definition, error) {
	src := []byte(code)

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(tsx.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return Definition{}, fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Definition{}, errSyntax
	}

	c := &collector{src: src}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c.visit(root.NamedChild(i), false)
	}

	best, stmts, ret, ok := c.pick()
	if !ok {
		return Definition{}, errNoCandidate
	}

	params := make([]string, 0, len(best.params))
	for _, prm := range best.params {
		params = append(params, prm.signature())
	}
	return Definition{
		Name:       best.name,
		Params:     params,
		Statements: stmts,
		Return:     ret,
	}, nil
}

type collector struct {
	src         []byte
	candidates  []candidate
	defaultName string // identifier named by `export default X`
}

func (c *collector) text(n *sitter.Node) string {
	return spanOf(n).text(c.src)
}

// visit inspects one top-level statement.
func (c *collector) visit(n *sitter.Node, exported bool) {
	switch n.Type() {
	case "export_statement":
		isDefault := false
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.Child(i).Type() == "default" {
				isDefault = true
				break
			}
		}
		if d := n.ChildByFieldName("declaration"); d != nil {
			c.visit(d, isDefault)
			return
		}
		v := n.ChildByFieldName("value")
		if v == nil || !isDefault {
			return
		}
		switch v.Type() {
		case "identifier":
			c.defaultName = c.text(v)
		case "function_expression", "function":
			if v.ChildByFieldName("name") != nil {
				c.visitFunction(v, true)
			}
		}

	case "function_declaration":
		c.visitFunction(n, exported)

	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			d := n.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			name := d.ChildByFieldName("name")
			value := d.ChildByFieldName("value")
			if name == nil || value == nil || name.Type() != "identifier" || value.Type() != "arrow_function" {
				continue
			}
			c.candidates = append(c.candidates, c.arrow(c.text(name), value, exported))
		}
	}
}

func (c *collector) visitFunction(n *sitter.Node, exported bool) {
	name := n.ChildByFieldName("name")
	block := n.ChildByFieldName("body")
	if name == nil || block == nil {
		return
	}
	c.candidates = append(c.candidates, candidate{
		name:     c.text(name),
		params:   c.params(n.ChildByFieldName("parameters")),
		body:     c.block(block),
		exported: exported,
	})
}

func (c *collector) arrow(name string, fn *sitter.Node, exported bool) candidate {
	cand := candidate{name: name, exported: exported}
	if p := fn.ChildByFieldName("parameter"); p != nil {
		if p.Type() == "identifier" {
			cand.params = []param{identParam{name: c.text(p)}}
		}
	} else {
		cand.params = c.params(fn.ChildByFieldName("parameters"))
	}

	b := fn.ChildByFieldName("body")
	switch {
	case b == nil:
		cand.body = blockBody{}
	case b.Type() == "statement_block":
		cand.body = c.block(b)
	default:
		cand.body = exprBody{expr: spanOf(unparen(b))}
	}
	return cand
}

func (c *collector) params(list *sitter.Node) []param {
	if list == nil {
		return nil
	}
	var out []param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		n := list.NamedChild(i)
		if n.Type() == "required_parameter" || n.Type() == "optional_parameter" {
			n = n.ChildByFieldName("pattern")
			if n == nil {
				continue
			}
		}
		switch n.Type() {
		case "identifier":
			out = append(out, identParam{name: c.text(n)})
		case "object_pattern":
			out = append(out, destructParam{keys: c.keys(n)})
		}
	}
	return out
}

// keys returns the top-level key names of an object pattern.
func (c *collector) keys(pat *sitter.Node) []string {
	var keys []string
	for i := 0; i < int(pat.NamedChildCount()); i++ {
		n := pat.NamedChild(i)
		var key *sitter.Node
		switch n.Type() {
		case "shorthand_property_identifier_pattern", "shorthand_property_identifier":
			key = n
		case "pair_pattern":
			key = n.ChildByFieldName("key")
		case "object_assignment_pattern":
			key = n.ChildByFieldName("left")
		}
		if key == nil || !isIdentLike(key.Type()) {
			continue
		}
		keys = append(keys, c.text(key))
	}
	return keys
}

func isIdentLike(t string) bool {
	switch t {
	case "identifier", "property_identifier",
		"shorthand_property_identifier_pattern", "shorthand_property_identifier":
		return true
	}
	return false
}

func (c *collector) block(n *sitter.Node) blockBody {
	var b blockBody
	for i := 0; i < int(n.NamedChildCount()); i++ {
		s := n.NamedChild(i)
		switch s.Type() {
		case "comment", "empty_statement":
			continue
		case "return_statement":
			if arg := firstNamed(s); arg != nil {
				sp := spanOf(unparen(arg))
				b.ret = &sp
			}
		default:
			b.stmts = append(b.stmts, spanOf(s))
		}
	}
	return b
}

// pick chooses the definition to emit: the default export, else the last
// capitalized candidate, else the last candidate. Candidates without a
// return expression are never chosen.
func (c *collector) pick() (candidate, []string, string, bool) {
	type resolved struct {
		cand  candidate
		stmts []string
		ret   string
	}
	var usable []resolved
	for _, cand := range c.candidates {
		if stmts, ret, ok := cand.resolve(c.src); ok && strings.TrimSpace(ret) != "" {
			usable = append(usable, resolved{cand, stmts, ret})
		}
	}
	if len(usable) == 0 {
		return candidate{}, nil, "", false
	}

	for _, r := range usable {
		if r.cand.exported || (c.defaultName != "" && r.cand.name == c.defaultName) {
			return r.cand, r.stmts, r.ret, true
		}
	}
	for i := len(usable) - 1; i >= 0; i-- {
		if isCapitalized(usable[i].cand.name) {
			r := usable[i]
			return r.cand, r.stmts, r.ret, true
		}
	}
	r := usable[len(usable)-1]
	return r.cand, r.stmts, r.ret, true
}

func isCapitalized(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func firstNamed(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != "comment" {
			return c
		}
	}
	return nil
}

// unparen strips redundant parentheses around an expression.
func unparen(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" {
		inner := firstNamed(n)
		if inner == nil {
			break
		}
		n = inner
	}
	return n
}
