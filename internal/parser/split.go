package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind classifies a block by its leading header line.
type Kind int

const (
	KindUnclassified Kind = iota
	KindComponent
	KindAnalysis
)

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindAnalysis:
		return "analysis"
	default:
		return "unclassified"
	}
}

const (
	componentHeader = "# Component:"
	analysisHeader  = "# Analysis:"

	// delimiter is a line consisting of exactly "---".
	delimiter = "\n---\n"
)

// Block is one top-level section of the accumulated text.
type Block struct {
	Kind  Kind
	Title string // header text after the "# Component:" / "# Analysis:" label
	Text  string // trimmed block text
}

// Split partitions text on delimiter lines into trimmed, non-empty blocks.
// A "---" line only delimits when it is terminated by a newline, so a
// delimiter still streaming in is not split on prematurely. With fenceAware,
// delimiter lines inside fenced code are ignored.
func Split(s string, fenceAware bool) []Block {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var protected []byteRange
	if fenceAware {
		protected = fencedRanges([]byte(s))
	}

	var blocks []Block
	start, from := 0, 0
	for {
		i := strings.Index(s[from:], delimiter)
		if i < 0 {
			break
		}
		nl := from + i
		lineStart := nl + 1
		if inRanges(protected, lineStart) {
			from = lineStart
			continue
		}
		if nl > start {
			blocks = appendBlock(blocks, s[start:nl])
		}
		start = nl + len(delimiter)
		// The terminating newline may open the next delimiter.
		from = start - 1
	}
	return appendBlock(blocks, s[start:])
}

func appendBlock(blocks []Block, raw string) []Block {
	t := strings.TrimSpace(raw)
	if t == "" {
		return blocks
	}
	kind, title := classify(t)
	return append(blocks, Block{Kind: kind, Title: title, Text: t})
}

// classify inspects the first level-one heading of the block.
func classify(block string) (Kind, string) {
	for _, ln := range strings.Split(block, "\n") {
		t := strings.TrimSpace(ln)
		if !strings.HasPrefix(t, "# ") {
			continue
		}
		if rest, ok := strings.CutPrefix(t, componentHeader); ok {
			return KindComponent, strings.TrimSpace(rest)
		}
		if rest, ok := strings.CutPrefix(t, analysisHeader); ok {
			return KindAnalysis, strings.TrimSpace(rest)
		}
		return KindUnclassified, ""
	}
	return KindUnclassified, ""
}

type byteRange struct {
	start, stop int
}

func inRanges(rs []byteRange, pos int) bool {
	for _, r := range rs {
		if pos >= r.start && pos < r.stop {
			return true
		}
	}
	return false
}

// fencedRanges returns the byte ranges covered by fenced code content.
// An unterminated fence extends to the end of the document.
func fencedRanges(src []byte) []byteRange {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []byteRange
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := fb.Lines()
		if lines.Len() > 0 {
			out = append(out, byteRange{
				start: lines.At(0).Start,
				stop:  lines.At(lines.Len() - 1).Stop,
			})
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}
