package parser

import "strings"

const fenceMarker = "```"

// Fence is one closed fenced code block.
type Fence struct {
	Lang    string // lowercased first word of the info string
	Content string // lines between the markers
}

var codeLangs = map[string]bool{
	"":    true,
	"tsx": true,
	"ts":  true,
	"jsx": true,
	"js":  true,
}

// Fences returns the closed fenced blocks of s in order. A fence still open
// at the end of s is not returned.
func Fences(s string) []Fence {
	var (
		out  []Fence
		open bool
		lang string
		buf  []string
	)
	for _, ln := range strings.Split(s, "\n") {
		t := strings.TrimSpace(ln)
		if !open {
			if info, ok := strings.CutPrefix(t, fenceMarker); ok {
				open = true
				lang = strings.ToLower(firstWord(info))
				buf = buf[:0]
			}
			continue
		}
		if t == fenceMarker {
			out = append(out, Fence{Lang: lang, Content: strings.Join(buf, "\n")})
			open = false
			continue
		}
		buf = append(buf, ln)
	}
	return out
}

// codeFences filters Fences(s) down to code-language fences.
func codeFences(s string) []Fence {
	var out []Fence
	for _, f := range Fences(s) {
		if codeLangs[f.Lang] {
			out = append(out, f)
		}
	}
	return out
}

func firstFence(s string) (Fence, bool) {
	fs := codeFences(s)
	if len(fs) == 0 {
		return Fence{}, false
	}
	return fs[0], true
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
