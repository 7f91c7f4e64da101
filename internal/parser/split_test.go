package parser

import "testing"

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		texts []string
	}{
		{"single", "a", []string{"a"}},
		{"two blocks", "a\n---\nb", []string{"a", "b"}},
		{"trailing delimiter without newline", "a\n---", []string{"a\n---"}},
		{"trailing delimiter with newline", "a\n---\n", []string{"a"}},
		{"indented dashes", "a\n ---\nb", []string{"a\n ---\nb"}},
		{"longer rule", "a\n----\nb", []string{"a\n----\nb"}},
		{"leading dashes", "---\nb", []string{"---\nb"}},
		{"consecutive delimiters", "a\n---\n---\nb", []string{"a", "b"}},
		{"crlf", "a\r\n---\r\nb", []string{"a", "b"}},
		{"blank blocks dropped", "\n---\n  \n---\nc", []string{"c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blocks := Split(tc.in, false)
			if len(blocks) != len(tc.texts) {
				t.Fatalf("expected %d blocks, got %d: %+v", len(tc.texts), len(blocks), blocks)
			}
			for i, want := range tc.texts {
				if blocks[i].Text != want {
					t.Errorf("block %d: expected %q, got %q", i, want, blocks[i].Text)
				}
			}
		})
	}
}

func TestSplit_Classification(t *testing.T) {
	blocks := Split("intro\n# Component: Button\n## ID: b\n---\n# Analysis: Overall\n---\n# Other\n# Component: Late", false)
	want := []struct {
		kind  Kind
		title string
	}{
		{KindComponent, "Button"},
		{KindAnalysis, "Overall"},
		{KindUnclassified, ""},
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(blocks))
	}
	for i, w := range want {
		if blocks[i].Kind != w.kind || blocks[i].Title != w.title {
			t.Errorf("block %d: expected %s %q, got %s %q", i, w.kind, w.title, blocks[i].Kind, blocks[i].Title)
		}
	}
}

func TestSplit_FenceAwareUnterminatedFence(t *testing.T) {
	// An open fence protects everything after it.
	blocks := Split("# Component: A\n```tsx\nx\n---\ny", true)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
}
