package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/dgallion1/compgen/internal/record"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = string(body)
	}
	return files
}

func TestWrite_Layout(t *testing.T) {
	comps := []record.Component{
		{
			ID:            "primary-button",
			Name:          "PrimaryButton",
			Category:      "Inputs",
			Description:   "A button.",
			Documentation: "| Prop | Type |\n|---|---|\n| label | string |",
			Code:          "const PrimaryButton = () => <button />;",
		},
		{ID: "draft", Name: "Draft"},
		{ID: "Primary Button", Name: "Second Button!", Code: "const B = () => <b />;"},
	}

	var buf bytes.Buffer
	if err := Write(&buf, comps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	files := readZip(t, buf.Bytes())

	var names []string
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{
		"index.md",
		"primary-button-2/README.html",
		"primary-button-2/README.md",
		"primary-button-2/SecondButton.tsx",
		"primary-button/PrimaryButton.tsx",
		"primary-button/README.html",
		"primary-button/README.md",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("expected files %v, got %v", want, names)
	}

	if got := files["primary-button/PrimaryButton.tsx"]; got != "const PrimaryButton = () => <button />;\n" {
		t.Errorf("unexpected source %q", got)
	}
	readme := files["primary-button/README.md"]
	for _, s := range []string{"# PrimaryButton", "A button.", "**Category:** Inputs", "```tsx"} {
		if !strings.Contains(readme, s) {
			t.Errorf("expected README to contain %q", s)
		}
	}
	page := files["primary-button/README.html"]
	if !strings.Contains(page, "<table>") {
		t.Errorf("expected GFM table rendering, got %q", page)
	}
	if !strings.Contains(page, "<title>PrimaryButton</title>") {
		t.Errorf("expected a titled page, got %q", page)
	}
	if strings.Contains(files["index.md"], "Draft") {
		t.Error("expected components without code to be skipped")
	}
}

func TestWrite_NothingToPackage(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []record.Component{{ID: "a", Name: "A"}})
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestUniqueSlug(t *testing.T) {
	used := make(map[string]bool)
	got := []string{
		uniqueSlug(used, "a"),
		uniqueSlug(used, "a"),
		uniqueSlug(used, "a-2"),
		uniqueSlug(used, "a"),
	}
	want := []string{"a", "a-2", "a-2-2", "a-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSourceName(t *testing.T) {
	tests := map[string]string{
		"PrimaryButton":  "PrimaryButton",
		"Second Button!": "SecondButton",
		"../../etc":      "etc",
		"":               "Component",
	}
	for in, want := range tests {
		if got := sourceName(in); got != want {
			t.Errorf("sourceName(%q): expected %q, got %q", in, want, got)
		}
	}
}
