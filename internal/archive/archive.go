// Package archive packages generated components as a downloadable zip.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/compgen/internal/record"
)

// FileName is the suggested download name.
const FileName = "all-components.zip"

// ErrEmpty reports that no component carried code.
var ErrEmpty = errors.New("no components with code to package")

// Writer renders component archives.
type Writer struct {
	md  goldmark.Markdown
	now func() time.Time
}

func NewWriter() *Writer {
	return &Writer{
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		now: time.Now,
	}
}

// Write packages comps into w with the default Writer.
func Write(w io.Writer, comps []record.Component) error {
	return NewWriter().Write(w, comps)
}

type indexEntry struct {
	slug string
	c    record.Component
}

// Write emits, per component with code, <slug>/<Name>.tsx, <slug>/README.md
// and <slug>/README.html, plus a root index.md. Components without code are
// skipped; colliding slugs get numeric suffixes.
func (a *Writer) Write(w io.Writer, comps []record.Component) error {
	zw := zip.NewWriter(w)
	modified := a.now()

	used := make(map[string]bool)
	var index []indexEntry
	for _, c := range comps {
		if strings.TrimSpace(c.Code) == "" {
			continue
		}
		slug := uniqueSlug(used, baseSlug(c))
		readme := Readme(c)

		page, err := a.renderHTML(c.Name, readme)
		if err != nil {
			return fmt.Errorf("render %s: %w", slug, err)
		}

		files := []struct {
			name string
			body []byte
		}{
			{slug + "/" + sourceName(c.Name) + ".tsx", []byte(strings.TrimSpace(c.Code) + "\n")},
			{slug + "/README.md", []byte(readme)},
			{slug + "/README.html", page},
		}
		for _, f := range files {
			if err := writeFile(zw, f.name, f.body, modified); err != nil {
				return err
			}
		}
		index = append(index, indexEntry{slug: slug, c: c})
	}
	if len(index) == 0 {
		return ErrEmpty
	}

	if err := writeFile(zw, "index.md", []byte(indexMarkdown(index)), modified); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func writeFile(zw *zip.Writer, name string, body []byte, modified time.Time) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(body); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Readme renders the markdown documentation page of a component.
func Readme(c record.Component) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", c.Description)
	}
	if c.Category != "" {
		fmt.Fprintf(&sb, "**Category:** %s\n\n", c.Category)
	}
	if c.Documentation != "" {
		sb.WriteString(strings.TrimSpace(c.Documentation))
		sb.WriteString("\n\n")
	}
	sb.WriteString("## Code\n\n```tsx\n")
	sb.WriteString(strings.TrimSpace(c.Code))
	sb.WriteString("\n```\n")
	return sb.String()
}

func (a *Writer) renderHTML(title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := a.md.Convert([]byte(markdown), &body); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		html.EscapeString(title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

func indexMarkdown(entries []indexEntry) string {
	var sb strings.Builder
	sb.WriteString("# Components\n\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "- [%s](%s/README.md)", e.c.Name, e.slug)
		if e.c.Category != "" {
			fmt.Fprintf(&sb, " (%s)", e.c.Category)
		}
		if e.c.Description != "" {
			fmt.Fprintf(&sb, ": %s", e.c.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func baseSlug(c record.Component) string {
	if s := record.Slugify(c.ID); s != "" {
		return s
	}
	if s := record.Slugify(c.Name); s != "" {
		return s
	}
	return "component"
}

func uniqueSlug(used map[string]bool, slug string) string {
	candidate := slug
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
	used[candidate] = true
	return candidate
}

// sourceName keeps identifier characters of name for the .tsx file name.
func sourceName(name string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, name)
	if s == "" {
		return "Component"
	}
	return s
}
