package site2pdf

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-site2pdf/internal/assets"
)

func sampleTOC(t *testing.T) *TOCNode {
	t.Helper()
	return &TOCNode{
		Title: "Docs *Home*",
		URL:   mustURL(t, "https://docs.example.com/"),
		Children: []*TOCNode{
			{
				Title: "Guide",
				URL:   mustURL(t, "https://docs.example.com/guide"),
				Children: []*TOCNode{
					{Title: "Install [beta]", URL: mustURL(t, "https://docs.example.com/guide/install")},
				},
			},
			{Title: "Reference"},
		},
	}
}

// ---------------------------------------------------------------------------
// TestContentsMarkdown - Nested list rendering
// ---------------------------------------------------------------------------

func TestContentsMarkdown(t *testing.T) {
	t.Parallel()

	got := contentsMarkdown(sampleTOC(t))
	want := "# Docs \\*Home\\*\n\n" +
		"- [Guide](<https://docs.example.com/guide>)\n" +
		"  - [Install \\[beta\\]](<https://docs.example.com/guide/install>)\n" +
		"- Reference\n"
	if got != want {
		t.Errorf("contentsMarkdown() =\n%s\nwant\n%s", got, want)
	}
}

func TestContentsHTML(t *testing.T) {
	t.Parallel()

	doc, err := contentsHTML(sampleTOC(t), assets.DefaultTheme(), "March 7, 2026")
	if err != nil {
		t.Fatalf("contentsHTML() error = %v", err)
	}
	for _, s := range []string{
		"<title>Docs *Home*</title>",
		"<h1>Docs *Home*</h1>",
		`<a href="https://docs.example.com/guide">Guide</a>`,
		"Install [beta]",
		"<li>Reference</li>",
		"Captured March 7, 2026 from https://docs.example.com/",
		".captured {",
	} {
		if !strings.Contains(doc, s) {
			t.Errorf("contents HTML should contain %q\n%s", s, doc)
		}
	}
}

func TestContentsHTML_CustomTheme(t *testing.T) {
	t.Parallel()

	th := &assets.Theme{
		Template: `<html><style>{{.Style}}</style><h2>{{.Title}}</h2>{{.Body}}{{if .Captured}}x{{end}}</html>`,
		Style:    "h2 { color: red; }",
	}
	doc, err := contentsHTML(sampleTOC(t), th, "")
	if err != nil {
		t.Fatalf("contentsHTML() error = %v", err)
	}
	if !strings.Contains(doc, "<style>h2 { color: red; }</style>") {
		t.Errorf("custom style not inlined:\n%s", doc)
	}
	if !strings.Contains(doc, "<h2>Docs *Home*</h2>") {
		t.Errorf("custom template not used:\n%s", doc)
	}
	if strings.Contains(doc, "x</html>") {
		t.Error("empty capture date should omit the capture block")
	}
}

func TestContentsHTML_BadTemplate(t *testing.T) {
	t.Parallel()

	th := &assets.Theme{Template: "{{.Title"}
	if _, err := contentsHTML(sampleTOC(t), th, ""); !errors.Is(err, ErrContentsPage) {
		t.Errorf("contentsHTML() error = %v, want ErrContentsPage", err)
	}
}

func TestContentsHTML_EscapesTitle(t *testing.T) {
	t.Parallel()

	toc := &TOCNode{Title: "<script>x</script>", Children: []*TOCNode{{Title: "a"}}}
	doc, err := contentsHTML(toc, assets.DefaultTheme(), "")
	if err != nil {
		t.Fatalf("contentsHTML() error = %v", err)
	}
	if strings.Contains(doc, "<script>") {
		t.Errorf("title should be escaped:\n%s", doc)
	}
}

func TestRenderContents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	o := NewOrchestrator(nil, &fakeMerger{},
		WithResolver(publicResolver()),
		WithFetcher(newFakeFetcher(nil)),
		WithContentsPage(&fakeRenderer{}))

	path, err := o.renderContents(context.Background(), sampleTOC(t), dir)
	if err != nil {
		t.Fatalf("renderContents() error = %v", err)
	}
	if path != filepath.Join(dir, contentsFileName) {
		t.Errorf("path = %q", path)
	}

	_, err = o.renderContents(context.Background(), &TOCNode{Title: "empty"}, dir)
	if !errors.Is(err, ErrContentsPage) {
		t.Errorf("empty TOC error = %v, want ErrContentsPage", err)
	}
}
