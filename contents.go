package site2pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-site2pdf/internal/assets"
	"github.com/alnah/go-site2pdf/internal/dateutil"
)

// contentsData is the template input of the contents page.
type contentsData struct {
	Title    string
	Style    template.CSS
	Body     template.HTML
	Source   string
	Captured string
}

// markdownEscaper escapes characters that would change a list entry's meaning.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`,
)

// contentsMarkdown renders the TOC as a heading followed by a nested list.
func contentsMarkdown(toc *TOCNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", markdownEscaper.Replace(toc.Title))

	type item struct {
		node  *TOCNode
		depth int
	}
	stack := make([]item, 0, len(toc.Children))
	for i := len(toc.Children) - 1; i >= 0; i-- {
		stack = append(stack, item{toc.Children[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b.WriteString(strings.Repeat("  ", it.depth))
		title := markdownEscaper.Replace(it.node.Title)
		if it.node.URL != nil {
			fmt.Fprintf(&b, "- [%s](<%s>)\n", title, it.node.URL.String())
		} else {
			fmt.Fprintf(&b, "- %s\n", title)
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
	return b.String()
}

// contentsHTML converts the TOC into a standalone HTML document styled by th.
// An empty captured omits the capture line.
func contentsHTML(toc *TOCNode, th *assets.Theme, captured string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithRendererOptions(gmhtml.WithXHTML()),
	)
	var body bytes.Buffer
	if err := md.Convert([]byte(contentsMarkdown(toc)), &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentsPage, err)
	}

	tmpl, err := template.New(assets.ContentsName).Parse(th.Template)
	if err != nil {
		return "", fmt.Errorf("%w: parsing template: %v", ErrContentsPage, err)
	}
	// The stylesheet comes from embedded or operator-owned files, and
	// goldmark escapes raw HTML in titles.
	data := contentsData{
		Title:    toc.Title,
		Style:    template.CSS(th.Style),       // #nosec G203
		Body:     template.HTML(body.String()), // #nosec G203
		Captured: captured,
	}
	if toc.URL != nil {
		data.Source = toc.URL.String()
	}

	var doc bytes.Buffer
	if err := tmpl.Execute(&doc, data); err != nil {
		return "", fmt.Errorf("%w: executing template: %v", ErrContentsPage, err)
	}
	return doc.String(), nil
}

// renderContents writes contents.pdf for a TOC with at least one entry.
func (o *Orchestrator) renderContents(ctx context.Context, toc *TOCNode, tempDir string) (string, error) {
	if toc == nil || len(toc.Children) == 0 {
		return "", fmt.Errorf("%w: table of contents is empty", ErrContentsPage)
	}
	captured, err := dateutil.Format(o.now(), o.dateFormat)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentsPage, err)
	}
	doc, err := contentsHTML(toc, o.theme, captured)
	if err != nil {
		return "", err
	}
	path := filepath.Join(tempDir, contentsFileName)
	if err := o.contents.RenderHTML(ctx, doc, path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentsPage, err)
	}
	return path, nil
}
