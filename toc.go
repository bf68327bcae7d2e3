package site2pdf

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TOC extraction limits.
const (
	maxFlatEntries      = 100
	maxAugmentEntries   = 50
	maxTreeNodes        = 1000
	minContainerLinks   = 2
	navigationSelectors = "nav, [role=navigation], [role=menu], [role=menubar], [role=tree], aside"
)

// navClassPattern matches class or id values of menus, sidebars, headers
// and footers. Word boundaries avoid hits such as "canvas" or "unavailable".
var navClassPattern = regexp.MustCompile(`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|sidebar|toc|table-of-contents|site-header|page-header|header|footer|site-footer|page-footer|docs-menu|summary)([^a-z]|$)`)

// TOCExtractor infers a chapter tree from a page's HTML.
type TOCExtractor interface {
	// CanHandle reports whether this extractor understands pages at u.
	CanHandle(u *url.URL) bool
	// Extract never fails: unusable input yields a childless root for u.
	Extract(ctx context.Context, u *url.URL, htmlContent string) *TOCNode
}

// ExtractorChain dispatches to the first extractor whose CanHandle matches.
// The generic extractor is always last.
type ExtractorChain struct {
	extractors []TOCExtractor
}

// NewExtractorChain returns a chain of the given site-specific extractors
// followed by the generic fallback.
func NewExtractorChain(specific ...TOCExtractor) *ExtractorChain {
	chain := make([]TOCExtractor, 0, len(specific)+1)
	for _, e := range specific {
		if e != nil {
			chain = append(chain, e)
		}
	}
	return &ExtractorChain{extractors: append(chain, &GenericExtractor{})}
}

// CanHandle always reports true because the generic fallback accepts anything.
func (c *ExtractorChain) CanHandle(*url.URL) bool { return true }

// Extract runs the first matching extractor.
func (c *ExtractorChain) Extract(ctx context.Context, u *url.URL, htmlContent string) *TOCNode {
	for _, e := range c.extractors {
		if e.CanHandle(u) {
			return e.Extract(ctx, u, htmlContent)
		}
	}
	return emptyRoot(u)
}

// GenericExtractor reads navigation menus of arbitrary sites.
type GenericExtractor struct{}

// CanHandle always reports true.
func (*GenericExtractor) CanHandle(*url.URL) bool { return true }

func emptyRoot(u *url.URL) *TOCNode {
	return &TOCNode{Title: u.String(), URL: u, Children: []*TOCNode{}}
}

// tocExtraction holds per-call state.
type tocExtraction struct {
	page  *url.URL
	base  *url.URL
	nodes int
}

// Extract builds the TOC for the page at u.
func (g *GenericExtractor) Extract(ctx context.Context, u *url.URL, htmlContent string) *TOCNode {
	root := emptyRoot(u)
	if strings.TrimSpace(htmlContent) == "" {
		return root
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return root
	}

	x := &tocExtraction{page: u, base: u}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			x.base = u.ResolveReference(ref)
		}
	}

	root.Title = documentTitle(doc, u)
	rootKey := tocKey(u)

	pool := x.flatPool(doc, rootKey)

	var children []*TOCNode
	for _, container := range navContainers(doc) {
		if ctx.Err() != nil {
			break
		}
		if x.countInternalLinks(container) < minContainerLinks {
			continue
		}
		children = append(children, x.walkContainer(container, rootKey)...)
	}

	if len(children) == 0 {
		if len(pool) > maxFlatEntries {
			pool = pool[:maxFlatEntries]
		}
		root.Children = append(root.Children, pool...)
		return root
	}

	present := map[string]bool{rootKey: true}
	collectKeys(children, present)
	added := 0
	for _, n := range pool {
		if added >= maxAugmentEntries {
			break
		}
		k := tocKey(n.URL)
		if present[k] {
			continue
		}
		present[k] = true
		children = append(children, n)
		added++
	}
	root.Children = children
	return root
}

// documentTitle prefers <title>, then the first <h1>, then the URL.
func documentTitle(doc *goquery.Document, u *url.URL) string {
	if t := collapseSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := collapseSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return u.String()
}

// flatPool returns every internal anchor once, in document order.
func (x *tocExtraction) flatPool(doc *goquery.Document, rootKey string) []*TOCNode {
	seen := map[string]bool{rootKey: true}
	var pool []*TOCNode
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target := x.resolve(href)
		if target == nil {
			return
		}
		k := tocKey(target)
		if seen[k] {
			return
		}
		seen[k] = true
		pool = append(pool, &TOCNode{Title: anchorTitle(s, target), URL: target})
	})
	return pool
}

// navContainers returns outermost navigation elements in document order.
func navContainers(doc *goquery.Document) []*html.Node {
	matched := make(map[*html.Node]bool)
	var ordered []*html.Node
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if !isNavContainer(s) {
			return
		}
		n := s.Get(0)
		for p := n.Parent; p != nil; p = p.Parent {
			if matched[p] {
				return
			}
		}
		matched[n] = true
		ordered = append(ordered, n)
	})
	return ordered
}

func isNavContainer(s *goquery.Selection) bool {
	if s.Is(navigationSelectors) {
		return true
	}
	for _, attr := range []string{"class", "id"} {
		if v, ok := s.Attr(attr); ok && navClassPattern.MatchString(v) {
			return true
		}
	}
	return false
}

// countInternalLinks counts anchors inside n that resolve to this site.
func (x *tocExtraction) countInternalLinks(n *html.Node) int {
	count := 0
	goquery.NewDocumentFromNode(n).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if x.resolve(href) != nil {
			count++
		}
	})
	return count
}

// listFrame is a cursor over the <li> children of one list.
type listFrame struct {
	next   *html.Node
	attach *[]*TOCNode
}

// walkContainer turns the nested lists of a navigation container into a
// tree. It walks iteratively in document order; each URL appears once per
// container and never under itself.
func (x *tocExtraction) walkContainer(container *html.Node, rootKey string) []*TOCNode {
	var top []*TOCNode
	processed := map[string]bool{rootKey: true}

	lists := ownLists(container)
	stack := make([]*listFrame, 0, len(lists))
	for i := len(lists) - 1; i >= 0; i-- {
		stack = append(stack, &listFrame{next: lists[i].FirstChild, attach: &top})
	}

	for len(stack) > 0 && x.nodes < maxTreeNodes {
		frame := stack[len(stack)-1]
		li := nextListItem(frame.next)
		if li == nil {
			stack = stack[:len(stack)-1]
			continue
		}
		frame.next = li.NextSibling

		attach := frame.attach
		if a := ownAnchor(li); a != nil {
			target := x.resolve(attrValue(a, "href"))
			if target != nil && !processed[tocKey(target)] {
				processed[tocKey(target)] = true
				node := &TOCNode{Title: anchorTitle(goquery.NewDocumentFromNode(a).Selection, target), URL: target}
				*attach = append(*attach, node)
				x.nodes++
				attach = &node.Children
			}
		}

		nested := ownLists(li)
		for i := len(nested) - 1; i >= 0; i-- {
			stack = append(stack, &listFrame{next: nested[i].FirstChild, attach: attach})
		}
	}
	return top
}

// nextListItem returns n or its first following <li> sibling.
func nextListItem(n *html.Node) *html.Node {
	for ; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li {
			return n
		}
	}
	return nil
}

// ownLists returns the <ul>/<ol> elements under n that are not nested in
// another list below n.
func ownLists(n *html.Node) []*html.Node {
	var lists []*html.Node
	var stack []*html.Node
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, c)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == html.ElementNode && (cur.DataAtom == atom.Ul || cur.DataAtom == atom.Ol) {
			lists = append(lists, cur)
			continue
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return lists
}

// ownAnchor returns the first <a href> inside li that is not inside a
// nested list.
func ownAnchor(li *html.Node) *html.Node {
	var stack []*html.Node
	for c := li.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, c)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type != html.ElementNode {
			continue
		}
		switch cur.DataAtom {
		case atom.Ul, atom.Ol:
			continue
		case atom.A:
			if attrValue(cur, "href") != "" {
				return cur
			}
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return nil
}

// resolve maps an href to an internal page URL, or nil. Bare fragments keep
// the fragment on the current page so hash-routed pages stay distinct.
func (x *tocExtraction) resolve(href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return nil
	}
	if strings.HasPrefix(href, "#") {
		u := stripFragment(x.page)
		u.Fragment = href[1:]
		return u
	}
	u := resolveLink(x.base, href)
	if u == nil || !sameHost(u, x.page) {
		return nil
	}
	return stripFragment(u)
}

// tocKey is NormalizeKey plus the fragment, if any.
func tocKey(u *url.URL) string {
	k := NormalizeKey(u)
	if u.Fragment != "" {
		k += "#" + u.Fragment
	}
	return k
}

func collectKeys(nodes []*TOCNode, into map[string]bool) {
	stack := append([]*TOCNode(nil), nodes...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		into[tocKey(n.URL)] = true
		stack = append(stack, n.Children...)
	}
}

// anchorTitle picks visible text, then title or aria-label, then the URL.
func anchorTitle(s *goquery.Selection, target *url.URL) string {
	if t := collapseSpace(s.Text()); t != "" {
		return t
	}
	for _, attr := range []string{"title", "aria-label"} {
		if v, ok := s.Attr(attr); ok {
			if t := collapseSpace(v); t != "" {
				return t
			}
		}
	}
	return target.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
