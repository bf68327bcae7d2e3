package site2pdf_test

import (
	"fmt"
	"net/url"

	site2pdf "github.com/alnah/go-site2pdf"
)

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// ExampleBookFileName shows how a job's title becomes the merged file name.
func ExampleBookFileName() {
	fmt.Println(site2pdf.BookFileName("my docs", "42"))
	fmt.Println(site2pdf.BookFileName("   ", "42"))
	// Output:
	// MyDocs42.pdf
	// book42.pdf
}

// ExampleNormalizeKey shows the key used to deduplicate crawled pages.
func ExampleNormalizeKey() {
	fmt.Println(site2pdf.NormalizeKey(mustParse("HTTPS://Docs.Example.com:443/guide/index.html?tab=1#top")))
	// Output: https://docs.example.com/guide
}

// ExampleOrderPages puts crawled pages in navigation order; pages the
// navigation never mentions keep their crawl order at the end.
func ExampleOrderPages() {
	toc := &site2pdf.TOCNode{
		Title: "Docs",
		Children: []*site2pdf.TOCNode{
			{Title: "Install", URL: mustParse("https://docs.example.com/install")},
			{Title: "Intro", URL: mustParse("https://docs.example.com/")},
		},
	}
	pages := []*url.URL{
		mustParse("https://docs.example.com/"),
		mustParse("https://docs.example.com/changelog"),
		mustParse("https://docs.example.com/install/"),
	}

	for _, p := range site2pdf.OrderPages(pages, toc) {
		fmt.Println(p)
	}
	// Output:
	// https://docs.example.com/install/
	// https://docs.example.com/
	// https://docs.example.com/changelog
}
