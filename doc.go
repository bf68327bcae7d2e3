// Package site2pdf turns a documentation website into one PDF book using
// headless Chrome.
//
// # Quick Start
//
// Create an orchestrator and a manager, start a job and wait for it:
//
//	pool := site2pdf.NewRendererPool(site2pdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	orch := site2pdf.NewOrchestrator(pool, site2pdf.NewPDFMerger(nil))
//	mgr := site2pdf.NewManager(orch)
//	defer mgr.Close()
//
//	id, err := mgr.CreateJob("https://docs.example.com", "Example Docs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	job, err := mgr.Wait(ctx, id)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(job.State, job.Output())
//
// # Pipeline
//
// Each job runs these stages in its own goroutine:
//
//  1. URL validation with SSRF protection (URLValidator)
//  2. TOC extraction from the rendered navigation (ExtractorChain)
//  3. Breadth-first crawl of the seed host (LinkDiscoverer)
//  4. Reconciliation of crawled and TOC pages, ordered by the TOC (OrderPages)
//  5. Rendering, at most two pages at a time (PageRenderer)
//  6. Merging in page order (Merger)
//
// With WithContentsPage, a contents page built from the TOC is rendered
// first and merged ahead of the pages. WithContentsTheme and WithDateFormat
// control its look and the capture date it prints.
//
// Progress is published as immutable Job snapshots. A job that renders some
// but not all pages completes with an error message naming the failed pages.
// A job fails when validation fails, no page renders, merging fails or it is
// cancelled.
//
// # Cancellation
//
// Manager.Cancel stops a job and marks it Failed. Manager.CancelAndSave stops
// a job and completes it with the pages rendered so far.
//
// # Errors
//
// Validation failures are *ValidationError values; use IsValidationKind or
// errors.As. Other failures wrap the sentinel errors of this package and can
// be checked with errors.Is.
package site2pdf
