package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string

	// set records which flags appeared on the command line, so that only
	// explicit values override the config file.
	set map[string]bool
}

// crawlFlags holds site discovery flags.
type crawlFlags struct {
	maxPages     int
	maxDepth     int
	userAgent    string
	fetchTimeout time.Duration
}

// renderFlags holds browser flags.
type renderFlags struct {
	timeout    time.Duration
	workers    int
	contents   bool
	dateFormat string
	assetsDir  string
	workDir    string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common          commonFlags
	crawl           crawlFlags
	render          renderFlags
	output          string
	title           string
	keepTemp        bool
	saveOnInterrupt bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	crawl  crawlFlags
	render renderFlags
	host   string
	port   int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// addCrawlFlags adds discovery flags to a FlagSet.
func addCrawlFlags(fs *flag.FlagSet, f *crawlFlags) {
	fs.IntVar(&f.maxPages, "max-pages", 0, "maximum pages to crawl")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "maximum link depth from the start URL")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent for plain HTTP requests")
	fs.DurationVar(&f.fetchTimeout, "fetch-timeout", 0, "HTTP request timeout (e.g., 30s)")
}

// addRenderFlags adds browser flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-page render timeout (e.g., 60s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser instances (0 = auto)")
	fs.BoolVar(&f.contents, "contents", false, "prepend a contents page built from the site navigation")
	fs.StringVar(&f.dateFormat, "date-format", "", "capture date on the contents page (iso, us, european, long, none, or tokens)")
	fs.StringVar(&f.assetsDir, "assets-dir", "", "directory overriding the contents page template and style")
	fs.StringVar(&f.workDir, "work-dir", "", "directory for job files")
}

// recordSet fills common.set from the flags the user passed.
func recordSet(fs *flag.FlagSet, common *commonFlags) {
	common.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		common.set[f.Name] = true
	})
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVar(&f.title, "title", "", "book title, used for the file name")
	fs.BoolVar(&f.keepTemp, "keep-temp", false, "keep rendered pages after conversion")
	fs.BoolVar(&f.saveOnInterrupt, "save-on-interrupt", true, "save rendered pages when interrupted")

	addCommonFlags(fs, &f.common)
	addCrawlFlags(fs, &f.crawl)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	recordSet(fs, &f.common)

	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVar(&f.host, "host", "", "address to bind to")
	fs.IntVarP(&f.port, "port", "p", 0, "port to listen on")

	addCommonFlags(fs, &f.common)
	addCrawlFlags(fs, &f.crawl)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	recordSet(fs, &f.common)

	return f, fs.Args(), nil
}

// parseConfigFlags parses the config command flags.
func parseConfigFlags(args []string, stderr io.Writer) (*commonFlags, []string, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &commonFlags{}
	addCommonFlags(fs, f)

	fs.Usage = func() { printConfigUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	recordSet(fs, f)

	return f, fs.Args(), nil
}

// usageError marks a flag parsing failure. Help requests pass through so
// callers can exit cleanly.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
