package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: site2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a documentation site to one PDF")
	fmt.Fprintln(w, "  serve      Run the job API over HTTP")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check browser and system setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "'site2pdf <url>' is short for 'site2pdf convert <url>'.")
	fmt.Fprintln(w, "Run 'site2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: site2pdf convert <url> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Crawl a site from <url>, render every page and merge them into one PDF")
	fmt.Fprintln(w, "ordered like the site navigation.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory (default: current directory)")
	fmt.Fprintln(w, "      --title <s>             Book title, used for the file name")
	fmt.Fprintln(w, "      --keep-temp             Keep rendered pages after conversion")
	fmt.Fprintln(w, "      --save-on-interrupt     Save rendered pages on Ctrl+C (default true)")
	fmt.Fprintln(w)
	printCrawlUsage(w)
	printRenderUsage(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: site2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the job API. Jobs are created with POST /api/jobs and polled with")
	fmt.Fprintln(w, "GET /api/jobs/{id}.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --host <addr>           Address to bind to (default: 127.0.0.1)")
	fmt.Fprintln(w, "  -p, --port <n>              Port to listen on (default: 8080)")
	fmt.Fprintln(w)
	printCrawlUsage(w)
	printRenderUsage(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: site2pdf config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after the config file and SITE2PDF_* variables")
	fmt.Fprintln(w, "are applied.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

func printCrawlUsage(w io.Writer) {
	fmt.Fprintln(w, "Crawl:")
	fmt.Fprintln(w, "      --max-pages <n>         Maximum pages to crawl (default: 300)")
	fmt.Fprintln(w, "      --max-depth <n>         Maximum link depth (default: 10)")
	fmt.Fprintln(w, "      --user-agent <s>        User-Agent for plain HTTP requests")
	fmt.Fprintln(w, "      --fetch-timeout <d>     HTTP request timeout (default: 30s)")
	fmt.Fprintln(w)
}

func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Render:")
	fmt.Fprintln(w, "  -t, --timeout <d>           Per-page render timeout (default: 60s)")
	fmt.Fprintln(w, "  -w, --workers <n>           Browser instances (0 = auto)")
	fmt.Fprintln(w, "      --contents              Prepend a contents page")
	fmt.Fprintln(w, "      --date-format <s>       Contents capture date: iso, us, european, long, none")
	fmt.Fprintln(w, "      --assets-dir <path>     Custom contents template and style")
	fmt.Fprintln(w, "      --work-dir <path>       Directory for job files")
	fmt.Fprintln(w)
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs")
	fmt.Fprintln(w, "      --log-level <s>         debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>        text, json")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: site2pdf doctor [--json] [-c <config>] [--work-dir <path>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that Chrome is installed, the work directory is writable,")
		fmt.Fprintln(env.Stdout, "and the contents theme and date format in the config are usable.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: site2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: site2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
