package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the PDF generation HTTP API")
	fmt.Fprintln(w, "  merge      Merge one template into a PDF file")
	fmt.Fprintln(w, "  templates  List available templates")
	fmt.Fprintln(w, "  sweep      Delete orphaned scratch documents")
	fmt.Fprintln(w, "  doctor     Check configuration and dependencies")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docmerge help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every store-backed command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Store:")
	fmt.Fprintln(w, "      --backend <s>         Template store: google, local")
	fmt.Fprintln(w, "      --template-dir <dir>  Markdown template directory (local backend)")
	fmt.Fprintln(w, "      --folder <id>         Scratch folder id")
	fmt.Fprintln(w, "      --timeout <d>         Per-merge timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  GOOGLE_SERVICE_ACCOUNT_EMAIL, GOOGLE_PRIVATE_KEY, GOOGLE_PROJECT_ID,")
	fmt.Fprintln(w, "  GOOGLE_DRIVE_FOLDER_ID and DOCMERGE_* override the config file.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP API:")
	fmt.Fprintln(w, "  POST /api/generate-pdf          {\"templateId\": \"...\", \"variables\": {...}}")
	fmt.Fprintln(w, "  GET  /api/templates             List templates")
	fmt.Fprintln(w, "  POST /api/maintenance/sweep     Delete orphaned scratch documents")
	fmt.Fprintln(w, "  GET  /api/health, /api/stats")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <addr>         Listen address (default \":8080\")")
	fmt.Fprintln(w, "      --sweep-interval <d>  Periodic orphan sweep (0 = disabled; default from config)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printMergeUsage prints usage for the merge command.
func printMergeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge merge <templateId> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Copy a template, replace its {{tags}}, and write the exported PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Variables:")
	fmt.Fprintln(w, "      --vars <path>         YAML or JSON map of variables (\"-\" = stdin)")
	fmt.Fprintln(w, "      --var <key=value>     Single variable, repeatable, overrides --vars")
	fmt.Fprintln(w, "      --signature <src>     Image file or data URI for {{signature}}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default <templateId>.pdf, \"-\" = stdout)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge templates [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List templates available for merging.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printSweepUsage prints usage for the sweep command.
func printSweepUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge sweep [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Delete scratch documents left behind by interrupted merges.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check configuration, credentials and, for the local backend, Chrome.")
	fmt.Fprintln(w, "No network calls are made.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "merge":
		printMergeUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "sweep":
		printSweepUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docmerge version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docmerge help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
