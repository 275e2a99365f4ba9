package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/devco/docmerge/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	logLevel  string
	logFormat string
	quiet     bool
	verbose   bool
}

// storeFlags selects and tunes the template store.
type storeFlags struct {
	backend     string
	templateDir string
	folderID    string
	timeout     time.Duration
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common        commonFlags
	store         storeFlags
	addr          string
	sweepInterval time.Duration
	sweepSet      bool // --sweep-interval given, including 0
}

// mergeFlags holds all flags for the merge command.
type mergeFlags struct {
	common    commonFlags
	store     storeFlags
	output    string
	vars      []string
	varsFile  string
	signature string
}

// listFlags holds flags for the templates and sweep commands.
type listFlags struct {
	common commonFlags
	store  storeFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addStoreFlags adds store selection flags to a FlagSet.
func addStoreFlags(fs *flag.FlagSet, f *storeFlags) {
	fs.StringVar(&f.backend, "backend", "", "template store: google, local")
	fs.StringVar(&f.templateDir, "template-dir", "", "markdown template directory (local backend)")
	fs.StringVar(&f.folderID, "folder", "", "scratch folder id")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-merge timeout (e.g. 30s, 2m)")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parse runs fs over args and wraps parse failures with ErrUsage.
// flag.ErrHelp is returned unwrapped.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return fs.Args(), nil
}

func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	addCommonFlags(fs, &f.common)
	addStoreFlags(fs, &f.store)
	fs.StringVar(&f.addr, "addr", "", "listen address (default \":8080\")")
	fs.DurationVar(&f.sweepInterval, "sweep-interval", 0, "periodic orphan sweep (0 = disabled; default from config)")
	positional, err := parse(fs, args)
	f.sweepSet = fs.Changed("sweep-interval")
	return f, positional, err
}

// apply overrides server settings that were given on the command line.
func (f *serveFlags) apply(cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.sweepSet {
		cfg.Server.SweepInterval = f.sweepInterval
	}
}

func parseMergeFlags(args []string, stderr io.Writer) (*mergeFlags, []string, error) {
	f := &mergeFlags{}
	fs := newFlagSet("merge", stderr, printMergeUsage)
	addCommonFlags(fs, &f.common)
	addStoreFlags(fs, &f.store)
	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (\"-\" = stdout)")
	fs.StringArrayVar(&f.vars, "var", nil, "variable as key=value (repeatable)")
	fs.StringVar(&f.varsFile, "vars", "", "YAML or JSON file of variables (\"-\" = stdin)")
	fs.StringVar(&f.signature, "signature", "", "signature image path or data URI")
	positional, err := parse(fs, args)
	return f, positional, err
}

func parseListFlags(name string, args []string, stderr io.Writer, usage func(io.Writer)) (*listFlags, []string, error) {
	f := &listFlags{}
	fs := newFlagSet(name, stderr, usage)
	addCommonFlags(fs, &f.common)
	addStoreFlags(fs, &f.store)
	fs.BoolVar(&f.json, "json", false, "print JSON")
	positional, err := parse(fs, args)
	return f, positional, err
}

// apply overrides cfg with explicitly set flags.
func (f *commonFlags) apply(cfg *config.Config) {
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if f.quiet {
		cfg.Log.Level = "error"
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
}

// apply overrides cfg with explicitly set flags.
func (f *storeFlags) apply(cfg *config.Config) {
	if f.backend != "" {
		cfg.Store.Backend = f.backend
	}
	if f.templateDir != "" {
		cfg.Store.TemplateDir = f.templateDir
	}
	if f.folderID != "" {
		cfg.Google.FolderID = f.folderID
	}
	if f.timeout != 0 {
		cfg.Server.Timeout = f.timeout
	}
}
