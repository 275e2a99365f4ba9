package main

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	flag "github.com/spf13/pflag"

	"github.com/devco/docmerge/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseMergeFlags - Flag parsing for merge
// ---------------------------------------------------------------------------

func TestParseMergeFlags(t *testing.T) {
	t.Parallel()

	f, positional, err := parseMergeFlags([]string{
		"estimate",
		"-o", "out/estimate.pdf",
		"--var", "projectName=Acme",
		"--var", "note=a,b=c",
		"--vars", "vars.yaml",
		"--signature", "sig.png",
		"--backend", "local",
		"--template-dir", "./templates",
		"--timeout", "45s",
		"-c", "work",
		"-v",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseMergeFlags() error = %v", err)
	}

	if diff := cmp.Diff([]string{"estimate"}, positional); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"projectName=Acme", "note=a,b=c"}, f.vars); diff != "" {
		t.Errorf("vars mismatch (-want +got):\n%s", diff)
	}
	if f.output != "out/estimate.pdf" || f.varsFile != "vars.yaml" || f.signature != "sig.png" {
		t.Errorf("output/vars/signature = %q/%q/%q", f.output, f.varsFile, f.signature)
	}
	wantStore := storeFlags{backend: "local", templateDir: "./templates", timeout: 45 * time.Second}
	if f.store != wantStore {
		t.Errorf("store = %+v, want %+v", f.store, wantStore)
	}
	if f.common.config != "work" || !f.common.verbose {
		t.Errorf("common = %+v", f.common)
	}
}

// ---------------------------------------------------------------------------
// TestParseFlags_Errors - Usage errors and help
// ---------------------------------------------------------------------------

func TestParseFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown flag", []string{"--bogus"}, ErrUsage},
		{"bad duration", []string{"--timeout", "soon"}, ErrUsage},
		{"missing value", []string{"--vars"}, ErrUsage},
		{"help", []string{"--help"}, flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := parseMergeFlags(tt.args, io.Discard)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseMergeFlags(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseServeFlags - Server flags
// ---------------------------------------------------------------------------

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	f, _, err := parseServeFlags([]string{"--addr", "127.0.0.1:9000", "--sweep-interval", "10m", "--log-format", "json"}, io.Discard)
	if err != nil {
		t.Fatalf("parseServeFlags() error = %v", err)
	}
	if f.addr != "127.0.0.1:9000" || f.sweepInterval != 10*time.Minute || f.common.logFormat != "json" {
		t.Errorf("serveFlags = %+v", f)
	}
}

func TestServeFlagsApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want time.Duration
	}{
		{"unset keeps config", nil, time.Hour},
		{"explicit zero disables", []string{"--sweep-interval", "0"}, 0},
		{"explicit value overrides", []string{"--sweep-interval", "5m"}, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, _, err := parseServeFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseServeFlags() error = %v", err)
			}
			cfg := config.DefaultConfig()
			cfg.Server.SweepInterval = time.Hour
			f.apply(cfg)
			if cfg.Server.SweepInterval != tt.want {
				t.Errorf("SweepInterval = %s, want %s", cfg.Server.SweepInterval, tt.want)
			}
			if cfg.Server.Addr != config.DefaultAddr {
				t.Errorf("Addr = %q, want default", cfg.Server.Addr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFlagsApply - Flags override configuration
// ---------------------------------------------------------------------------

func TestFlagsApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		common commonFlags
		store  storeFlags
		modify func(c *config.Config)
	}{
		{
			name: "no flags keeps config",
		},
		{
			name:   "log settings",
			common: commonFlags{logLevel: "warn", logFormat: "json"},
			modify: func(c *config.Config) {
				c.Log.Level = "warn"
				c.Log.Format = "json"
			},
		},
		{
			name:   "verbose wins over log level",
			common: commonFlags{logLevel: "warn", verbose: true},
			modify: func(c *config.Config) { c.Log.Level = "debug" },
		},
		{
			name:   "quiet wins over verbose",
			common: commonFlags{verbose: true, quiet: true},
			modify: func(c *config.Config) { c.Log.Level = "error" },
		},
		{
			name:  "store settings",
			store: storeFlags{backend: "local", templateDir: "t", folderID: "f", timeout: time.Minute},
			modify: func(c *config.Config) {
				c.Store.Backend = "local"
				c.Store.TemplateDir = "t"
				c.Google.FolderID = "f"
				c.Server.Timeout = time.Minute
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := config.DefaultConfig()
			tt.common.apply(got)
			tt.store.apply(got)

			want := config.DefaultConfig()
			if tt.modify != nil {
				tt.modify(want)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
