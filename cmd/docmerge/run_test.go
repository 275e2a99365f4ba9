package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		stdout   string
		stderr   string
	}{
		{"no arguments", nil, ExitUsage, "", "Usage: docmerge <command>"},
		{"unknown command", []string{"convert"}, ExitUsage, "", "Unknown command: convert"},
		{"version", []string{"version"}, ExitSuccess, "docmerge " + Version, ""},
		{"version flag", []string{"--version"}, ExitSuccess, "docmerge " + Version, ""},
		{"help", []string{"help"}, ExitSuccess, "Commands:", ""},
		{"help flag", []string{"-h"}, ExitSuccess, "Commands:", ""},
		{"merge help", []string{"merge", "--help"}, ExitSuccess, "", "Usage: docmerge merge <templateId>"},
		{"serve help", []string{"serve", "-h"}, ExitSuccess, "", "/api/generate-pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv()
			if code := te.run(tt.args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(te.stdout.String(), tt.stdout) {
				t.Errorf("stdout = %q, want it to contain %q", te.stdout.String(), tt.stdout)
			}
			if !strings.Contains(te.stderr.String(), tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", te.stderr.String(), tt.stderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		want    string
	}{
		{"serve", "Usage: docmerge serve"},
		{"merge", "--signature <src>"},
		{"templates", "Usage: docmerge templates"},
		{"sweep", "orphaned"},
		{"doctor", "No network calls"},
		{"version", "Usage: docmerge version"},
		{"help", "Usage: docmerge help"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv()
			if code := runHelp([]string{tt.command}, te.Environment); code != ExitSuccess {
				t.Errorf("exit code = %d, want %d", code, ExitSuccess)
			}
			if !strings.Contains(te.stdout.String(), tt.want) {
				t.Errorf("help %s = %q, want it to contain %q", tt.command, te.stdout.String(), tt.want)
			}
		})
	}

	te := newTestEnv()
	if code := runHelp([]string{"bogus"}, te.Environment); code != ExitUsage {
		t.Errorf("unknown command exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(te.stderr.String(), "Unknown command: bogus") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestEnvironment_Getenv - Injected environment lookup
// ---------------------------------------------------------------------------

func TestEnvironment_Getenv(t *testing.T) {
	t.Parallel()

	env := newTestEnv("A=1", "B=", "C=x=y", "MALFORMED").Environment
	tests := map[string]string{"A": "1", "B": "", "C": "x=y", "MALFORMED": "", "D": ""}
	for key, want := range tests {
		if got := env.Getenv(key); got != want {
			t.Errorf("Getenv(%q) = %q, want %q", key, got, want)
		}
	}
}
