package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devco/docmerge/internal/localstore"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake renderer and environment
// ---------------------------------------------------------------------------

// fakeRenderer returns a PDF header followed by the HTML page, so command
// tests can assert on merged text without a browser.
type fakeRenderer struct {
	closed atomic.Bool
}

func (r *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4\n" + html), nil
}

func (r *fakeRenderer) Close() error {
	r.closed.Store(true)
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testEnv wraps an Environment with captured output.
type testEnv struct {
	*Environment
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	renderer *fakeRenderer
}

// newTestEnv returns an environment with the given variables only.
func newTestEnv(environ ...string) *testEnv {
	te := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		renderer: &fakeRenderer{},
	}
	te.Environment = &Environment{
		Now:     func() time.Time { return fixedNow },
		Stdin:   strings.NewReader(""),
		Stdout:  te.stdout,
		Stderr:  te.stderr,
		Environ: func() []string { return environ },
		NewRenderer: func(time.Duration) localstore.Renderer {
			return te.renderer
		},
	}
	return te
}

// run executes runMain with args.
func (te *testEnv) run(args ...string) int {
	return runMain(context.Background(), args, te.Environment)
}

// writeFiles creates files under a temp directory and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// estimateTemplates is a template directory shared by command tests.
var estimateTemplates = map[string]string{
	"estimate.md": "# Estimate\n\nProject {{projectName}} for {{client}}.\n\nSigned: {{signature}}\n\nNote: {{leftover}}\n",
	"invoice.md":  "# Invoice\n\nTotal {{total}}\n",
	"readme.txt":  "not a template",
}

// pngBytes is a minimal PNG header, enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
