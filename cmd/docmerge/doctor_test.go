package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"path/filepath"
	"strings"
	"testing"
)

// Notes:
// - Chrome detection is made deterministic by pointing ROD_BROWSER_BIN at a
//   missing path; a real browser is never launched.
// - The Google checks never reach the network, so a generated key suffices.

// testPrivateKey returns a PEM key with newlines escaped the way secret
// stores deliver them.
func testPrivateKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	return strings.ReplaceAll(string(block), "\n", `\n`)
}

func decodeDoctor(t *testing.T, te *testEnv) doctorResult {
	t.Helper()
	var r doctorResult
	if err := json.Unmarshal(te.stdout.Bytes(), &r); err != nil {
		t.Fatalf("decoding doctor output: %v\n%s", err, te.stdout.String())
	}
	return r
}

// ---------------------------------------------------------------------------
// TestDoctor - Diagnostics per backend
// ---------------------------------------------------------------------------

func TestDoctor_GoogleReady(t *testing.T) {
	t.Parallel()

	te := newTestEnv(
		"GOOGLE_SERVICE_ACCOUNT_EMAIL=svc@proj.iam.gserviceaccount.com",
		"GOOGLE_PRIVATE_KEY="+testPrivateKey(t),
		"GOOGLE_PROJECT_ID=proj",
		"GOOGLE_DRIVE_FOLDER_ID=folder",
	)
	if code := te.run("doctor", "--json"); code != ExitSuccess {
		t.Fatalf("exit code = %d\n%s", code, te.stdout.String())
	}

	r := decodeDoctor(t, te)
	if r.Status != statusReady {
		t.Errorf("status = %q, want %q (errors %v, warnings %v)", r.Status, statusReady, r.Errors, r.Warnings)
	}
	if !r.Store.CredentialsSet || !r.Store.KeyValid || !r.Store.FolderSet {
		t.Errorf("store = %+v, want all checks passing", r.Store)
	}
	if r.Chrome != nil {
		t.Error("chrome should not be checked for the google backend")
	}
	if r.Config.Source != "defaults" || !r.Config.Loaded || r.Config.Backend != "google" {
		t.Errorf("config = %+v", r.Config)
	}
}

func TestDoctor_GoogleMissing(t *testing.T) {
	t.Parallel()

	te := newTestEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL=svc@example.com", "GOOGLE_PRIVATE_KEY=not-pem")
	if code := te.run("doctor"); code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}

	out := te.stdout.String()
	for _, want := range []string{
		"docmerge doctor",
		"[OK] Credentials: set",
		"[ERROR] Private key: not PEM encoded",
		"[ERROR] Scratch folder: missing",
		"[WARN] GOOGLE_PROJECT_ID not set",
		"Status: NOT READY",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_Local(t *testing.T) {
	t.Parallel()

	templates := writeFiles(t, estimateTemplates)
	te := newTestEnv("ROD_BROWSER_BIN=" + filepath.Join(t.TempDir(), "no-chrome"))
	code := te.run("doctor", "--json", "--backend", "local", "--template-dir", templates)
	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}

	r := decodeDoctor(t, te)
	if r.Store.Templates != 2 || r.Store.TemplateDir != templates {
		t.Errorf("store = %+v, want 2 templates in %s", r.Store, templates)
	}
	if r.Chrome == nil || r.Chrome.Found {
		t.Fatalf("chrome = %+v, want checked and not found", r.Chrome)
	}
	if len(r.Errors) != 1 || !strings.Contains(r.Errors[0], "Chrome not found at") {
		t.Errorf("errors = %v, want only the chrome error", r.Errors)
	}
}

func TestDoctor_BadConfig(t *testing.T) {
	t.Parallel()

	te := newTestEnv()
	code := te.run("doctor", "--json", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	r := decodeDoctor(t, te)
	if r.Config.Loaded || len(r.Errors) == 0 || !strings.HasPrefix(r.Errors[0], "Config:") {
		t.Errorf("config = %+v, errors = %v", r.Config, r.Errors)
	}
}

func TestDoctor_Flags(t *testing.T) {
	t.Parallel()

	te := newTestEnv()
	if code := te.run("doctor", "--help"); code != ExitSuccess {
		t.Errorf("--help exit code = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(te.stderr.String(), "Usage: docmerge doctor") {
		t.Errorf("stderr = %q, want doctor usage", te.stderr.String())
	}

	te = newTestEnv()
	if code := te.run("doctor", "--bogus"); code != ExitUsage {
		t.Errorf("--bogus exit code = %d, want %d", code, ExitUsage)
	}
}
