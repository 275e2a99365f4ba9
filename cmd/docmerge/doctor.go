package main

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/devco/docmerge/internal/config"
	"github.com/devco/docmerge/internal/fileutil"
	"github.com/devco/docmerge/internal/gdocs"
	"github.com/devco/docmerge/internal/hints"
	"github.com/devco/docmerge/internal/localstore"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Config   configInfo  `json:"config"`
	Store    storeInfo   `json:"store"`
	Chrome   *chromeInfo `json:"chrome,omitempty"` // Local backend only
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// configInfo describes where configuration came from.
type configInfo struct {
	Source  string `json:"source"` // Config file, or "defaults"
	Loaded  bool   `json:"loaded"`
	Backend string `json:"backend"`
}

// storeInfo holds backend readiness checks.
type storeInfo struct {
	CredentialsSet bool   `json:"credentials_set,omitempty"`
	KeyValid       bool   `json:"key_valid,omitempty"`
	FolderSet      bool   `json:"folder_set,omitempty"`
	TemplateDir    string `json:"template_dir,omitempty"`
	Templates      int    `json:"templates,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container bool   `json:"container"`
	CI        bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(_ context.Context, args []string, env *Environment) int {
	f, _, err := parseListFlags("doctor", args, env.Stderr, printDoctorUsage)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(f, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks. It never contacts Google.
func runDoctor(f *listFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env:    envInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	cfg := checkConfig(result, f, env)
	if cfg.Store.Backend == config.BackendLocal {
		checkTemplateDir(result, cfg.Store.TemplateDir)
		checkChrome(result, env)
	} else {
		checkGoogle(result, cfg.Google)
	}
	checkEnvironment(result, env)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkConfig loads configuration the way other commands do. On failure the
// remaining checks run against defaults.
func checkConfig(result *doctorResult, f *listFlags, env *Environment) *config.Config {
	result.Config.Source = "defaults"
	if name := f.common.config; name != "" {
		result.Config.Source = name
	} else if name := env.Getenv(config.EnvConfig); name != "" {
		result.Config.Source = name
	}

	cfg, err := loadConfig(&f.common, &f.store, env)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		cfg = config.DefaultConfig()
	} else {
		result.Config.Loaded = true
	}
	result.Config.Backend = cfg.Store.Backend
	return cfg
}

// checkGoogle verifies service-account settings without network access.
func checkGoogle(result *doctorResult, g config.GoogleConfig) {
	creds, err := credentials(g)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	if creds.Email == "" || creds.PrivateKey == "" {
		result.Errors = append(result.Errors,
			"Service account not set. Set GOOGLE_SERVICE_ACCOUNT_EMAIL and GOOGLE_PRIVATE_KEY")
	} else {
		result.Store.CredentialsSet = true
		if block, _ := pem.Decode([]byte(gdocs.NormalizePrivateKey(creds.PrivateKey))); block != nil {
			result.Store.KeyValid = true
		} else {
			result.Errors = append(result.Errors, "Private key is not PEM encoded")
		}
	}

	if g.FolderID == "" {
		result.Errors = append(result.Errors,
			"Scratch folder not set. Set GOOGLE_DRIVE_FOLDER_ID or google.folderId")
	} else {
		result.Store.FolderSet = true
	}
	if g.ProjectID == "" {
		result.Warnings = append(result.Warnings, "GOOGLE_PROJECT_ID not set")
	}
}

// checkTemplateDir counts the markdown templates the local backend would load.
func checkTemplateDir(result *doctorResult, dir string) {
	result.Store.TemplateDir = dir
	if !fileutil.DirExists(dir) {
		result.Errors = append(result.Errors, fmt.Sprintf("Template directory not found: %s", dir))
		return
	}
	n, err := localstore.New(nil).LoadDir(dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Template directory: %v", err))
		return
	}
	result.Store.Templates = n
	if n == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("No markdown templates in %s", dir))
	}
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, env *Environment) {
	info := &chromeInfo{Sandbox: env.Getenv("ROD_NO_SANDBOX") != "1"}
	result.Chrome = info

	chromePath := env.Getenv("ROD_BROWSER_BIN")
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	info.Found = true
	info.Path = chromePath
	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
		return
	}
	info.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container = hints.IsInContainer() || env.Getenv("KUBERNETES_SERVICE_HOST") != ""
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome != nil && (result.Env.Container || result.Env.CI) && result.Chrome.Sandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem verifies the temp directory used for atomic output is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "docmerge-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docmerge doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Loaded {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s\n", r.Config.Source)
	}
	fmt.Fprintf(w, "  [OK] Backend: %s\n", r.Config.Backend)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Store")
	if r.Config.Backend == config.BackendLocal {
		switch {
		case r.Store.Templates > 0:
			fmt.Fprintf(w, "  [OK] Templates: %d in %s\n", r.Store.Templates, r.Store.TemplateDir)
		case fileutil.DirExists(r.Store.TemplateDir):
			fmt.Fprintf(w, "  [WARN] Templates: none in %s\n", r.Store.TemplateDir)
		default:
			fmt.Fprintf(w, "  [ERROR] Templates: %s not found\n", r.Store.TemplateDir)
		}
	} else {
		fmt.Fprintf(w, "  %s Credentials: %s\n", mark(r.Store.CredentialsSet), setOrMissing(r.Store.CredentialsSet))
		if r.Store.CredentialsSet {
			if r.Store.KeyValid {
				fmt.Fprintln(w, "  [OK] Private key: PEM")
			} else {
				fmt.Fprintln(w, "  [ERROR] Private key: not PEM encoded")
			}
		}
		fmt.Fprintf(w, "  %s Scratch folder: %s\n", mark(r.Store.FolderSet), setOrMissing(r.Store.FolderSet))
	}
	fmt.Fprintln(w)

	if r.Chrome != nil {
		fmt.Fprintln(w, "Chrome/Chromium")
		if r.Chrome.Found {
			fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
			if r.Chrome.Version != "" {
				fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
			}
			if r.Chrome.Sandbox {
				fmt.Fprintln(w, "  [OK] Sandbox: enabled")
			} else {
				fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
			}
		} else {
			fmt.Fprintln(w, "  [ERROR] Not found")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: READY")
	case statusWarnings:
		fmt.Fprintln(w, "Status: READY (with warnings)")
	default:
		fmt.Fprintln(w, "Status: NOT READY")
	}
}

func mark(ok bool) string {
	if ok {
		return "[OK]"
	}
	return "[ERROR]"
}

func setOrMissing(ok bool) string {
	if ok {
		return "set"
	}
	return "missing"
}
