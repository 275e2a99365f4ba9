// Package hints turns common failures into actionable suggestions.
// Every hint is formatted as "\n  hint: <text>" so it can be appended to an
// error message as is.
package hints

import (
	"strings"

	"github.com/devco/docmerge/internal/fileutil"
)

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// IsInContainer reports whether the process runs in Docker or similar,
// by the /.dockerenv marker file.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVariables are set by common CI runners.
var ciVariables = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ForBrowserConnect suggests Chrome settings for the local backend. The
// sandbox hint only appears under CI or in a container.
func ForBrowserConnect(getenv Getenv) string {
	var out []string

	inCI := false
	for _, v := range ciVariables {
		if getenv(v) != "" {
			inCI = true
			break
		}
	}
	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		out = append(out, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		out = append(out, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return join(out)
}

// ForAuth names the missing service account variables, or points at the
// Google project once both are present.
func ForAuth(getenv Getenv) string {
	var out []string
	if getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL") == "" {
		out = append(out, "set GOOGLE_SERVICE_ACCOUNT_EMAIL")
	}
	if getenv("GOOGLE_PRIVATE_KEY") == "" {
		out = append(out, "set GOOGLE_PRIVATE_KEY (literal \\n sequences are accepted)")
	}
	if len(out) == 0 {
		out = append(out, "check the key is active and the Docs and Drive APIs are enabled")
	}
	return join(out)
}

// ForConfiguration covers a missing scratch folder.
func ForConfiguration() string {
	return format("set GOOGLE_DRIVE_FOLDER_ID or google.folderId, and share the folder with the service account")
}

// ForTemplateNotFound suggests listing templates.
func ForTemplateNotFound() string {
	return format("run 'docmerge templates' to list available template ids")
}

// ForTimeout suggests a larger merge budget.
func ForTimeout() string {
	return format("use --timeout to allow more time per merge")
}

// ForConfigNotFound suggests --config, plus the user config location when
// it is among searched.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/docmerge") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory covers PDF write failures.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForSignatureImage covers unreadable or malformed signature input.
func ForSignatureImage() string {
	return format("pass a PNG file path or a data:image/... URI")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func join(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
