package main

import (
	"context"
	"errors"
	"os"

	"github.com/devco/docmerge"
	"github.com/devco/docmerge/internal/config"
	"github.com/devco/docmerge/internal/fileutil"
	"github.com/devco/docmerge/internal/gdocs"
	"github.com/devco/docmerge/internal/hints"
	"github.com/devco/docmerge/internal/localstore"
	"github.com/devco/docmerge/internal/yamlutil"
)

// Exit codes for the docmerge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Command completed
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or arguments
	ExitIO       = 3 // File not found, permission denied, write failure
	ExitAuth     = 4 // Service account credentials rejected or missing
	ExitNotFound = 5 // Template id does not exist
)

// CLI errors.
var (
	ErrUsage         = errors.New("invalid usage")
	ErrReadVariables = errors.New("failed to read variables file")
	ErrReadSignature = errors.New("failed to read signature image")
	ErrWriteOutput   = errors.New("failed to write PDF")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Checked first: a missing template also wraps docmerge.ErrNotFound.
	if errors.Is(err, docmerge.ErrTemplateNotFound) {
		return ExitNotFound
	}

	if errors.Is(err, docmerge.ErrAuth) ||
		errors.Is(err, gdocs.ErrMissingCredentials) {
		return ExitAuth
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, docmerge.ErrConfiguration) ||
		errors.Is(err, docmerge.ErrEmptyTemplateID) ||
		errors.Is(err, docmerge.ErrInvalidDataURI) ||
		errors.Is(err, yamlutil.ErrNotScalar) {
		return ExitUsage
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, fileutil.ErrInputTooLarge) ||
		errors.Is(err, ErrReadVariables) ||
		errors.Is(err, ErrReadSignature) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, getenv hints.Getenv) string {
	switch {
	case errors.Is(err, docmerge.ErrTemplateNotFound):
		return hints.ForTemplateNotFound()
	case errors.Is(err, docmerge.ErrAuth), errors.Is(err, gdocs.ErrMissingCredentials):
		return hints.ForAuth(getenv)
	case errors.Is(err, docmerge.ErrConfiguration):
		return hints.ForConfiguration()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("docmerge"))
	case errors.Is(err, localstore.ErrBrowserConnect):
		return hints.ForBrowserConnect(getenv)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrReadSignature), errors.Is(err, docmerge.ErrInvalidDataURI):
		return hints.ForSignatureImage()
	}
	return ""
}
