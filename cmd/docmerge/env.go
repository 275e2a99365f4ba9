package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/devco/docmerge/internal/localstore"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string

	// NewRenderer builds the PDF renderer for the local backend.
	NewRenderer func(timeout time.Duration) localstore.Renderer
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
		NewRenderer: func(timeout time.Duration) localstore.Renderer {
			return localstore.NewRodRenderer(timeout)
		},
	}
}

// Getenv returns the value of key in Environ, or "".
func (e *Environment) Getenv(key string) string {
	for _, kv := range e.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}
