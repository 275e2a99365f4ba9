package docmerge

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultScratchPrefix names scratch documents; a unix-millisecond
// timestamp is appended per merge.
const DefaultScratchPrefix = "TEMP_PDF_GEN_"

// Fixed signature image footprint in points.
const (
	SignatureHeightPt = 50
	SignatureWidthPt  = 150
)

// Template is a master document available for merging.
type Template struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Option configures a Merger.
type Option func(*Merger)

// mergerConfig holds internal configuration for Merger.
type mergerConfig struct {
	folderID      string
	scratchPrefix string
}

// WithFolderID sets the shared folder that receives scratch copies.
// Merge fails with ErrConfiguration while it is empty.
func WithFolderID(id string) Option {
	return func(m *Merger) {
		m.cfg.folderID = id
	}
}

// WithScratchPrefix overrides DefaultScratchPrefix.
// Panics if prefix is empty (programmer error).
func WithScratchPrefix(prefix string) Option {
	if prefix == "" {
		panic("docmerge: WithScratchPrefix prefix must not be empty")
	}
	return func(m *Merger) {
		m.cfg.scratchPrefix = prefix
	}
}

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Merger) {
		m.log = l
	}
}

// WithClock overrides the time source for scratch names and marker tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Merger) {
		m.now = now
	}
}
