package docmerge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Merger fills document templates with variables and exports them as PDF.
// A Merger is safe for concurrent use; each merge works on its own scratch
// copy and shares no state beyond the counters and the in-flight set.
type Merger struct {
	store    Store
	cfg      mergerConfig
	log      zerolog.Logger
	now      func() time.Time
	counters counters

	mu       sync.Mutex
	inFlight map[string]int // scratch name -> running merges using it
}

// NewMerger creates a Merger over store.
func NewMerger(store Store, opts ...Option) *Merger {
	m := &Merger{
		store:    store,
		cfg:      mergerConfig{scratchPrefix: DefaultScratchPrefix},
		log:      zerolog.Nop(),
		now:      time.Now,
		inFlight: make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GeneratePDF is an alias for Merge.
func (m *Merger) GeneratePDF(ctx context.Context, templateID string, vars Variables) ([]byte, error) {
	return m.Merge(ctx, templateID, vars)
}

// Merge copies the template, substitutes vars, embeds the signature image if
// one is supplied, clears leftover placeholders and returns the exported PDF.
//
// The scratch copy is deleted before Merge returns on every path after the
// copy succeeded. Deletion failures are logged and counted, never returned.
func (m *Merger) Merge(ctx context.Context, templateID string, vars Variables) (pdf []byte, err error) {
	m.counters.merges.Add(1)
	defer func() {
		if err != nil {
			m.counters.failures.Add(1)
		}
	}()

	if m.cfg.folderID == "" {
		return nil, fmt.Errorf("%w: scratch folder id is not set", ErrConfiguration)
	}
	if templateID == "" {
		return nil, ErrEmptyTemplateID
	}

	if err := m.store.Authorize(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	now := m.now()
	name := scratchName(m.cfg.scratchPrefix, now)
	m.track(name)
	defer m.untrack(name)

	docID, err := m.store.CopyDocument(ctx, templateID, name, m.cfg.folderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, templateID, err)
		}
		return nil, fmt.Errorf("%w: copying template: %w", ErrMerge, err)
	}

	log := m.log.With().Str("template_id", templateID).Str("document_id", docID).Logger()
	defer m.deleteScratch(ctx, docID, log)

	if err := m.replaceText(ctx, docID, vars); err != nil {
		return nil, err
	}
	if err := m.applySignature(ctx, docID, vars, now, log); err != nil {
		return nil, err
	}
	if err := m.clearLeftovers(ctx, docID, log); err != nil {
		return nil, err
	}

	pdf, err = m.store.ExportPDF(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting PDF: %w", ErrMerge, err)
	}
	return pdf, nil
}

// replaceText substitutes every non-signature variable in a single batch.
func (m *Merger) replaceText(ctx context.Context, docID string, vars Variables) error {
	keys := vars.textKeys()
	if len(keys) == 0 {
		return nil
	}
	requests := make([]Request, 0, len(keys))
	for _, k := range keys {
		requests = append(requests, replaceAll(Tag(k), vars[k]))
	}
	return m.batch(ctx, docID, "replacing variables", requests)
}

// clearLeftovers blanks any {{...}} tag the caller did not supply.
func (m *Merger) clearLeftovers(ctx context.Context, docID string, log zerolog.Logger) error {
	doc, err := m.store.GetDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("%w: reading document: %w", ErrMerge, err)
	}
	tags := FindPlaceholders(doc)
	if len(tags) == 0 {
		return nil
	}
	log.Debug().Strs("tags", tags).Msg("clearing unresolved placeholders")

	requests := make([]Request, 0, len(tags))
	for _, tag := range tags {
		requests = append(requests, replaceAll(tag, ""))
	}
	return m.batch(ctx, docID, "clearing placeholders", requests)
}

// batch applies requests and wraps failures as ErrMerge.
func (m *Merger) batch(ctx context.Context, docID, what string, requests []Request) error {
	if err := m.store.BatchUpdate(ctx, docID, requests); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMerge, what, err)
	}
	return nil
}

// deleteScratch removes the scratch document. It runs even when ctx has been
// canceled, since the caller giving up does not clean up the copy.
func (m *Merger) deleteScratch(ctx context.Context, docID string, log zerolog.Logger) {
	if err := m.store.DeleteFile(context.WithoutCancel(ctx), docID); err != nil {
		m.counters.scratchLeaks.Add(1)
		log.Warn().Err(err).Msg("failed to delete scratch document")
	}
}

// track marks a scratch name as owned by a running merge so SweepOrphans
// leaves it alone. The name is registered before the copy exists.
func (m *Merger) track(name string) {
	m.mu.Lock()
	m.inFlight[name]++
	m.mu.Unlock()
}

func (m *Merger) untrack(name string) {
	m.mu.Lock()
	if m.inFlight[name]--; m.inFlight[name] <= 0 {
		delete(m.inFlight, name)
	}
	m.mu.Unlock()
}

func (m *Merger) isInFlight(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight[name] > 0
}
