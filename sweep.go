package docmerge

import (
	"context"
	"fmt"
	"regexp"
)

// SweepOrphans deletes scratch documents left behind by interrupted merges.
// Only names made of the scratch prefix and a timestamp are deleted, and
// copies owned by merges still running on this Merger are skipped.
// Per-file failures are logged and skipped; only listing errors are returned.
func (m *Merger) SweepOrphans(ctx context.Context) (int, error) {
	if err := m.store.Authorize(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	files, err := m.store.ListFiles(ctx, FileQuery{NameContains: m.cfg.scratchPrefix})
	if err != nil {
		return 0, fmt.Errorf("listing scratch documents: %w", err)
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(m.cfg.scratchPrefix) + `\d+$`)
	deleted := 0
	for _, f := range files {
		if !pattern.MatchString(f.Name) {
			continue
		}
		if m.isInFlight(f.Name) {
			m.log.Debug().Str("document_id", f.ID).Str("name", f.Name).Msg("skipping scratch document of running merge")
			continue
		}
		if err := m.store.DeleteFile(ctx, f.ID); err != nil {
			m.counters.orphanFailures.Add(1)
			m.log.Warn().Err(err).Str("document_id", f.ID).Str("name", f.Name).Msg("failed to delete orphaned scratch document")
			continue
		}
		deleted++
	}
	m.counters.orphansDeleted.Add(uint64(deleted))
	if deleted > 0 {
		m.log.Info().Int("deleted", deleted).Msg("swept orphaned scratch documents")
	}
	return deleted, nil
}

// ListTemplates returns every master document available for merging.
func (m *Merger) ListTemplates(ctx context.Context) ([]Template, error) {
	if err := m.store.Authorize(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	files, err := m.store.ListFiles(ctx, FileQuery{MimeType: MimeTypeDocument})
	if err != nil {
		return nil, err
	}
	templates := make([]Template, len(files))
	for i, f := range files {
		templates[i] = Template(f)
	}
	return templates, nil
}
