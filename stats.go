package docmerge

import "sync/atomic"

// Stats is a snapshot of merge counters. Leak and miss counters track
// failures that are deliberately non-fatal.
type Stats struct {
	Merges          uint64 `json:"merges"`
	Failures        uint64 `json:"failures"`
	ScratchLeaks    uint64 `json:"scratchLeaks"`
	ImageLeaks      uint64 `json:"imageLeaks"`
	SignatureMisses uint64 `json:"signatureMisses"`
	OrphansDeleted  uint64 `json:"orphansDeleted"`
	OrphanFailures  uint64 `json:"orphanFailures"`
}

type counters struct {
	merges          atomic.Uint64
	failures        atomic.Uint64
	scratchLeaks    atomic.Uint64
	imageLeaks      atomic.Uint64
	signatureMisses atomic.Uint64
	orphansDeleted  atomic.Uint64
	orphanFailures  atomic.Uint64
}

// Stats returns the current counters. Safe for concurrent use.
func (m *Merger) Stats() Stats {
	return Stats{
		Merges:          m.counters.merges.Load(),
		Failures:        m.counters.failures.Load(),
		ScratchLeaks:    m.counters.scratchLeaks.Load(),
		ImageLeaks:      m.counters.imageLeaks.Load(),
		SignatureMisses: m.counters.signatureMisses.Load(),
		OrphansDeleted:  m.counters.orphansDeleted.Load(),
		OrphanFailures:  m.counters.orphanFailures.Load(),
	}
}
