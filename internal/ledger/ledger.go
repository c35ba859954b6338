// Package ledger tracks operator decisions on remediation classifications:
// which land ids were confirmed and which were rejected.
package ledger

import (
	"sort"
	"time"
)

// Snapshot is the externally persisted shape of a ledger: two id lists and
// the time of last update. Lists arriving from storage are treated as
// opaque and never assumed deduplicated or sorted.
type Snapshot struct {
	Validated  []string `json:"validated"`
	Rejected   []string `json:"rejected"`
	LastUpdate string   `json:"lastUpdate,omitempty"`
}

// Ledger holds the validated and rejected id sets. An id belongs to at most
// one of the two sets at any time.
type Ledger struct {
	validated map[string]bool
	rejected  map[string]bool
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		validated: make(map[string]bool),
		rejected:  make(map[string]bool),
	}
}

// FromSnapshot builds a ledger from a persisted snapshot. Duplicates
// collapse; an id listed in both sets ends up rejected, matching Merge
// semantics.
func FromSnapshot(snap Snapshot) *Ledger {
	led := New()
	for _, id := range snap.Validated {
		led.MarkValidated(id)
	}
	for _, id := range snap.Rejected {
		led.MarkRejected(id)
	}
	return led
}

// MarkValidated records an operator confirmation. Idempotent; removes the id
// from the rejected set if present.
func (l *Ledger) MarkValidated(id string) {
	if id == "" {
		return
	}
	delete(l.rejected, id)
	l.validated[id] = true
}

// MarkRejected records an operator rejection. Idempotent; removes the id
// from the validated set if present.
func (l *Ledger) MarkRejected(id string) {
	if id == "" {
		return
	}
	delete(l.validated, id)
	l.rejected[id] = true
}

// IsValidated reports whether the id was confirmed by an operator.
func (l *Ledger) IsValidated(id string) bool {
	return l.validated[id]
}

// IsRejected reports whether the id was rejected by an operator. Rejected
// records are excluded from remediation output entirely.
func (l *Ledger) IsRejected(id string) bool {
	return l.rejected[id]
}

// Merge folds another snapshot into the ledger by per-list set union. Union
// is the entire conflict policy: there is no timestamp arbitration between
// copies. An id the local ledger has rejected stays rejected even if the
// other copy lists it as validated, because a rejection is an explicit
// operator veto.
func (l *Ledger) Merge(other Snapshot) {
	for _, id := range other.Validated {
		if id == "" || l.rejected[id] {
			continue
		}
		l.validated[id] = true
	}
	for _, id := range other.Rejected {
		l.MarkRejected(id)
	}
}

// Snapshot exports the ledger for persistence. Lists come out sorted and
// deduplicated so that identical ledgers serialize identically.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Validated:  sortedIDs(l.validated),
		Rejected:   sortedIDs(l.rejected),
		LastUpdate: time.Now().UTC().Format(time.RFC3339),
	}
}

func sortedIDs(set map[string]bool) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
