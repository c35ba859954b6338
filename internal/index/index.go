// Package index builds the lookup structures over the provincial registry
// that the reconciliation engine matches against.
package index

import (
	"strings"

	"github.com/valdor-terrains/internal/normalize"
	"github.com/valdor-terrains/internal/record"
)

// addrEntry keeps one provincial record with its precomputed address keys.
// Precomputed fields live here, in the index, never on the record itself:
// records travel to the presentation layer as-is and must not grow hidden
// annotations.
type addrEntry struct {
	norm string
	core string
	rec  record.Record
}

// Registry holds the provincial dataset indexed for matching. It is rebuilt
// in full on each reconciliation pass; provincial extracts are a few
// thousand rows, so a full rebuild is cheaper than getting incremental
// updates right.
type Registry struct {
	byReference map[string]record.Record
	byAddress   map[string][]record.Record
	byCore      map[string][]record.Record
	entries     []addrEntry
	references  map[string]bool
}

// NormalizeReference canonicalizes a reference code for lookup: trimmed and
// lowercased. Reference formats are otherwise left alone.
func NormalizeReference(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Build indexes the provincial dataset by normalized reference code and by
// normalized civic address (full form and core form). Duplicate reference
// codes are last-write-wins (the registry itself repeats references);
// address collisions are kept in input order.
func Build(government []record.Record) *Registry {
	reg := &Registry{
		byReference: make(map[string]record.Record, len(government)),
		byAddress:   make(map[string][]record.Record, len(government)),
		byCore:      make(map[string][]record.Record, len(government)),
		references:  make(map[string]bool, len(government)),
	}

	for _, gov := range government {
		if ref := NormalizeReference(record.GovReference(gov)); ref != "" {
			reg.byReference[ref] = gov
			reg.references[ref] = true
		}

		raw := record.GovAddress(gov)
		norm := normalize.Normalize(raw)
		if norm == "" {
			continue
		}
		core := normalize.Core(raw)
		reg.byAddress[norm] = append(reg.byAddress[norm], gov)
		if core != "" {
			reg.byCore[core] = append(reg.byCore[core], gov)
		}
		reg.entries = append(reg.entries, addrEntry{norm: norm, core: core, rec: gov})
	}
	return reg
}

// ByReference looks up a provincial record by raw reference code.
func (r *Registry) ByReference(code string) (record.Record, bool) {
	gov, ok := r.byReference[NormalizeReference(code)]
	return gov, ok
}

// ByAddress returns the provincial records sharing a normalized address, in
// the order they appeared in the dataset.
func (r *Registry) ByAddress(normalized string) []record.Record {
	return r.byAddress[normalized]
}

// FindByAddress returns the provincial candidates for a raw municipal
// address, cheapest strategy first:
//
//  1. exact normalized-address equality;
//  2. exact core equality (house number + street, directionals and locality
//     stripped);
//  3. ordered scan for core containment, for sources that record a longer
//     street name than the other.
//
// Candidate order within each strategy is dataset insertion order, so the
// result is deterministic for identical inputs.
func (r *Registry) FindByAddress(raw string) []record.Record {
	norm := normalize.Normalize(raw)
	if norm == "" {
		return nil
	}
	if hits := r.byAddress[norm]; len(hits) > 0 {
		return hits
	}

	core := normalize.Core(raw)
	if core == "" {
		return nil
	}
	if hits := r.byCore[core]; len(hits) > 0 {
		return hits
	}

	var hits []record.Record
	for _, e := range r.entries {
		if e.core == "" {
			continue
		}
		if strings.Contains(e.core, core) || strings.Contains(core, e.core) {
			hits = append(hits, e.rec)
		}
	}
	return hits
}

// HasReference reports whether a reference code appears in the registry.
func (r *Registry) HasReference(code string) bool {
	return r.references[NormalizeReference(code)]
}

// ReferenceCount returns the number of distinct reference codes indexed.
func (r *Registry) ReferenceCount() int {
	return len(r.references)
}
