// Package match reconciles municipal land records against the indexed
// provincial registry.
package match

import (
	"github.com/valdor-terrains/internal/index"
	"github.com/valdor-terrains/internal/record"
)

// Method identifies how a municipal record was tied to a provincial one.
type Method string

const (
	// MatchedByReference means the municipal reference code resolved
	// directly in the registry. Reference codes are the authoritative key
	// when present.
	MatchedByReference Method = "reference"

	// MatchedByAddress means no reference matched but the normalized
	// civic addresses did. This is the fallback for records that predate
	// reference assignment or have inconsistent reference data entry.
	MatchedByAddress Method = "address"

	// NoMatch means the record has no provincial counterpart.
	NoMatch Method = "none"
)

// Result is the outcome of reconciling one municipal record. Government is
// nil when Method is NoMatch.
type Result struct {
	Method     Method
	Government record.Record
}

// Matched reports whether a provincial counterpart was found.
func (r Result) Matched() bool {
	return r.Method != NoMatch
}

// Match finds the provincial record corresponding to a municipal one,
// short-circuiting on the first strategy that succeeds:
//
//  1. the municipal reference code, normalized, against the by-reference
//     index;
//  2. the municipal civic address, normalized, against the by-address index,
//     taking the first candidate in insertion order (a deterministic but
//     arbitrary tie-break; records sharing a normalized address are not
//     disambiguated further).
//
// A record matching neither returns NoMatch. Match never fails.
func Match(mun record.Record, reg *index.Registry) Result {
	if ref := record.Reference(mun); ref != "" {
		if gov, ok := reg.ByReference(ref); ok {
			return Result{Method: MatchedByReference, Government: gov}
		}
	}

	if addr := record.Address(mun); addr != "" {
		if candidates := reg.FindByAddress(addr); len(candidates) > 0 {
			return Result{Method: MatchedByAddress, Government: candidates[0]}
		}
	}

	return Result{Method: NoMatch}
}
