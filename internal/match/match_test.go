package match

import (
	"testing"

	"github.com/valdor-terrains/internal/index"
	"github.com/valdor-terrains/internal/record"
)

func TestMatchByReferenceCaseInsensitive(t *testing.T) {
	reg := index.Build([]record.Record{
		{"NO_MEF_LIEU": "abc123", "ADR_CIV_LIEU": "100 1re Avenue"},
	})

	mun := record.Record{"reference": "ABC123", "adresse": "somewhere else"}
	result := Match(mun, reg)

	if result.Method != MatchedByReference {
		t.Fatalf("Method = %q, want %q", result.Method, MatchedByReference)
	}
	if record.GovReference(result.Government) != "abc123" {
		t.Errorf("matched wrong government record: %v", result.Government)
	}
}

func TestMatchPrefersReferenceOverAddress(t *testing.T) {
	reg := index.Build([]record.Record{
		{"NO_MEF_LIEU": "REF-1", "ADR_CIV_LIEU": "999 rue Lointaine"},
		{"NO_MEF_LIEU": "REF-2", "ADR_CIV_LIEU": "725 3e avenue"},
	})

	// Both strategies would succeed; the reference must win.
	mun := record.Record{"reference": "REF-1", "adresse": "725 3e avenue"}
	result := Match(mun, reg)

	if result.Method != MatchedByReference {
		t.Fatalf("Method = %q, want %q", result.Method, MatchedByReference)
	}
	if record.GovReference(result.Government) != "REF-1" {
		t.Errorf("engine fell through to address matching: got %q", record.GovReference(result.Government))
	}
}

func TestMatchFallsBackToAddressCore(t *testing.T) {
	// The municipal reference resolves to nothing, but the address core
	// "725 3e avenue" exists on the provincial side.
	reg := index.Build([]record.Record{
		{"NO_MEF_LIEU": "OTHER", "ADR_CIV_LIEU": "725 3e avenue"},
	})

	mun := record.Record{
		"adresse":   "725, 3e Avenue Ouest",
		"lot":       "2297570",
		"reference": "7610-08-01-12059-08",
	}
	result := Match(mun, reg)

	if result.Method != MatchedByAddress {
		t.Fatalf("Method = %q, want %q", result.Method, MatchedByAddress)
	}
	if record.GovAddress(result.Government) != "725 3e avenue" {
		t.Errorf("matched wrong government record: %v", result.Government)
	}
}

func TestMatchAddressTieBreakIsFirstCandidate(t *testing.T) {
	reg := index.Build([]record.Record{
		{"NO_MEF_LIEU": "A", "ADR_CIV_LIEU": "725 3e avenue"},
		{"NO_MEF_LIEU": "B", "ADR_CIV_LIEU": "725, 3e Avenue"},
	})

	mun := record.Record{"adresse": "725 3e avenue"}
	result := Match(mun, reg)

	if result.Method != MatchedByAddress {
		t.Fatalf("Method = %q, want %q", result.Method, MatchedByAddress)
	}
	if record.GovReference(result.Government) != "A" {
		t.Errorf("tie-break must take the first candidate in insertion order, got %q",
			record.GovReference(result.Government))
	}
}

func TestMatchNoMatch(t *testing.T) {
	reg := index.Build([]record.Record{
		{"NO_MEF_LIEU": "REF-1", "ADR_CIV_LIEU": "999 rue Lointaine"},
	})

	tests := []struct {
		name string
		mun  record.Record
	}{
		{"nothing resolvable", record.Record{"commentaires": "n/a"}},
		{"unknown reference and address", record.Record{"reference": "X", "adresse": "1 rue Absente"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Match(tt.mun, reg)
			if result.Method != NoMatch {
				t.Errorf("Method = %q, want %q", result.Method, NoMatch)
			}
			if result.Matched() {
				t.Error("Matched() should be false for NoMatch")
			}
			if result.Government != nil {
				t.Errorf("Government should be nil, got %v", result.Government)
			}
		})
	}
}
