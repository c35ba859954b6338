package index

import (
	"testing"

	"github.com/valdor-terrains/internal/record"
)

func TestBuildByReference(t *testing.T) {
	government := []record.Record{
		{"NO_MEF_LIEU": "ABC-1", "ADR_CIV_LIEU": "100 1re Avenue"},
		{"NO_MEF_LIEU": " abc-1 ", "ADR_CIV_LIEU": "200 2e Avenue"},
		{"NO_MEF_LIEU": "DEF-2", "ADR_CIV_LIEU": "300 3e Avenue"},
	}

	reg := Build(government)

	// Duplicate reference codes are last-write-wins.
	gov, ok := reg.ByReference("ABC-1")
	if !ok {
		t.Fatal("ByReference(ABC-1) not found")
	}
	if addr := record.GovAddress(gov); addr != "200 2e Avenue" {
		t.Errorf("duplicate reference resolved to %q, want last record", addr)
	}

	if reg.ReferenceCount() != 2 {
		t.Errorf("ReferenceCount() = %d, want 2", reg.ReferenceCount())
	}
}

func TestByReferenceCaseInsensitive(t *testing.T) {
	reg := Build([]record.Record{{"NO_MEF_LIEU": "abc123"}})

	if _, ok := reg.ByReference("ABC123"); !ok {
		t.Error("ByReference should be case-insensitive")
	}
	if !reg.HasReference("  Abc123 ") {
		t.Error("HasReference should trim and lowercase")
	}
}

func TestBuildByAddressPreservesCollisions(t *testing.T) {
	government := []record.Record{
		{"NO_MEF_LIEU": "A", "ADR_CIV_LIEU": "725 3e Avenue Ouest"},
		{"NO_MEF_LIEU": "B", "ADR_CIV_LIEU": "725, 3e avenue ouest"},
	}

	reg := Build(government)

	hits := reg.ByAddress("725 3e avenue ouest")
	if len(hits) != 2 {
		t.Fatalf("ByAddress returned %d records, want 2", len(hits))
	}
	if record.GovReference(hits[0]) != "A" || record.GovReference(hits[1]) != "B" {
		t.Error("address collisions must preserve input order")
	}
}

func TestFindByAddress(t *testing.T) {
	government := []record.Record{
		{"NO_MEF_LIEU": "A", "ADR_CIV_LIEU": "725 3e avenue"},
		{"NO_MEF_LIEU": "B", "ADR_CIV_LIEU": "1185 des Foreurs"},
	}
	reg := Build(government)

	tests := []struct {
		name    string
		addr    string
		wantRef string
	}{
		{
			name:    "exact normalized equality",
			addr:    "725, 3e Avenue",
			wantRef: "A",
		},
		{
			name:    "core equality ignores trailing directional",
			addr:    "725, 3e Avenue Ouest",
			wantRef: "A",
		},
		{
			name:    "core containment",
			addr:    "1185 des Foreurs Val-d'Or secteur est",
			wantRef: "B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := reg.FindByAddress(tt.addr)
			if len(hits) == 0 {
				t.Fatalf("FindByAddress(%q) found nothing", tt.addr)
			}
			if got := record.GovReference(hits[0]); got != tt.wantRef {
				t.Errorf("FindByAddress(%q) = %q, want %q", tt.addr, got, tt.wantRef)
			}
		})
	}

	if hits := reg.FindByAddress("999 rue Inconnue"); hits != nil {
		t.Errorf("unknown address should find nothing, got %v", hits)
	}
}

func TestBuildSkipsBlankKeys(t *testing.T) {
	government := []record.Record{
		{"NO_MEF_LIEU": "", "ADR_CIV_LIEU": ""},
		{"commentaires": "no usable keys"},
	}

	reg := Build(government)

	if reg.ReferenceCount() != 0 {
		t.Errorf("blank references should not be indexed, got %d", reg.ReferenceCount())
	}
	if hits := reg.ByAddress(""); hits != nil {
		t.Errorf("blank addresses should not be indexed, got %v", hits)
	}
}
