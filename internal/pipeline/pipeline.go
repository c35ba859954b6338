// Package pipeline runs the full reconciliation pass: index the provincial
// registry, match every municipal record, classify remediation status and
// overlay operator validations.
package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/valdor-terrains/internal/classify"
	"github.com/valdor-terrains/internal/index"
	"github.com/valdor-terrains/internal/ledger"
	"github.com/valdor-terrains/internal/match"
	"github.com/valdor-terrains/internal/record"
)

// Classified is a municipal record enriched with its remediation verdict.
// The enrichment lives beside the record, not inside it: source maps cross
// the pipeline untouched.
type Classified struct {
	Record record.Record `json:"record"`

	// ID is the stable ledger identifier (raw address + "_" + lot).
	ID string `json:"id"`

	Confidence    classify.Confidence `json:"confidence"`
	Rationale     string              `json:"rationale"`
	MatchMethod   match.Method        `json:"match_method"`
	GovRehabState string              `json:"gov_rehab_state,omitempty"`
	GovFicheURLs  string              `json:"gov_fiche_urls,omitempty"`
}

// Counts summarizes one pass, including the per-criterion diagnostics the
// operators use to sanity-check an import.
type Counts struct {
	Municipal     int `json:"municipal"`
	Government    int `json:"government"`
	NotInRegistry int `json:"not_in_registry"`
	Confirmed     int `json:"confirmed"`
	Pending       int `json:"pending"`
	Rejected      int `json:"rejected"`

	WithNotice    int `json:"with_notice"`
	WithComment   int `json:"with_comment"`
	WithReference int `json:"with_reference"`
	GovConfirmed  int `json:"gov_confirmed"`
}

// Outcome is the categorized result of one reconciliation pass.
type Outcome struct {
	Municipal     []record.Record `json:"municipal"`
	Government    []record.Record `json:"government"`
	NotInRegistry []record.Record `json:"not_in_registry"`
	Confirmed     []Classified    `json:"confirmed"`
	Pending       []Classified    `json:"pending"`
	Counts        Counts          `json:"counts"`
}

// Reconciler runs reconciliation passes. It holds no dataset state: every
// pass takes its inputs explicitly and recomputes from scratch, so two
// passes over the same inputs produce identical output.
type Reconciler struct {
	log zerolog.Logger
}

// New creates a reconciler that traces its passes on the given logger.
func New(log zerolog.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Run executes one full pass. Nil dataset slices are treated as empty; a nil
// ledger as one with no decisions. Record order in every output bucket
// follows municipal input order.
func (r *Reconciler) Run(municipal, government []record.Record, led *ledger.Ledger) *Outcome {
	if led == nil {
		led = ledger.New()
	}

	reg := index.Build(government)
	r.log.Debug().
		Int("municipal", len(municipal)).
		Int("government", len(government)).
		Int("references", reg.ReferenceCount()).
		Msg("reconciliation pass started")

	out := &Outcome{
		Municipal:  municipal,
		Government: government,
		Counts: Counts{
			Municipal:  len(municipal),
			Government: len(government),
		},
	}
	if out.Municipal == nil {
		out.Municipal = []record.Record{}
	}
	if out.Government == nil {
		out.Government = []record.Record{}
	}

	for _, mun := range out.Municipal {
		r.tally(mun, reg, &out.Counts)

		if classify.NotInRegistry(mun, reg) {
			out.NotInRegistry = append(out.NotInRegistry, mun)
		}

		id := record.ID(mun)
		if led.IsRejected(id) {
			// An operator veto short-circuits classification entirely.
			out.Counts.Rejected++
			continue
		}

		result := match.Match(mun, reg)
		cls, ok := classify.Classify(mun, result, reg)
		if !ok {
			continue
		}

		enriched := Classified{
			Record:        mun,
			ID:            id,
			Confidence:    cls.Confidence,
			Rationale:     cls.Rationale,
			MatchMethod:   result.Method,
			GovRehabState: cls.GovRehabState,
			GovFicheURLs:  cls.GovFicheURLs,
		}
		if led.IsValidated(id) {
			out.Confirmed = append(out.Confirmed, enriched)
		} else {
			out.Pending = append(out.Pending, enriched)
		}
	}

	out.Counts.NotInRegistry = len(out.NotInRegistry)
	out.Counts.Confirmed = len(out.Confirmed)
	out.Counts.Pending = len(out.Pending)

	r.log.Debug().
		Int("not_in_registry", out.Counts.NotInRegistry).
		Int("confirmed", out.Counts.Confirmed).
		Int("pending", out.Counts.Pending).
		Int("rejected", out.Counts.Rejected).
		Msg("reconciliation pass complete")
	return out
}

// tally accumulates the diagnostic criterion counters for one record.
func (r *Reconciler) tally(mun record.Record, reg *index.Registry, counts *Counts) {
	if _, ok := record.Resolve(mun, record.NoticeDate...); ok {
		counts.WithNotice++
	}
	if _, ok := record.Resolve(mun, record.Comments...); ok {
		counts.WithComment++
	}
	if ref := record.Reference(mun); ref != "" {
		counts.WithReference++
		if gov, ok := reg.ByReference(ref); ok && record.IsDecontaminated(gov) {
			counts.GovConfirmed++
		}
	}
}
