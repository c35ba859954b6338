// Package classify assigns a confidence-graded remediation status to
// municipal land records from the reconciliation result and municipal
// metadata.
package classify

import (
	"fmt"
	"strings"

	"github.com/valdor-terrains/internal/index"
	"github.com/valdor-terrains/internal/match"
	"github.com/valdor-terrains/internal/record"
)

// Confidence grades how strongly the evidence supports remediation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// commentMarkers are the remediation-indicating phrases looked for in the
// lowercased municipal comments field. "recu avis" appears both with and
// without the cedilla in real data entry.
var commentMarkers = []string{"décontaminé", "recu avis", "reçu avis"}

// Classification is the remediation verdict for one municipal record.
type Classification struct {
	Confidence Confidence

	// Rationale is the human-readable list of criteria that fired.
	Rationale string

	// GovRehabState carries the provincial rehabilitation-state text when
	// a provincial record was matched.
	GovRehabState string

	// GovFicheURLs carries the provincial fiche links when present.
	GovFicheURLs string
}

// criteria are the per-record facts the cascade is evaluated on.
type criteria struct {
	hasNotice    bool
	hasComment   bool
	govConfirmed bool
	removed      bool
	hadReference bool
}

func deriveCriteria(mun record.Record, result match.Result, reg *index.Registry) criteria {
	var c criteria

	_, c.hasNotice = record.Resolve(mun, record.NoticeDate...)

	if comment, ok := record.Resolve(mun, record.Comments...); ok {
		lower := strings.ToLower(comment)
		for _, marker := range commentMarkers {
			if strings.Contains(lower, marker) {
				c.hasComment = true
				break
			}
		}
	}

	if result.Method == match.MatchedByReference || result.Method == match.MatchedByAddress {
		c.govConfirmed = record.IsDecontaminated(result.Government)
	}

	if ref := record.Reference(mun); strings.TrimSpace(ref) != "" {
		c.hadReference = true
		c.removed = !reg.HasReference(ref)
	}
	return c
}

// Classify runs the prioritized rule cascade and reports whether the record
// counts as remediated. Rules are evaluated in order and the first hit wins:
//
//  1. provincial confirmation (decontaminated flag)      -> high
//  2. municipal notice and removal from the registry     -> high
//  3. municipal notice, or removal plus a comment        -> medium
//  4. removal from the registry alone                    -> low
//
// Anything else is not remediated and ok is false.
func Classify(mun record.Record, result match.Result, reg *index.Registry) (Classification, bool) {
	c := deriveCriteria(mun, result, reg)

	cls := Classification{}
	if result.Matched() {
		cls.GovRehabState = record.RehabState(result.Government)
		cls.GovFicheURLs = record.FicheURLs(result.Government)
	}

	switch {
	case c.govConfirmed:
		cls.Confidence = ConfidenceHigh
		cls.Rationale = fmt.Sprintf("registre gouvernemental (%s)", cls.GovRehabState)

	case c.hasNotice && c.removed:
		cls.Confidence = ConfidenceHigh
		cls.Rationale = "avis de décontamination + retiré du registre"

	case c.hasNotice || (c.removed && c.hasComment):
		cls.Confidence = ConfidenceMedium
		var parts []string
		if c.hasNotice {
			parts = append(parts, "avis de décontamination")
		}
		if c.removed {
			parts = append(parts, "retiré du registre")
		}
		if c.hasComment {
			parts = append(parts, "mention dans commentaires")
		}
		cls.Rationale = strings.Join(parts, ", ")

	case c.removed && c.hadReference:
		cls.Confidence = ConfidenceLow
		cls.Rationale = "retiré du registre gouvernemental"

	default:
		return Classification{}, false
	}

	return cls, true
}

// NotInRegistry reports whether a municipal record is absent from the
// official registry: it has no resolvable reference code, or the code it has
// is not listed by the provincial dataset. This flag is independent of the
// remediation cascade.
func NotInRegistry(mun record.Record, reg *index.Registry) bool {
	ref := record.Reference(mun)
	if strings.TrimSpace(ref) == "" {
		return true
	}
	return !reg.HasReference(ref)
}
