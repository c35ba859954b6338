// Package record defines the loosely-structured land records exchanged with
// the municipal register and the provincial contaminated-lands registry, and
// the column resolution rules that bridge their inconsistent field naming.
package record

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Record is one row from either source: a string-keyed mapping as decoded
// from JSON or CSV. Values may be strings, numbers, booleans or nil
// depending on how the source file was produced.
type Record map[string]any

// Field priority lists. The two source systems and manual uploads name the
// same logical column differently; each list is tried in order and the first
// non-empty value wins. The order is part of the matching contract: moving a
// key changes which value a record resolves to.
var (
	// MunicipalReference is the MENVIQ/MELCC reference code on the
	// municipal side.
	MunicipalReference = []string{"reference", "reference_menviq", "no_mef_lieu", "numero_menviq"}

	// MunicipalAddress is the civic address on the municipal side.
	MunicipalAddress = []string{"adresse", "address", "Adresse", "ADRESSE"}

	// Lot is the cadastral lot number.
	Lot = []string{"lot", "numero_de_lot", "numero_lot"}

	// NoticeDate is the remediation notice date recorded by the
	// municipality.
	NoticeDate = []string{"avis_decontamination", "avis_de_decontamination", "date_avis", "avis_decontamination_date"}

	// Comments is the free-text comments column.
	Comments = []string{"commentaires", "commentaire", "comments"}

	// PublicityBureau is the land publicity bureau number.
	PublicityBureau = []string{"bureau_publicite", "bureau_publicite_des_droits"}

	// GovernmentReference is the official reference code on the
	// provincial side.
	GovernmentReference = []string{"NO_MEF_LIEU", "reference", "Reference", "ID"}
)

// render converts a raw cell value to its string form. Integral floats (the
// usual fate of lot numbers round-tripped through JSON) render without a
// decimal part.
func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Resolve returns the value of the first candidate key present in the record
// with a non-nil, non-empty value, rendered as a string. The boolean reports
// whether any candidate matched. Resolve never fails on missing fields.
func Resolve(rec Record, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		if s := render(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// resolveOr is Resolve with an empty-string miss value.
func resolveOr(rec Record, keys ...string) string {
	s, _ := Resolve(rec, keys...)
	return s
}

// Address returns the municipal-side civic address.
func Address(rec Record) string {
	return resolveOr(rec, MunicipalAddress...)
}

// Reference returns the municipal-side reference code, untrimmed.
func Reference(rec Record) string {
	return resolveOr(rec, MunicipalReference...)
}

// ID derives the stable identifier used by the validation ledger:
// the raw address and lot joined with an underscore. Raw values are used on
// purpose so that ids stay continuous with decisions persisted by earlier
// deployments.
func ID(rec Record) string {
	return resolveOr(rec, MunicipalAddress...) + "_" + resolveOr(rec, Lot...)
}

// GovReference returns the provincial-side official reference code.
func GovReference(rec Record) string {
	return resolveOr(rec, GovernmentReference...)
}

// GovAddress returns the provincial-side civic address: the standard
// ADR_CIV_LIEU column when present, otherwise the first column whose name
// contains "adresse" or "address". Keys are scanned in sorted order so the
// fallback is deterministic.
func GovAddress(rec Record) string {
	if s, ok := Resolve(rec, "ADR_CIV_LIEU"); ok {
		return s
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "adresse") || strings.Contains(lower, "address") {
			if s := render(rec[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

// IsDecontaminated reports whether the provincial registry marks the land as
// decontaminated. Only a strict boolean true counts; string renderings such
// as "true" or "VRAI" do not.
func IsDecontaminated(rec Record) bool {
	for _, key := range []string{"IS_DECONTAMINATED", "is_decontaminated"} {
		if b, ok := rec[key].(bool); ok {
			return b
		}
	}
	return false
}

// RehabState returns the free-text rehabilitation state from the provincial
// registry (e.g. "Terminée", "Initiée", "Non débutée").
func RehabState(rec Record) string {
	return resolveOr(rec, "ETAT_REHAB", "etat_rehab")
}

// FicheURLs returns the informational fiche links attached to a provincial
// record, when the extract carried them.
func FicheURLs(rec Record) string {
	return resolveOr(rec, "FICHES_URLS", "fiches_urls")
}

// PostalCode returns the provincial-side postal code.
func PostalCode(rec Record) string {
	return resolveOr(rec, "CODE_POST_LIEU", "code_postal")
}

// SoilQualityBefore returns the soil quality range before remediation.
func SoilQualityBefore(rec Record) string {
	return resolveOr(rec, "QUAL_SOLS_AV")
}

// SoilQualityAfter returns the soil quality range reached by remediation.
func SoilQualityAfter(rec Record) string {
	return resolveOr(rec, "QUAL_SOLS")
}

// Contaminants returns the delimited soil contaminant list.
func Contaminants(rec Record) string {
	return resolveOr(rec, "CONTAM_SOL_EXTRA")
}

// ReceivingMedium returns the receiving-medium description.
func ReceivingMedium(rec Record) string {
	return resolveOr(rec, "DESC_MILIEU_RECEPT", "milieu_recepteur")
}
