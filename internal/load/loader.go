// Package load reads municipal and provincial datasets from the JSON and
// CSV files the dashboard tooling produces. It guarantees the core receives
// well-formed slices: empty on absence, never nil, with a typed error for
// structurally invalid documents.
package load

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/valdor-terrains/internal/record"
)

// TypeMismatchError reports a dataset whose structure does not match the
// expected shape (e.g. a "data" field that is not an array). This is the one
// fatal input condition: silently coercing it produced wrong downstream
// counts in the past, so it surfaces as a distinct error kind instead.
type TypeMismatchError struct {
	Field string
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("dataset field %q: want %s, got %s", e.Field, e.Want, e.Got)
}

// Metadata is the optional envelope information carried by wrapped dataset
// documents.
type Metadata struct {
	LastUpdate string `json:"last_update,omitempty"`
	Source     string `json:"source,omitempty"`
}

// document is the wrapped dataset shape: {"data": [...], "metadata": {...}}.
type document struct {
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
}

// jsonType names the JSON value kind of raw for error messages.
func jsonType(raw json.RawMessage) string {
	trimmed := strings.TrimLeftFunc(string(raw), unicode.IsSpace)
	switch {
	case trimmed == "" || strings.HasPrefix(trimmed, "null"):
		return "null"
	case strings.HasPrefix(trimmed, "["):
		return "array"
	case strings.HasPrefix(trimmed, "{"):
		return "object"
	case strings.HasPrefix(trimmed, `"`):
		return "string"
	case strings.HasPrefix(trimmed, "t"), strings.HasPrefix(trimmed, "f"):
		return "boolean"
	default:
		return "number"
	}
}

// DecodeJSON parses a dataset document in either wrapped form
// ({"data": [...], "metadata": {...}}) or bare-array form. The returned
// slice is never nil. A document whose record container is not an array
// yields a *TypeMismatchError.
func DecodeJSON(data []byte) ([]record.Record, Metadata, error) {
	trimmed := strings.TrimLeftFunc(string(data), unicode.IsSpace)

	var (
		raw  json.RawMessage
		meta Metadata
	)
	if strings.HasPrefix(trimmed, "{") {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, Metadata{}, fmt.Errorf("parsing dataset document: %w", err)
		}
		if doc.Data == nil {
			return nil, Metadata{}, &TypeMismatchError{Field: "data", Want: "array", Got: "null"}
		}
		raw = doc.Data
		meta = doc.Metadata
	} else {
		raw = data
	}

	if kind := jsonType(raw); kind != "array" {
		return nil, Metadata{}, &TypeMismatchError{Field: "data", Want: "array", Got: kind}
	}

	var records []record.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, Metadata{}, fmt.Errorf("parsing dataset records: %w", err)
	}
	if records == nil {
		records = []record.Record{}
	}
	return records, meta, nil
}

// ReadJSONFile loads a dataset document from disk.
func ReadJSONFile(path string) ([]record.Record, Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	records, meta, err := DecodeJSON(data)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("dataset %s: %w", path, err)
	}
	return records, meta, nil
}

// RequiredMunicipalColumns are the canonical headers a municipal upload must
// end up with; absent columns are filled with empty strings so downstream
// resolution never distinguishes "missing column" from "empty cell".
var RequiredMunicipalColumns = []string{
	"adresse",
	"lot",
	"reference",
	"avis_decontamination",
	"bureau_publicite",
	"commentaires",
}

var headerFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalizeHeader folds a spreadsheet column header to its canonical
// form: accents stripped, lowercased, non-alphanumeric runs collapsed to a
// single underscore. "Avis de décontamination" becomes
// "avis_de_decontamination".
func CanonicalizeHeader(header string) string {
	folded, _, err := transform.String(headerFolder, header)
	if err != nil {
		folded = header
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	lastUnderscore := true // suppress leading underscore
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ReadMunicipalCSV loads a municipal register export. Headers are
// canonicalized and the required columns are guaranteed present on every
// record.
func ReadMunicipalCSV(r io.Reader) ([]record.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = CanonicalizeHeader(h)
	}

	records := []record.Record{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		rec := record.Record{}
		for i, cell := range row {
			if i < len(columns) && columns[i] != "" {
				rec[columns[i]] = strings.TrimSpace(cell)
			}
		}
		for _, col := range RequiredMunicipalColumns {
			if _, ok := rec[col]; !ok {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadMunicipalCSVFile loads a municipal register export from disk.
func ReadMunicipalCSVFile(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadMunicipalCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
