package core

// normalize.go maps arbitrary spreadsheet columns onto the canonical record
// shape declared in schema.go.
//
// Plain fields resolve through the field's primary header and then its
// aliases, in priority order; the first present non-empty value wins and
// everything else falls back to the documented default. Multilingual columns
// are detected by two independent paths (fixed case-sensitive prefixes, and
// <base>_<alias> suffix matching against the language registry) and kept
// under their original column names — alias resolution is the Translation
// Extractor's job.

import (
	"strings"

	"github.com/storefleet/importer/internal/language"
)

// Normalizer converts raw spreadsheet rows into normalized records.
type Normalizer struct {
	registry *language.Registry
	specs    []FieldSpec
}

// NewNormalizer creates a normalizer over the canonical store field table.
func NewNormalizer(reg *language.Registry) *Normalizer {
	return &Normalizer{registry: reg, specs: StoreFields()}
}

// Normalize produces the normalized record for one raw row.
// Empty cell values are treated identically to absent columns.
func (n *Normalizer) Normalize(row RawRow) Record {
	rec := Record{
		SourceRow: row.Line,
		Text:      make(map[string]string),
		Number:    make(map[string]float64),
		Flag:      make(map[string]bool),
	}

	idx := plainHeaderIndex(row.Header)

	for _, spec := range n.specs {
		raw, _ := lookupField(row, idx, spec)
		n.applyField(&rec, spec, raw)
	}

	rec.Multilingual = n.detectMultilingual(row)
	return rec
}

// applyField coerces one cell value into the record, defaulting on absence
// or coercion failure. Format errors are the Validator's to report.
func (n *Normalizer) applyField(rec *Record, spec FieldSpec, raw string) {
	switch {
	case isNumericType(spec.Type):
		if v, ok := ParseNumber(raw); ok {
			rec.Number[spec.Name] = v
		} else {
			rec.Number[spec.Name] = spec.DefaultNumber
		}
	case spec.Type == FieldBool:
		if v, ok := ParseFlag(raw); ok {
			rec.Flag[spec.Name] = v
		} else {
			rec.Flag[spec.Name] = spec.DefaultFlag
		}
	default:
		if raw != "" {
			rec.Text[spec.Name] = raw
		} else {
			rec.Text[spec.Name] = spec.DefaultText
		}
	}
}

// detectMultilingual returns every column matching a multilingual naming
// pattern, in sheet order, with trimmed non-empty values.
func (n *Normalizer) detectMultilingual(row RawRow) []MultiField {
	var out []MultiField
	for _, h := range row.Header {
		base, ok := n.multilingualBase(h)
		if !ok {
			continue
		}
		value := strings.TrimSpace(row.Cells[h])
		if value == "" {
			continue
		}
		out = append(out, MultiField{Base: base, Column: h, Value: value})
	}
	return out
}

// multilingualBase reports the translatable base field a column belongs to.
// The prefix path is case-sensitive; the suffix path accepts any casing of a
// translatable base followed by a registry-known alias.
func (n *Normalizer) multilingualBase(column string) (string, bool) {
	for prefix, base := range multilingualPrefixes {
		if strings.HasPrefix(column, prefix) && len(column) > len(prefix) {
			return base, true
		}
	}

	i := strings.Index(column, "_")
	if i <= 0 || i == len(column)-1 {
		return "", false
	}
	base, ok := translatableBase(column[:i])
	if !ok {
		return "", false
	}
	if _, ok := n.registry.Resolve(column[i+1:]); !ok {
		return "", false
	}
	return base, true
}

// translatableBase maps a column-name stem onto a translatable base field.
func translatableBase(stem string) (string, bool) {
	switch strings.ToLower(stem) {
	case "name", "storename", "restaurantname":
		return "name", true
	case "address", "storeaddress":
		return "address", true
	}
	return "", false
}

// plainHeaderIndex maps normalized header keys back to original headers.
// The first occurrence of a duplicated header wins.
func plainHeaderIndex(headers []string) map[string]string {
	idx := make(map[string]string, len(headers))
	for _, h := range headers {
		key := headerKey(h)
		if _, seen := idx[key]; !seen {
			idx[key] = h
		}
	}
	return idx
}

// lookupField finds the cell value for a field using its primary header and
// then each alias. Empty strings count as absent.
func lookupField(row RawRow, idx map[string]string, spec FieldSpec) (string, bool) {
	candidates := append([]string{spec.Name}, spec.Aliases...)
	for _, name := range candidates {
		original, ok := idx[headerKey(name)]
		if !ok {
			continue
		}
		if v := CleanCell(row.Cells[original]); v != "" {
			return v, true
		}
	}
	return "", false
}

// headerPresent reports whether a field's primary header or any alias exists
// in the header row, regardless of cell values. Used by the structural pass.
func headerPresent(headers []string, spec FieldSpec) bool {
	keys := make(map[string]bool, len(headers))
	for _, h := range headers {
		keys[headerKey(h)] = true
	}
	if keys[headerKey(spec.Name)] {
		return true
	}
	for _, a := range spec.Aliases {
		if keys[headerKey(a)] {
			return true
		}
	}
	return false
}
