package core

// translate.go turns the multilingual columns captured during normalization
// into translation tuples keyed by canonical language codes.
//
// For every translatable base field and every language in the registry, the
// language's aliases are tried in preference order against the known column
// variants; the first variant with non-empty text wins and the search for
// that language/field pair stops. Tuples always carry the canonical code —
// aliases never reach storage.

import (
	"unicode"

	"github.com/storefleet/importer/internal/language"
)

// Extractor produces translation tuples from normalized records.
type Extractor struct {
	registry *language.Registry
}

// NewExtractor creates an extractor bound to a language registry.
func NewExtractor(reg *language.Registry) *Extractor {
	return &Extractor{registry: reg}
}

// Extract returns the translation tuples for one record's entity.
// Absence of a match for a language/field pair is not an error — no tuple is
// emitted for it.
func (e *Extractor) Extract(rec Record, kind EntityKind, entityID int64) []Tuple {
	byColumn := make(map[string]string, len(rec.Multilingual))
	for _, mf := range rec.Multilingual {
		if _, seen := byColumn[mf.Column]; !seen {
			byColumn[mf.Column] = mf.Value
		}
	}

	var tuples []Tuple
	for _, lang := range e.registry.Entries() {
		aliases := e.registry.Aliases(lang.Code)
		for _, base := range translatableFields {
			value, ok := firstMatch(byColumn, base, aliases)
			if !ok {
				continue
			}
			tuples = append(tuples, Tuple{
				Kind:     kind,
				EntityID: entityID,
				Locale:   lang.Code, // canonical, never the alias
				Key:      base,
				Value:    value,
			})
		}
	}
	return tuples
}

// firstMatch tries each alias in preference order, and for each alias every
// known column-name variant, returning the first non-empty text found.
func firstMatch(byColumn map[string]string, base string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		for _, column := range columnVariants(base, alias) {
			if v, ok := byColumn[column]; ok && v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// columnVariants lists the column names a base/alias pair may appear under:
// the plain form, the capitalized form, and field-specific known variants.
func columnVariants(base, alias string) []string {
	variants := []string{
		base + "_" + alias,
		capitalize(base) + "_" + alias,
	}
	switch base {
	case "name":
		variants = append(variants,
			"storeName_"+alias,
			"StoreName_"+alias,
			"restaurantName_"+alias,
		)
	case "address":
		variants = append(variants,
			"storeAddress_"+alias,
			"StoreAddress_"+alias,
		)
	}
	return variants
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
