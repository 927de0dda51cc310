// Package language provides the canonical registry of languages the import
// pipeline can attach translations for.
//
// The registry is built once at startup and is read-only afterwards. Every
// component that needs alias resolution receives the registry by handle;
// there is no package-level lookup table.
package language

import (
	"fmt"
	"strings"
)

// Entry describes one supported language.
type Entry struct {
	// Code is the canonical language code (e.g. "ckb"). All aliases
	// resolve to it and it is the only form ever written to storage.
	Code        string
	DisplayName string
	NativeName  string

	// Aliases are alternate spellings matched case-insensitively.
	// The declared order is the preference order used when several
	// spreadsheet columns could serve the same language.
	Aliases []string

	// RightToLeft reports the text direction of the language.
	RightToLeft bool

	// Fallbacks is the ordered chain of canonical codes to consult when
	// no translation exists for this language.
	Fallbacks []string
}

// Registry resolves language aliases to canonical codes.
type Registry struct {
	entries []Entry
	byAlias map[string]string // lowercased alias -> canonical code
	byCode  map[string]int    // canonical code -> index into entries
}

// New builds a registry from the given entries.
// It returns an error if an alias maps to more than one canonical code, if a
// canonical code is declared twice, or if a fallback chain references an
// unknown code.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, len(entries)),
		byAlias: make(map[string]string),
		byCode:  make(map[string]int),
	}
	copy(r.entries, entries)

	for i, e := range r.entries {
		if e.Code == "" {
			return nil, fmt.Errorf("language entry %d has an empty code", i)
		}
		if _, dup := r.byCode[e.Code]; dup {
			return nil, fmt.Errorf("duplicate language code %q", e.Code)
		}
		r.byCode[e.Code] = i

		// The canonical code is always resolvable as its own alias.
		aliases := append([]string{e.Code}, e.Aliases...)
		for _, a := range aliases {
			key := strings.ToLower(strings.TrimSpace(a))
			if key == "" {
				continue
			}
			if existing, ok := r.byAlias[key]; ok && existing != e.Code {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", a, existing, e.Code)
			}
			r.byAlias[key] = e.Code
		}
	}

	for _, e := range r.entries {
		for _, fb := range e.Fallbacks {
			if _, ok := r.byCode[fb]; !ok {
				return nil, fmt.Errorf("language %q falls back to unknown code %q", e.Code, fb)
			}
		}
	}

	return r, nil
}

// Resolve maps an alias to its canonical code. Matching is a case-insensitive
// exact match; there is no fuzzy matching. An unresolved alias is not an
// error by itself — callers decide whether to skip the column or warn.
func (r *Registry) Resolve(alias string) (string, bool) {
	code, ok := r.byAlias[strings.ToLower(strings.TrimSpace(alias))]
	return code, ok
}

// Fallbacks returns the ordered fallback chain for a canonical code.
// Unknown codes return nil.
func (r *Registry) Fallbacks(code string) []string {
	i, ok := r.byCode[code]
	if !ok {
		return nil
	}
	return r.entries[i].Fallbacks
}

// Entry returns the full entry for a canonical code.
func (r *Registry) Entry(code string) (Entry, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Entries returns all entries in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Aliases returns the declared preference-ordered aliases for a canonical
// code, starting with the code itself.
func (r *Registry) Aliases(code string) []string {
	i, ok := r.byCode[code]
	if !ok {
		return nil
	}
	return append([]string{code}, r.entries[i].Aliases...)
}

// Default returns the built-in language table.
// The set mirrors the languages the storefront ships with; deployments can
// construct a narrower registry and pass it to the pipeline instead.
func Default() *Registry {
	r, err := New(defaultEntries)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("built-in language table invalid: %v", err))
	}
	return r
}

var defaultEntries = []Entry{
	{
		Code:        "en",
		DisplayName: "English",
		NativeName:  "English",
		Aliases:     []string{"english", "eng"},
	},
	{
		Code:        "ar",
		DisplayName: "Arabic",
		NativeName:  "العربية",
		Aliases:     []string{"arabic", "ara"},
		RightToLeft: true,
		Fallbacks:   []string{"en"},
	},
	{
		Code:        "ckb",
		DisplayName: "Kurdish (Sorani)",
		NativeName:  "کوردیی ناوەندی",
		Aliases:     []string{"sorani", "kurdish-sorani", "kurdi", "ku-sorani"},
		RightToLeft: true,
		Fallbacks:   []string{"ar", "en"},
	},
	{
		Code:        "kmr",
		DisplayName: "Kurdish (Kurmanji)",
		NativeName:  "Kurmancî",
		Aliases:     []string{"kurmanji", "badini"},
		Fallbacks:   []string{"ckb", "en"},
	},
	{
		Code:        "tr",
		DisplayName: "Turkish",
		NativeName:  "Türkçe",
		Aliases:     []string{"turkish", "tur"},
		Fallbacks:   []string{"en"},
	},
	{
		Code:        "fa",
		DisplayName: "Persian",
		NativeName:  "فارسی",
		Aliases:     []string{"persian", "farsi"},
		RightToLeft: true,
		Fallbacks:   []string{"en"},
	},
}
