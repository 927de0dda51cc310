package core

// validate.go checks imports at two levels:
//
//  1. Structural pass (whole file, once): required headers present, at least
//     one data row, multilingual columns advisory.
//  2. Row pass (per record, after normalization): identity-critical presence,
//     email format, coordinate and percentage bounds.
//
// The warning/error split is deliberate policy: anything with a safe default
// degrades to a warning so a good batch is not blocked on cosmetic omissions,
// while identity-critical data is never fabricated. Referential checks (zone
// and module existence) are deferred to persistence time to avoid
// snapshot-staleness between validation and insert.

import (
	"fmt"

	"github.com/storefleet/importer/internal/language"
)

// Validator validates a whole import file and its individual records.
type Validator struct {
	registry *language.Registry
	specs    []FieldSpec

	// defaultZoneID is the zone substituted when a record carries none.
	// Zero means the deployment has no default zone, in which case a
	// missing zone assignment is a hard failure.
	defaultZoneID int64

	norm *Normalizer
}

// NewValidator creates a validator over the canonical store field table.
func NewValidator(reg *language.Registry, defaultZoneID int64) *Validator {
	return &Validator{
		registry:      reg,
		specs:         StoreFields(),
		defaultZoneID: defaultZoneID,
		norm:          NewNormalizer(reg),
	}
}

// CheckStructure validates the whole file before any row is processed.
// A file with zero data rows or missing required headers is rejected; a file
// with no multilingual columns gets an advisory warning only, since
// multilingual data is optional per import.
func (v *Validator) CheckStructure(headers []string, dataRows int) Outcome {
	var out Outcome

	if dataRows == 0 {
		out.Errors = append(out.Errors, "file contains no data rows")
		return out
	}

	for _, spec := range v.specs {
		if !spec.Required {
			continue
		}
		if !headerPresent(headers, spec) {
			out.Errors = append(out.Errors,
				fmt.Sprintf("missing required column %q (no alias present either)", spec.Name))
		}
	}

	multilingual := false
	for _, h := range headers {
		if _, ok := v.norm.multilingualBase(h); ok {
			multilingual = true
			break
		}
	}
	if !multilingual {
		out.Warnings = append(out.Warnings,
			"no multilingual columns detected; no translations will be imported")
	}

	return out
}

// CheckRecord validates one record after normalization. The raw row is
// consulted to distinguish a value that defaulted from one that was present
// but unparseable.
func (v *Validator) CheckRecord(rec Record, row RawRow) Outcome {
	var out Outcome
	idx := plainHeaderIndex(row.Header)

	for _, spec := range v.specs {
		raw, present := lookupField(row, idx, spec)

		switch {
		case spec.Identity:
			v.checkIdentity(&out, spec, rec, raw, present)

		case spec.Type == FieldLatitude:
			v.checkBounds(&out, spec, rec, raw, present, -90, 90)

		case spec.Type == FieldLongitude:
			v.checkBounds(&out, spec, rec, raw, present, -180, 180)

		case spec.Type == FieldPercent:
			v.checkBounds(&out, spec, rec, raw, present, 0, 100)

		case spec.Name == "zoneId":
			v.checkZone(&out, rec, raw, present)

		case spec.Name == "moduleId":
			if !present {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("row %d: no module assigned", rec.SourceRow))
			} else if _, ok := ParseNumber(raw); !ok {
				out.Errors = append(out.Errors,
					fmt.Sprintf("row %d: module id %q is not numeric", rec.SourceRow, raw))
			}

		case spec.Type == FieldBool:
			if present {
				if _, ok := ParseFlag(raw); !ok {
					out.Warnings = append(out.Warnings,
						fmt.Sprintf("row %d: unrecognized value %q for %s, using default", rec.SourceRow, raw, spec.Name))
				}
			}

		case spec.Type == FieldNumeric:
			if present {
				if _, ok := ParseNumber(raw); !ok {
					out.Warnings = append(out.Warnings,
						fmt.Sprintf("row %d: non-numeric value %q for %s, using default", rec.SourceRow, raw, spec.Name))
				}
			}
		}
	}

	return out
}

// checkIdentity enforces identity-critical fields: absence or a malformed
// contact email cannot be defaulted and is always a hard failure.
func (v *Validator) checkIdentity(out *Outcome, spec FieldSpec, rec Record, raw string, present bool) {
	if !present {
		out.Errors = append(out.Errors,
			fmt.Sprintf("row %d: missing required field %s", rec.SourceRow, spec.Name))
		return
	}
	if spec.Type == FieldEmail && !ValidEmail(raw) {
		out.Errors = append(out.Errors,
			fmt.Sprintf("row %d: invalid email %q for %s", rec.SourceRow, raw, spec.Name))
	}
}

// checkBounds enforces numeric range fields. Out-of-range values are hard
// failures and are never silently clamped; an unparseable value degrades to
// a warning because the field default is safe.
func (v *Validator) checkBounds(out *Outcome, spec FieldSpec, rec Record, raw string, present bool, lo, hi float64) {
	if !present {
		return
	}
	val, ok := ParseNumber(raw)
	if !ok {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("row %d: non-numeric value %q for %s, using default", rec.SourceRow, raw, spec.Name))
		return
	}
	if val < lo || val > hi {
		out.Errors = append(out.Errors,
			fmt.Sprintf("row %d: %s %v out of range [%v, %v]", rec.SourceRow, spec.Name, val, lo, hi))
	}
}

// checkZone enforces the zone assignment rule: a record without a zone falls
// back to the deployment default zone with a warning, and is a hard failure
// when no default zone exists.
func (v *Validator) checkZone(out *Outcome, rec Record, raw string, present bool) {
	if present {
		if _, ok := ParseNumber(raw); !ok {
			out.Errors = append(out.Errors,
				fmt.Sprintf("row %d: zone id %q is not numeric", rec.SourceRow, raw))
		}
		return
	}
	if v.defaultZoneID == 0 {
		out.Errors = append(out.Errors,
			fmt.Sprintf("row %d: no zone assigned and no default zone configured", rec.SourceRow))
		return
	}
	out.Warnings = append(out.Warnings,
		fmt.Sprintf("row %d: no zone assigned, using default zone %d", rec.SourceRow, v.defaultZoneID))
}
