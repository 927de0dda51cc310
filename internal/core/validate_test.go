package core

import (
	"strings"
	"testing"

	"github.com/storefleet/importer/internal/language"
)

func validRow(line int, overrides ...string) RawRow {
	r := row(line,
		"first_name", "Ari",
		"last_name", "Karim",
		"email", "ari@example.com",
		"phone", "0750123",
		"store_name", "Ari's Grill",
		"address", "60m Street",
		"lat", "36.19",
		"long", "44.01",
		"zone", "3",
		"name_ar", "مشواة آري",
	)
	for i := 0; i+1 < len(overrides); i += 2 {
		h := overrides[i]
		if _, ok := r.Cells[h]; !ok {
			r.Header = append(r.Header, h)
		}
		r.Cells[h] = overrides[i+1]
	}
	return r
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestCheckStructure(t *testing.T) {
	v := NewValidator(language.Default(), 1)

	tests := []struct {
		name        string
		headers     []string
		dataRows    int
		wantErrs    []string
		wantWarns   []string
		wantRejects bool
	}{
		{
			name:     "complete header set",
			headers:  []string{"first_name", "last_name", "email", "phone", "store_name", "name_ar"},
			dataRows: 3,
		},
		{
			name:        "zero data rows",
			headers:     []string{"first_name", "last_name", "email", "phone", "store_name"},
			dataRows:    0,
			wantErrs:    []string{"no data rows"},
			wantRejects: true,
		},
		{
			name:        "missing required columns",
			headers:     []string{"first_name", "store_name"},
			dataRows:    2,
			wantErrs:    []string{"ownerLastName", "ownerEmail", "ownerPhone"},
			wantRejects: true,
		},
		{
			name:      "no multilingual columns is advisory only",
			headers:   []string{"first_name", "last_name", "email", "phone", "store_name"},
			dataRows:  2,
			wantWarns: []string{"no multilingual columns"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.CheckStructure(tt.headers, tt.dataRows)
			if out.Valid() == tt.wantRejects {
				t.Fatalf("Valid() = %v, errors = %v", out.Valid(), out.Errors)
			}
			for _, want := range tt.wantErrs {
				if !hasMessage(out.Errors, want) {
					t.Errorf("errors %v missing %q", out.Errors, want)
				}
			}
			for _, want := range tt.wantWarns {
				if !hasMessage(out.Warnings, want) {
					t.Errorf("warnings %v missing %q", out.Warnings, want)
				}
			}
		})
	}
}

func TestCheckRecordIdentityFields(t *testing.T) {
	v := NewValidator(language.Default(), 1)
	n := NewNormalizer(language.Default())

	t.Run("missing email is fatal", func(t *testing.T) {
		r := validRow(2, "email", "")
		out := v.CheckRecord(n.Normalize(r), r)
		if out.Valid() {
			t.Fatal("expected blocking error for missing email")
		}
		if !hasMessage(out.Errors, "ownerEmail") {
			t.Errorf("errors = %v, want ownerEmail mentioned", out.Errors)
		}
	})

	t.Run("malformed email is fatal, never defaulted", func(t *testing.T) {
		r := validRow(2, "email", "not-an-email")
		out := v.CheckRecord(n.Normalize(r), r)
		if out.Valid() {
			t.Fatal("expected blocking error for malformed email")
		}
		if !hasMessage(out.Errors, "invalid email") {
			t.Errorf("errors = %v, want invalid email", out.Errors)
		}
	})

	t.Run("missing store name is fatal", func(t *testing.T) {
		r := validRow(2, "store_name", "")
		out := v.CheckRecord(n.Normalize(r), r)
		if !hasMessage(out.Errors, "storeName") {
			t.Errorf("errors = %v, want storeName mentioned", out.Errors)
		}
	})
}

func TestCheckRecordBounds(t *testing.T) {
	v := NewValidator(language.Default(), 1)
	n := NewNormalizer(language.Default())

	tests := []struct {
		name    string
		header  string
		value   string
		wantErr bool
	}{
		{name: "latitude in range", header: "lat", value: "89.9"},
		{name: "latitude out of range", header: "lat", value: "91", wantErr: true},
		{name: "latitude negative out of range", header: "lat", value: "-90.5", wantErr: true},
		{name: "longitude in range", header: "long", value: "-179"},
		{name: "longitude out of range", header: "long", value: "181", wantErr: true},
		{name: "tax in range", header: "tax", value: "15"},
		{name: "tax over 100", header: "tax", value: "101", wantErr: true},
		{name: "commission negative", header: "commission", value: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRow(2, tt.header, tt.value)
			out := v.CheckRecord(n.Normalize(r), r)
			if tt.wantErr && out.Valid() {
				t.Errorf("expected blocking error, got warnings %v", out.Warnings)
			}
			if !tt.wantErr && !out.Valid() {
				t.Errorf("unexpected errors %v", out.Errors)
			}
		})
	}

	t.Run("unparseable coordinate degrades to warning", func(t *testing.T) {
		r := validRow(2, "lat", "north-ish")
		out := v.CheckRecord(n.Normalize(r), r)
		if !out.Valid() {
			t.Fatalf("unexpected errors %v", out.Errors)
		}
		if !hasMessage(out.Warnings, "non-numeric") {
			t.Errorf("warnings = %v, want non-numeric warning", out.Warnings)
		}
	})
}

func TestCheckRecordZonePolicy(t *testing.T) {
	n := NewNormalizer(language.Default())

	t.Run("missing zone uses default with warning", func(t *testing.T) {
		v := NewValidator(language.Default(), 7)
		r := validRow(2, "zone", "")
		out := v.CheckRecord(n.Normalize(r), r)
		if !out.Valid() {
			t.Fatalf("unexpected errors %v", out.Errors)
		}
		if !hasMessage(out.Warnings, "default zone 7") {
			t.Errorf("warnings = %v, want default zone warning", out.Warnings)
		}
	})

	t.Run("missing zone without default is fatal", func(t *testing.T) {
		v := NewValidator(language.Default(), 0)
		r := validRow(2, "zone", "")
		out := v.CheckRecord(n.Normalize(r), r)
		if out.Valid() {
			t.Fatal("expected blocking error when no default zone configured")
		}
	})

	t.Run("non-numeric zone is fatal", func(t *testing.T) {
		v := NewValidator(language.Default(), 7)
		r := validRow(2, "zone", "downtown")
		out := v.CheckRecord(n.Normalize(r), r)
		if out.Valid() {
			t.Fatal("expected blocking error for non-numeric zone")
		}
	})
}

func TestCheckRecordSoftFields(t *testing.T) {
	v := NewValidator(language.Default(), 1)
	n := NewNormalizer(language.Default())

	t.Run("unrecognized flag degrades to warning", func(t *testing.T) {
		r := validRow(2, "status", "sometimes")
		out := v.CheckRecord(n.Normalize(r), r)
		if !out.Valid() {
			t.Fatalf("unexpected errors %v", out.Errors)
		}
		if !hasMessage(out.Warnings, "unrecognized value") {
			t.Errorf("warnings = %v, want unrecognized value warning", out.Warnings)
		}
	})

	t.Run("missing module is a warning", func(t *testing.T) {
		r := validRow(2)
		out := v.CheckRecord(n.Normalize(r), r)
		if !out.Valid() {
			t.Fatalf("unexpected errors %v", out.Errors)
		}
		if !hasMessage(out.Warnings, "no module assigned") {
			t.Errorf("warnings = %v, want module warning", out.Warnings)
		}
	})

	t.Run("non-numeric module is fatal", func(t *testing.T) {
		r := validRow(2, "module", "grocery")
		out := v.CheckRecord(n.Normalize(r), r)
		if out.Valid() {
			t.Fatal("expected blocking error for non-numeric module")
		}
	})
}
