package core

// schema.go declares the canonical store record shape.
//
// Everything the pipeline knows about a plain field — its header aliases,
// type, default, and whether it is identity-critical — lives in this one
// table. The Normalizer and the Validator both read it, which is what keeps
// their defaulting behavior in agreement.

// Translatable base fields. A spreadsheet column attaches per-language text
// to one of these via the multilingual naming patterns in normalize.go.
var translatableFields = []string{"name", "address"}

// multilingualPrefixes are matched case-sensitively against column names.
// A column failing the prefix match may still qualify through alias suffix
// matching against the language registry.
var multilingualPrefixes = map[string]string{
	"name_":      "name",
	"Name_":      "name",
	"address_":   "address",
	"Address_":   "address",
	"storeName_": "name",
	"StoreName_": "name",
}

// storeFields is the canonical field table for one imported store record.
// Alias order is the lookup priority order; the first present non-empty
// header wins.
var storeFields = []FieldSpec{
	{
		Name:     "ownerFirstName",
		Aliases:  []string{"owner_first_name", "first_name", "owner first name", "first name"},
		Type:     FieldText,
		Required: true,
		Identity: true,
	},
	{
		Name:     "ownerLastName",
		Aliases:  []string{"owner_last_name", "last_name", "owner last name", "last name"},
		Type:     FieldText,
		Required: true,
		Identity: true,
	},
	{
		Name:     "ownerEmail",
		Aliases:  []string{"owner_email", "contact_email", "email", "contact email"},
		Type:     FieldEmail,
		Required: true,
		Identity: true,
	},
	{
		Name:     "ownerPhone",
		Aliases:  []string{"owner_phone", "phone", "contact_phone", "mobile"},
		Type:     FieldText,
		Required: true,
		Identity: true,
	},
	{
		Name:     "storeName",
		Aliases:  []string{"store_name", "name", "restaurant_name"},
		Type:     FieldText,
		Required: true,
		Identity: true,
	},
	{
		Name:        "storeAddress",
		Aliases:     []string{"store_address", "address"},
		Type:        FieldText,
		DefaultText: "",
	},
	{
		Name:    "latitude",
		Aliases: []string{"lat"},
		Type:    FieldLatitude,
	},
	{
		Name:    "longitude",
		Aliases: []string{"lng", "lon", "long"},
		Type:    FieldLongitude,
	},
	{
		Name:    "zoneId",
		Aliases: []string{"zone_id", "zone"},
		Type:    FieldNumeric,
	},
	{
		Name:    "moduleId",
		Aliases: []string{"module_id", "module"},
		Type:    FieldNumeric,
	},
	{
		Name:    "tax",
		Aliases: []string{"tax_percent", "vat"},
		Type:    FieldPercent,
	},
	{
		Name:    "commission",
		Aliases: []string{"admin_commission", "commission_percent"},
		Type:    FieldPercent,
	},
	{
		Name:        "deliveryTime",
		Aliases:     []string{"delivery_time", "estimated_delivery_time"},
		Type:        FieldText,
		DefaultText: "20-30",
	},
	{
		Name:    "scheduleOrder",
		Aliases: []string{"schedule_order"},
		Type:    FieldBool,
	},
	{
		Name:        "active",
		Aliases:     []string{"status"},
		Type:        FieldBool,
		DefaultFlag: true,
	},
}

// StoreFields returns the canonical field table.
// The returned slice must be treated as read-only.
func StoreFields() []FieldSpec { return storeFields }

// fieldByName returns the spec for a canonical field name.
func fieldByName(name string) (FieldSpec, bool) {
	for _, spec := range storeFields {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// isNumericType reports whether the field type is stored as a number.
func isNumericType(t FieldType) bool {
	switch t {
	case FieldNumeric, FieldLatitude, FieldLongitude, FieldPercent:
		return true
	}
	return false
}
