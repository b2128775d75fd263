package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaAdapter rewrites one source naming convention into the canonical column set.
// Canonical columns follow the niche-style names (school_name, address_city, ...).
type SchemaAdapter interface {
	// Name identifies the adapter in config and logs.
	Name() string
	// Detect reports whether header looks like this schema.
	Detect(header []string) bool
	// Canonicalize maps one source row (keyed by source header) to canonical columns.
	Canonicalize(row map[string]string) map[string]string
}

// Adapters lists the built-in schemas in detection order.
var Adapters = []SchemaAdapter{NicheSchema{}, CensusSchema{}}

// SelectAdapter returns the adapter named by schema, or the first adapter whose
// Detect accepts header when schema is "auto" or empty.
func SelectAdapter(schema string, header []string) (SchemaAdapter, error) {
	if schema != "" && schema != "auto" {
		for _, a := range Adapters {
			if a.Name() == schema {
				return a, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, schema)
	}
	for _, a := range Adapters {
		if a.Detect(header) {
			return a, nil
		}
	}
	return nil, ErrUnknownSchema
}

// columnSource lists the source columns that feed one canonical column, in precedence order.
type columnSource struct {
	canonical string
	sources   []string
}

// pick returns the first non-blank value among sources, else the first present one.
func (c columnSource) pick(row map[string]string) (string, bool) {
	var (
		fallback string
		found    bool
	)
	for _, src := range c.sources {
		v, ok := row[src]
		if !ok {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return v, true
		}
		if !found {
			fallback, found = v, true
		}
	}
	return fallback, found
}

// foldKeys rekeys row with fold applied to each trimmed header. When two headers fold
// to the same key, the lexically first header with a non-blank value wins.
func foldKeys(row map[string]string, fold func(string) string) map[string]string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(row))
	for _, k := range keys {
		key := fold(strings.TrimSpace(k))
		if existing, ok := out[key]; ok && strings.TrimSpace(existing) != "" {
			continue
		}
		out[key] = row[k]
	}
	return out
}

// NicheSchema is the prefixed-column export (school_name, address_city, county_name, ...).
type NicheSchema struct{}

// nicheAliases maps short or legacy niche headers onto canonical columns.
// The canonical name itself always takes precedence.
var nicheAliases = []columnSource{
	{"school_name", []string{"school_name", "name"}},
	{"address_zipcode", []string{"address_zipcode", "address_zip", "zipcode"}},
	{"county_name", []string{"county_name", "county"}},
	{"metro_area_name", []string{"metro_area_name", "metro_area"}},
	{"four_year_matriculation_rate", []string{"four_year_matriculation_rate", "matriculation_rate", "college_enrollment_rate"}},
	{"nces_id", []string{"nces_id", "ncessch"}},
	{"district_id", []string{"district_id", "leaid"}},
}

var nicheAliased = func() map[string]bool {
	m := make(map[string]bool)
	for _, c := range nicheAliases {
		for _, src := range c.sources {
			m[src] = true
		}
	}
	return m
}()

// Name implements SchemaAdapter.
func (NicheSchema) Name() string { return "niche" }

// Detect implements SchemaAdapter.
func (NicheSchema) Detect(header []string) bool {
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == "school_name" || strings.HasPrefix(h, "address_") {
			return true
		}
	}
	return false
}

// Canonicalize implements SchemaAdapter.
func (NicheSchema) Canonicalize(row map[string]string) map[string]string {
	folded := foldKeys(row, strings.ToLower)
	out := make(map[string]string, len(folded))
	for k, v := range folded {
		if !nicheAliased[k] {
			out[k] = v
		}
	}
	for _, c := range nicheAliases {
		if v, ok := c.pick(folded); ok {
			out[c.canonical] = v
		}
	}
	return out
}

// CensusSchema is the upper-case directory export (NAME, ADDRESS, CITY, STATE, ZIP, COUNTY).
// Rows describe public schools unless a CHARTER flag says otherwise.
type CensusSchema struct{}

var censusColumns = []columnSource{
	{"school_name", []string{"NAME", "SCH_NAME"}},
	{"address_address", []string{"ADDRESS", "STREET"}},
	{"address_city", []string{"CITY"}},
	{"address_state", []string{"STATE", "STABR"}},
	{"address_zipcode", []string{"ZIP"}},
	{"county_name", []string{"COUNTY", "NMCNTY"}},
	{"metro_area_name", []string{"NMCBSA", "CBSA_NAME"}},
	{"latitude", []string{"LAT", "LATITUDE"}},
	{"longitude", []string{"LON", "LONGITUDE"}},
	{"nces_id", []string{"NCESSCH"}},
	{"district_id", []string{"LEAID"}},
	{"total_students", []string{"TOTAL", "MEMBER"}},
	{"is_charter", []string{"CHARTER"}},
	{"student_teacher_ratio", []string{"STUTERATIO"}},
}

// Name implements SchemaAdapter.
func (CensusSchema) Name() string { return "census" }

// Detect implements SchemaAdapter.
func (CensusSchema) Detect(header []string) bool {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[strings.ToUpper(strings.TrimSpace(h))] = true
	}
	return (seen["NAME"] || seen["SCH_NAME"]) && seen["CITY"] && seen["STATE"]
}

// Canonicalize implements SchemaAdapter. Unknown columns are dropped.
func (CensusSchema) Canonicalize(row map[string]string) map[string]string {
	folded := foldKeys(row, strings.ToUpper)
	out := make(map[string]string, len(censusColumns)+1)
	for _, c := range censusColumns {
		if v, ok := c.pick(folded); ok {
			out[c.canonical] = v
		}
	}
	zip4 := strings.TrimSpace(folded["ZIP4"])
	if zip := strings.TrimSpace(out["address_zipcode"]); zip != "" && zip4 != "" {
		out["address_zipcode"] = zip + "-" + zip4
	}
	if out["is_charter"] == "" || !truthy(out["is_charter"]) {
		out["is_public"] = "1"
	}
	return out
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}
