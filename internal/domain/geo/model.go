// internal/domain/geo/model.go

package geo

import "strings"

// KeySeparator joins a city name and its province name into a composite key.
// City names are not globally unique, so the composite key is the only
// identifier that disambiguates a city across provinces.
const KeySeparator = "|"

// Province is a second-level administrative area owned by exactly one region.
type Province struct {
	Name   string   `json:"province"`
	Cities []string `json:"cities"`
}

// Region is the top level of the geographic hierarchy.
type Region struct {
	Name      string     `json:"name"`
	Provinces []Province `json:"provinces"`
}

// Metadata is the static geographic dataset the hierarchy index is built from.
type Metadata struct {
	Regions []Region `json:"regions"`
}

// MetadataDocument is the wire envelope of the metadata dataset.
type MetadataDocument struct {
	Metadata Metadata `json:"metadata"`
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ResolvedLocation is the region/province/city triple the engine believes
// represents the user, regardless of which source produced it. All fields are
// normalized keys; City is a composite key except when it came from a legacy
// persisted value, in which case it may be a bare city name.
type ResolvedLocation struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	City     string `json:"city"`
}

// IsZero reports whether no level of the location is set.
func (l ResolvedLocation) IsZero() bool {
	return l.Region == "" && l.Province == "" && l.City == ""
}

// RegionEntry is a region exposed for listing, with its normalized key.
type RegionEntry struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// ProvinceEntry is a province exposed for listing, carrying its parent region.
type ProvinceEntry struct {
	Region string `json:"region"`
	Name   string `json:"name"`
	Key    string `json:"key"`
}

// CityEntry is a city exposed for listing. Key is the composite city key and
// DisplayName disambiguates same-named cities for presentation.
type CityEntry struct {
	Region      string `json:"region"`
	Province    string `json:"province"`
	City        string `json:"city"`
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
}

// Normalize lower-cases and trims a name for case/whitespace-insensitive
// comparison. Every comparison in the hierarchy goes through this.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CityKey builds the composite key for a city within a province.
func CityKey(city, province string) string {
	return Normalize(city) + KeySeparator + Normalize(province)
}

// SplitCityKey splits a city filter value into its city and province parts.
// Legacy persisted values are bare city names with no separator; for those
// composite is false and province is empty.
func SplitCityKey(key string) (city, province string, composite bool) {
	city, province, composite = strings.Cut(key, KeySeparator)
	return Normalize(city), Normalize(province), composite
}
