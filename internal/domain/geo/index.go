// internal/domain/geo/index.go

package geo

// HierarchyIndex answers lookups over the region → province → city hierarchy.
// It is built once per dataset load; the derived maps are pure caches of the
// dataset and are only rebuilt when the dataset itself is replaced.
type HierarchyIndex struct {
	meta Metadata

	// provinceRegion maps a normalized province name to its owning region's
	// normalized name. A province name appearing under two regions is a
	// malformed dataset; the first-indexed region wins.
	provinceRegion map[string]string

	// cityLocation maps a composite city key to its normalized ancestry.
	cityLocation map[string]CityLocation
}

// CityLocation is the normalized ancestry of a city key.
type CityLocation struct {
	Region   string `json:"region"`
	Province string `json:"province"`
}

// NewHierarchyIndex builds the index and its derived maps in a single pass
// over the dataset.
func NewHierarchyIndex(meta Metadata) *HierarchyIndex {
	ix := &HierarchyIndex{
		meta:           meta,
		provinceRegion: make(map[string]string),
		cityLocation:   make(map[string]CityLocation),
	}

	for _, r := range meta.Regions {
		regionKey := Normalize(r.Name)
		for _, p := range r.Provinces {
			provinceKey := Normalize(p.Name)
			if _, exists := ix.provinceRegion[provinceKey]; !exists {
				ix.provinceRegion[provinceKey] = regionKey
			}
			for _, c := range p.Cities {
				key := CityKey(c, p.Name)
				if _, exists := ix.cityLocation[key]; !exists {
					ix.cityLocation[key] = CityLocation{Region: regionKey, Province: provinceKey}
				}
			}
		}
	}

	return ix
}

// ListRegions returns all regions in dataset order.
func (ix *HierarchyIndex) ListRegions() []RegionEntry {
	regions := make([]RegionEntry, 0, len(ix.meta.Regions))
	for _, r := range ix.meta.Regions {
		regions = append(regions, RegionEntry{Name: r.Name, Key: Normalize(r.Name)})
	}
	return regions
}

// ListProvinces returns provinces in dataset order, restricted to the given
// region when regionKey is non-empty.
func (ix *HierarchyIndex) ListProvinces(regionKey string) []ProvinceEntry {
	var provinces []ProvinceEntry
	for _, r := range ix.meta.Regions {
		rk := Normalize(r.Name)
		if regionKey != "" && rk != regionKey {
			continue
		}
		for _, p := range r.Provinces {
			provinces = append(provinces, ProvinceEntry{Region: rk, Name: p.Name, Key: Normalize(p.Name)})
		}
	}
	return provinces
}

// ListCities returns cities in dataset order. When provinceKey is set only
// that province's cities are returned; otherwise when regionKey is set only
// cities within that region; otherwise all cities.
func (ix *HierarchyIndex) ListCities(provinceKey, regionKey string) []CityEntry {
	var cities []CityEntry
	for _, r := range ix.meta.Regions {
		rk := Normalize(r.Name)
		if provinceKey == "" && regionKey != "" && rk != regionKey {
			continue
		}
		for _, p := range r.Provinces {
			pk := Normalize(p.Name)
			if provinceKey != "" && pk != provinceKey {
				continue
			}
			for _, c := range p.Cities {
				cities = append(cities, CityEntry{
					Region:      rk,
					Province:    pk,
					City:        c,
					Key:         CityKey(c, p.Name),
					DisplayName: c + " (" + p.Name + ")",
				})
			}
		}
	}
	return cities
}

// ProvinceToRegion returns the normalized name of the region owning the given
// province key.
func (ix *HierarchyIndex) ProvinceToRegion(provinceKey string) (string, bool) {
	region, ok := ix.provinceRegion[provinceKey]
	return region, ok
}

// CityToLocation returns the normalized region and province of a composite
// city key. Lookups are exact-match on normalized keys; no fuzzy matching.
func (ix *HierarchyIndex) CityToLocation(cityKey string) (CityLocation, bool) {
	loc, ok := ix.cityLocation[cityKey]
	return loc, ok
}

// FindCity searches every province's city list for an exact normalized match
// of a bare city name and returns the first match in dataset order as a fully
// derived location.
func (ix *HierarchyIndex) FindCity(name string) (ResolvedLocation, bool) {
	want := Normalize(name)
	for _, r := range ix.meta.Regions {
		for _, p := range r.Provinces {
			for _, c := range p.Cities {
				if Normalize(c) == want {
					return ResolvedLocation{
						Region:   Normalize(r.Name),
						Province: Normalize(p.Name),
						City:     CityKey(c, p.Name),
					}, true
				}
			}
		}
	}
	return ResolvedLocation{}, false
}

// DefaultLocation returns the dataset default: the first region, its first
// province, and that province's first city, in dataset order.
func (ix *HierarchyIndex) DefaultLocation() (ResolvedLocation, bool) {
	for _, r := range ix.meta.Regions {
		for _, p := range r.Provinces {
			for _, c := range p.Cities {
				return ResolvedLocation{
					Region:   Normalize(r.Name),
					Province: Normalize(p.Name),
					City:     CityKey(c, p.Name),
				}, true
			}
		}
	}
	return ResolvedLocation{}, false
}
