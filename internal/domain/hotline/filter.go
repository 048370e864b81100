// internal/domain/hotline/filter.go

package hotline

import (
	"sort"
	"strings"

	"lifeline/internal/domain/geo"
)

// Filter is the transient directory filter. Each location field is a
// normalized key, empty meaning "any". City, when set, is normally a
// composite city key; a bare city name (no separator) is still accepted for
// backward compatibility with previously persisted values. Category is a
// group label from the category taxonomy.
type Filter struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	City     string `json:"city"`
	Category string `json:"category"`
}

// Apply returns the hotlines matching the filter, deterministically ordered.
// Location matching is strictly hierarchical and conjunctive, exact-match on
// normalized keys; no partial, prefix, or fuzzy matching anywhere.
func Apply(hotlines []Hotline, f Filter) []Hotline {
	categories, constrained := GroupCategories(f.Category)

	matched := make([]Hotline, 0, len(hotlines))
	for _, h := range hotlines {
		if f.Region != "" && geo.Normalize(h.RegionName) != f.Region {
			continue
		}
		if f.Province != "" && geo.Normalize(h.Province) != f.Province {
			continue
		}
		if f.City != "" {
			city, province, composite := geo.SplitCityKey(f.City)
			if geo.Normalize(h.City) != city {
				continue
			}
			// Legacy bare-city filters carry no province part and
			// match on city name alone.
			if composite && geo.Normalize(h.Province) != province {
				continue
			}
		}
		if constrained && !categories[h.Category] {
			continue
		}
		matched = append(matched, h)
	}

	// Stable sort keeps input order for entries with identical category
	// and name, so the result is deterministic for any input order.
	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := matched[i].Category.Rank(), matched[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})

	return matched
}
