// internal/domain/hotline/filter_test.go

package hotline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline/internal/domain/geo"
)

func testHotlines() []Hotline {
	return []Hotline{
		{Name: "Quezon City Fire Station", Category: CategoryFire, City: "Quezon City", Province: "Metro Manila", RegionName: "NCR"},
		{Name: "Manila Police District", Category: CategoryPolice, City: "Manila", Province: "Metro Manila", RegionName: "NCR"},
		{Name: "Cebu Doctors Hospital", Category: CategoryMedical, City: "Manila", Province: "Metro Cebu", RegionName: "Central Visayas"},
		{Name: "Meralco", Category: CategoryUtility, City: "Manila", Province: "metro manila", RegionName: "ncr"},
		{Name: "Bureau of Fire Protection", Category: CategoryFire, City: "Manila", Province: "Metro Manila", RegionName: "NCR"},
		{Name: "City Hall", Category: CategoryGovernment, City: "Makati", Province: "Metro Manila", RegionName: "NCR"},
		{Name: "Amber Alert Desk", Category: CategoryPolice, City: "Makati", Province: "Metro Manila", RegionName: " NCR "},
	}
}

func names(hotlines []Hotline) []string {
	out := make([]string, len(hotlines))
	for i, h := range hotlines {
		out[i] = h.Name
	}
	return out
}

func TestApplyCompositeCity(t *testing.T) {
	// Two provinces share the city name "Manila"; the composite key keeps
	// them apart.
	got := Apply(testHotlines(), Filter{City: "manila|metro manila"})

	for _, h := range got {
		assert.Equal(t, "metro manila", geo.Normalize(h.Province), "hotline %q leaked in from another province", h.Name)
	}
	assert.NotContains(t, names(got), "Cebu Doctors Hospital")
	assert.Contains(t, names(got), "Manila Police District")
}

func TestApplyLegacyBareCity(t *testing.T) {
	// A bare city value, as previously persisted clients send, matches on
	// city name alone.
	got := Apply(testHotlines(), Filter{City: "manila"})

	assert.Contains(t, names(got), "Manila Police District")
	assert.Contains(t, names(got), "Cebu Doctors Hospital")
}

func TestApplyRegionAndProvinceNormalized(t *testing.T) {
	// The dataset's regionName/province fields are free text with
	// inconsistent casing and padding.
	byRegion := Apply(testHotlines(), Filter{Region: "ncr"})
	assert.Len(t, byRegion, 6)
	assert.Contains(t, names(byRegion), "Meralco")
	assert.Contains(t, names(byRegion), "Amber Alert Desk")

	byProvince := Apply(testHotlines(), Filter{Province: "metro manila"})
	assert.Len(t, byProvince, 6)
}

func TestApplyEmergencyGroup(t *testing.T) {
	got := Apply(testHotlines(), Filter{Category: GroupEmergency})

	// Only police and fire, police ranked first, alphabetical within each.
	require.Equal(t, []string{
		"Amber Alert Desk",
		"Manila Police District",
		"Bureau of Fire Protection",
		"Quezon City Fire Station",
	}, names(got))
}

func TestApplyCategoryGroups(t *testing.T) {
	tests := []struct {
		group string
		want  []Category
	}{
		{GroupMedical, []Category{CategoryMedical}},
		{GroupGovernment, []Category{CategoryGovernment}},
		{GroupUtility, []Category{CategoryUtility}},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got := Apply(testHotlines(), Filter{Category: tt.group})
			require.NotEmpty(t, got)
			for _, h := range got {
				assert.Contains(t, tt.want, h.Category)
			}
		})
	}

	// "All Hotlines" and unknown labels place no category constraint.
	assert.Len(t, Apply(testHotlines(), Filter{Category: GroupAll}), len(testHotlines()))
	assert.Len(t, Apply(testHotlines(), Filter{Category: ""}), len(testHotlines()))
}

func TestApplyOrderingDeterministic(t *testing.T) {
	hotlines := testHotlines()
	reversed := make([]Hotline, len(hotlines))
	for i, h := range hotlines {
		reversed[len(hotlines)-1-i] = h
	}

	// Distinct (category, name) pairs sort identically from any input order.
	assert.Equal(t, names(Apply(hotlines, Filter{})), names(Apply(reversed, Filter{})))

	want := []string{
		"Amber Alert Desk",
		"Manila Police District",
		"Cebu Doctors Hospital",
		"Bureau of Fire Protection",
		"Quezon City Fire Station",
		"City Hall",
		"Meralco",
	}
	assert.Equal(t, want, names(Apply(hotlines, Filter{})))
}

func TestApplySortStability(t *testing.T) {
	// Identical category and name: relative input order is preserved.
	twins := []Hotline{
		{Name: "Rescue Line", Number: "first", Category: CategoryPolice},
		{Name: "Rescue Line", Number: "second", Category: CategoryPolice},
	}

	got := Apply(twins, Filter{})
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Number)
	assert.Equal(t, "second", got[1].Number)
}

func TestApplyHierarchicalConjunction(t *testing.T) {
	hotlines := testHotlines()
	full := Filter{Region: "ncr", Province: "metro manila", City: "manila|metro manila"}

	// Applying all three levels at once equals applying them sequentially.
	atOnce := Apply(hotlines, full)
	sequential := Apply(
		Apply(
			Apply(hotlines, Filter{Region: full.Region}),
			Filter{Province: full.Province},
		),
		Filter{City: full.City},
	)
	assert.Equal(t, names(atOnce), names(sequential))
}
