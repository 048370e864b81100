// internal/domain/geo/index_test.go

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() Metadata {
	return Metadata{
		Regions: []Region{
			{
				Name: "NCR",
				Provinces: []Province{
					{Name: "Metro Manila", Cities: []string{"Manila", "Quezon City", "Makati"}},
				},
			},
			{
				Name: "Central Visayas",
				Provinces: []Province{
					{Name: "Metro Cebu", Cities: []string{"Cebu City", "Manila"}},
					{Name: "Bohol", Cities: []string{"Tagbilaran"}},
				},
			},
		},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower case kept", "manila", "manila"},
		{"upper case folded", "MANILA", "manila"},
		{"whitespace trimmed", "  Metro Manila \t", "metro manila"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			// Normalizing is idempotent.
			assert.Equal(t, got, Normalize(got))
		})
	}
}

func TestCityKey(t *testing.T) {
	assert.Equal(t, "manila|metro manila", CityKey(" Manila ", "METRO MANILA"))

	city, province, composite := SplitCityKey("manila|metro manila")
	assert.True(t, composite)
	assert.Equal(t, "manila", city)
	assert.Equal(t, "metro manila", province)

	city, province, composite = SplitCityKey("manila")
	assert.False(t, composite)
	assert.Equal(t, "manila", city)
	assert.Empty(t, province)
}

func TestListRegions(t *testing.T) {
	ix := NewHierarchyIndex(testMetadata())

	regions := ix.ListRegions()
	require.Len(t, regions, 2)
	assert.Equal(t, RegionEntry{Name: "NCR", Key: "ncr"}, regions[0])
	assert.Equal(t, RegionEntry{Name: "Central Visayas", Key: "central visayas"}, regions[1])
}

func TestListProvinces(t *testing.T) {
	ix := NewHierarchyIndex(testMetadata())

	all := ix.ListProvinces("")
	require.Len(t, all, 3)
	assert.Equal(t, "metro manila", all[0].Key)

	scoped := ix.ListProvinces("central visayas")
	require.Len(t, scoped, 2)
	assert.Equal(t, "metro cebu", scoped[0].Key)
	assert.Equal(t, "bohol", scoped[1].Key)

	assert.Empty(t, ix.ListProvinces("nowhere"))
}

func TestListCities(t *testing.T) {
	ix := NewHierarchyIndex(testMetadata())

	all := ix.ListCities("", "")
	require.Len(t, all, 6)

	byProvince := ix.ListCities("metro cebu", "")
	require.Len(t, byProvince, 2)
	assert.Equal(t, "cebu city|metro cebu", byProvince[0].Key)
	assert.Equal(t, "Cebu City (Metro Cebu)", byProvince[0].DisplayName)

	byRegion := ix.ListCities("", "ncr")
	require.Len(t, byRegion, 3)
	for _, c := range byRegion {
		assert.Equal(t, "ncr", c.Region)
	}

	// Province scope wins over region scope.
	both := ix.ListCities("bohol", "ncr")
	require.Len(t, both, 1)
	assert.Equal(t, "tagbilaran|bohol", both[0].Key)
}

func TestCityToLocationRoundTrip(t *testing.T) {
	ix := NewHierarchyIndex(testMetadata())

	// Every key the index hands out must resolve back to the entry that
	// produced it.
	for _, entry := range ix.ListCities("", "") {
		loc, ok := ix.CityToLocation(entry.Key)
		require.True(t, ok, "key %q must resolve", entry.Key)
		assert.Equal(t, entry.Region, loc.Region)
		assert.Equal(t, entry.Province, loc.Province)
	}

	_, ok := ix.CityToLocation("atlantis|poseidonia")
	assert.False(t, ok)
}

func TestProvinceToRegion(t *testing.T) {
	ix := NewHierarchyIndex(testMetadata())

	region, ok := ix.ProvinceToRegion("metro cebu")
	require.True(t, ok)
	assert.Equal(t, "central visayas", region)

	_, ok = ix.ProvinceToRegion("poseidonia")
	assert.False(t, ok)
}

func TestDuplicateProvinceResolvesToFirstRegion(t *testing.T) {
	meta := testMetadata()
	// A malformed dataset repeats "Metro Manila" under a second region.
	meta.Regions = append(meta.Regions, Region{
		Name: "Shadow Region",
		Provinces: []Province{
			{Name: "metro manila", Cities: []string{"Manila"}},
		},
	})
	ix := NewHierarchyIndex(meta)

	region, ok := ix.ProvinceToRegion("metro manila")
	require.True(t, ok)
	assert.Equal(t, "ncr", region)

	loc, ok := ix.CityToLocation("manila|metro manila")
	require.True(t, ok)
	assert.Equal(t, "ncr", loc.Region)
}

func TestFindCity(t *testing.T) {
	ix := NewHierarchyIndex(testMetadata())

	loc, ok := ix.FindCity("QUEZON CITY")
	require.True(t, ok)
	assert.Equal(t, ResolvedLocation{
		Region:   "ncr",
		Province: "metro manila",
		City:     "quezon city|metro manila",
	}, loc)

	// "Manila" exists in two provinces; the first in dataset order wins.
	loc, ok = ix.FindCity("  manila ")
	require.True(t, ok)
	assert.Equal(t, "metro manila", loc.Province)

	_, ok = ix.FindCity("Atlantis")
	assert.False(t, ok)
}

func TestDefaultLocation(t *testing.T) {
	ix := NewHierarchyIndex(testMetadata())

	loc, ok := ix.DefaultLocation()
	require.True(t, ok)
	assert.Equal(t, ResolvedLocation{
		Region:   "ncr",
		Province: "metro manila",
		City:     "manila|metro manila",
	}, loc)

	empty := NewHierarchyIndex(Metadata{})
	_, ok = empty.DefaultLocation()
	assert.False(t, ok)
}
