// internal/service/session/state_test.go

package session

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline/internal/domain/geo"
	"lifeline/internal/domain/hotline"
)

type staticIndexes struct {
	index *geo.HierarchyIndex
}

func (s staticIndexes) Index() *geo.HierarchyIndex { return s.index }

type countingStore struct {
	saves []geo.ResolvedLocation
}

func (s *countingStore) Save(_ context.Context, _ string, loc geo.ResolvedLocation) error {
	s.saves = append(s.saves, loc)
	return nil
}

func testManager(store Store) *Manager {
	index := geo.NewHierarchyIndex(geo.Metadata{
		Regions: []geo.Region{
			{
				Name: "NCR",
				Provinces: []geo.Province{
					{Name: "Metro Manila", Cities: []string{"Manila", "Quezon City"}},
				},
			},
			{
				Name: "Central Visayas",
				Provinces: []geo.Province{
					{Name: "Metro Cebu", Cities: []string{"Cebu City"}},
				},
			},
		},
	})
	return NewManager(staticIndexes{index}, store, nil, "", zerolog.Nop())
}

func TestFromLocation(t *testing.T) {
	s := FromLocation(geo.ResolvedLocation{
		Region:   "ncr",
		Province: "metro manila",
		City:     "manila|metro manila",
	})
	assert.Equal(t, "ncr", s.Region)
	assert.Equal(t, "metro manila", s.Province)
	assert.Equal(t, "manila|metro manila", s.City)
	assert.Equal(t, hotline.GroupAll, s.Category)
}

func TestSelectRegionClearsBelow(t *testing.T) {
	m := testManager(nil)
	s := State{Region: "ncr", Province: "metro manila", City: "manila|metro manila", Category: hotline.GroupEmergency}

	s = m.SelectRegion(context.Background(), "device-1", s, "Central Visayas")

	assert.Equal(t, "central visayas", s.Region)
	assert.Empty(t, s.Province)
	assert.Empty(t, s.City)
	assert.Equal(t, hotline.GroupEmergency, s.Category, "category survives location changes")
}

func TestSelectProvinceDerivesRegion(t *testing.T) {
	m := testManager(nil)
	s := State{Region: "ncr", City: "manila|metro manila"}

	s = m.SelectProvince(context.Background(), "device-1", s, "Metro Cebu")

	assert.Equal(t, "central visayas", s.Region, "region follows the province's actual parent")
	assert.Equal(t, "metro cebu", s.Province)
	assert.Empty(t, s.City)
}

func TestSelectCityDerivesAncestors(t *testing.T) {
	m := testManager(nil)
	s := State{}

	s = m.SelectCity(context.Background(), "device-1", s, "Quezon City|Metro Manila")

	assert.Equal(t, "quezon city|metro manila", s.City)
	assert.Equal(t, "metro manila", s.Province)
	assert.Equal(t, "ncr", s.Region)
}

func TestSelectCityLegacyBareName(t *testing.T) {
	m := testManager(nil)
	s := State{Region: "central visayas", Province: "metro cebu"}

	s = m.SelectCity(context.Background(), "device-1", s, "manila")

	assert.Equal(t, "manila", s.City)
	// A bare name carries no province context, so the upper levels stay.
	assert.Equal(t, "metro cebu", s.Province)
	assert.Equal(t, "central visayas", s.Region)
}

func TestClearCascade(t *testing.T) {
	m := testManager(nil)
	full := State{Region: "ncr", Province: "metro manila", City: "manila|metro manila", Category: hotline.GroupMedical}

	s := m.ClearCity(context.Background(), "device-1", full)
	assert.Equal(t, State{Region: "ncr", Province: "metro manila", Category: hotline.GroupMedical}, s)

	s = m.ClearProvince(context.Background(), "device-1", full)
	assert.Equal(t, State{Region: "ncr", Category: hotline.GroupMedical}, s)

	s = m.ClearRegion(context.Background(), "device-1", full)
	assert.Equal(t, State{Category: hotline.GroupMedical}, s)
}

func TestCategoryChangeIsNotPersisted(t *testing.T) {
	store := &countingStore{}
	m := testManager(store)
	s := State{Region: "ncr"}

	s = m.SelectCategory(s, hotline.GroupEmergency)
	assert.Equal(t, hotline.GroupEmergency, s.Category)
	assert.Empty(t, store.saves)

	s = m.SelectProvince(context.Background(), "device-1", s, "Metro Manila")
	require.Len(t, store.saves, 1)
	assert.Equal(t, geo.ResolvedLocation{Region: "ncr", Province: "metro manila"}, store.saves[0])
}

func TestApplyDispatch(t *testing.T) {
	m := testManager(nil)

	s, err := m.Apply(context.Background(), "device-1", State{}, ActionSelectRegion, "NCR")
	require.NoError(t, err)
	assert.Equal(t, "ncr", s.Region)

	s, err = m.Apply(context.Background(), "device-1", s, ActionSelectCategory, hotline.GroupEmergency)
	require.NoError(t, err)
	assert.Equal(t, hotline.GroupEmergency, s.Category)

	_, err = m.Apply(context.Background(), "device-1", s, Action("teleport"), "")
	assert.Error(t, err)
}

func TestStateFilter(t *testing.T) {
	s := State{Region: "ncr", Province: "metro manila", City: "manila|metro manila", Category: hotline.GroupEmergency}
	f := s.Filter()
	assert.Equal(t, hotline.Filter{
		Region:   "ncr",
		Province: "metro manila",
		City:     "manila|metro manila",
		Category: hotline.GroupEmergency,
	}, f)
}
