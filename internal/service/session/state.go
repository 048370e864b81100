// internal/service/session/state.go

package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"lifeline/internal/domain/geo"
	"lifeline/internal/domain/hotline"
)

// Store persists the location part of the filter state.
type Store interface {
	Save(ctx context.Context, deviceID string, loc geo.ResolvedLocation) error
}

// State is the directory filter a device currently has applied. It is a
// single explicit struct mutated only through the named transitions below,
// each of which encodes the cascade rule: the filter levels form a hierarchy,
// and changing a level resets every level below it.
type State struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	City     string `json:"city"`
	Category string `json:"category"`
}

// FromLocation seeds a filter state from a resolved location, before any user
// overrides.
func FromLocation(loc geo.ResolvedLocation) State {
	return State{
		Region:   loc.Region,
		Province: loc.Province,
		City:     loc.City,
		Category: hotline.GroupAll,
	}
}

// Location returns the location part of the state.
func (s State) Location() geo.ResolvedLocation {
	return geo.ResolvedLocation{Region: s.Region, Province: s.Province, City: s.City}
}

// Filter converts the state into a hotline filter.
func (s State) Filter() hotline.Filter {
	return hotline.Filter{Region: s.Region, Province: s.Province, City: s.City, Category: s.Category}
}

// Action names a filter transition.
type Action string

const (
	ActionSelectRegion   Action = "select_region"
	ActionSelectProvince Action = "select_province"
	ActionSelectCity     Action = "select_city"
	ActionSelectCategory Action = "select_category"
	ActionClearRegion    Action = "clear_region"
	ActionClearProvince  Action = "clear_province"
	ActionClearCity      Action = "clear_city"
)

// IndexProvider hands out the current hierarchy index.
type IndexProvider interface {
	Index() *geo.HierarchyIndex
}

// Manager applies filter transitions, persisting every change that touches
// location (category changes are not persisted).
type Manager struct {
	indexes     IndexProvider
	store       Store
	eventBus    *nats.Conn
	eventsTopic string
	log         zerolog.Logger
}

// NewManager creates a filter-state manager. The store and event bus may be
// nil.
func NewManager(indexes IndexProvider, store Store, eventBus *nats.Conn, eventsTopic string, log zerolog.Logger) *Manager {
	if eventsTopic == "" {
		eventsTopic = "directory"
	}
	return &Manager{indexes: indexes, store: store, eventBus: eventBus, eventsTopic: eventsTopic, log: log}
}

// Apply dispatches an action by name. Unknown actions are rejected.
func (m *Manager) Apply(ctx context.Context, deviceID string, s State, action Action, value string) (State, error) {
	switch action {
	case ActionSelectRegion:
		return m.SelectRegion(ctx, deviceID, s, value), nil
	case ActionSelectProvince:
		return m.SelectProvince(ctx, deviceID, s, value), nil
	case ActionSelectCity:
		return m.SelectCity(ctx, deviceID, s, value), nil
	case ActionSelectCategory:
		return m.SelectCategory(s, value), nil
	case ActionClearRegion:
		return m.ClearRegion(ctx, deviceID, s), nil
	case ActionClearProvince:
		return m.ClearProvince(ctx, deviceID, s), nil
	case ActionClearCity:
		return m.ClearCity(ctx, deviceID, s), nil
	}
	return s, fmt.Errorf("unknown filter action %q", action)
}

// SelectRegion sets the region and clears province and city.
func (m *Manager) SelectRegion(ctx context.Context, deviceID string, s State, regionKey string) State {
	s.Region = geo.Normalize(regionKey)
	s.Province = ""
	s.City = ""
	return m.saved(ctx, deviceID, s)
}

// SelectProvince sets the province, clears the city, and derives the region
// from the province's actual parent, whether or not the caller had one set.
func (m *Manager) SelectProvince(ctx context.Context, deviceID string, s State, provinceKey string) State {
	s.Province = geo.Normalize(provinceKey)
	s.City = ""
	if region, ok := m.indexes.Index().ProvinceToRegion(s.Province); ok {
		s.Region = region
	}
	return m.saved(ctx, deviceID, s)
}

// SelectCity sets the city and derives province and region from the composite
// key. A legacy bare city name leaves the upper levels untouched.
func (m *Manager) SelectCity(ctx context.Context, deviceID string, s State, cityKey string) State {
	city, province, composite := geo.SplitCityKey(cityKey)
	if composite {
		s.City = city + geo.KeySeparator + province
	} else {
		s.City = city
	}
	if loc, ok := m.indexes.Index().CityToLocation(s.City); ok {
		s.Province = loc.Province
		s.Region = loc.Region
	}
	return m.saved(ctx, deviceID, s)
}

// SelectCategory sets the category group. Category is not part of the
// persisted location, so nothing is written.
func (m *Manager) SelectCategory(s State, group string) State {
	s.Category = group
	return s
}

// ClearRegion clears the region and everything below it.
func (m *Manager) ClearRegion(ctx context.Context, deviceID string, s State) State {
	s.Region = ""
	s.Province = ""
	s.City = ""
	return m.saved(ctx, deviceID, s)
}

// ClearProvince clears the province and the city.
func (m *Manager) ClearProvince(ctx context.Context, deviceID string, s State) State {
	s.Province = ""
	s.City = ""
	return m.saved(ctx, deviceID, s)
}

// ClearCity clears only the city.
func (m *Manager) ClearCity(ctx context.Context, deviceID string, s State) State {
	s.City = ""
	return m.saved(ctx, deviceID, s)
}

// saved writes the location part of the state and announces the change.
// Writes are idempotent overwrites of a single key; a concurrent resolver
// write simply loses to the later one.
func (m *Manager) saved(ctx context.Context, deviceID string, s State) State {
	if m.store != nil {
		if err := m.store.Save(ctx, deviceID, s.Location()); err != nil {
			m.log.Warn().Err(err).Str("device", deviceID).Msg("persisting filter location failed")
		}
	}
	m.publishChanged(deviceID, s)
	return s
}

func (m *Manager) publishChanged(deviceID string, s State) {
	if m.eventBus == nil {
		return
	}
	data, err := json.Marshal(struct {
		DeviceID string `json:"deviceId"`
		State    State  `json:"state"`
	}{deviceID, s})
	if err != nil {
		return
	}
	topic := m.eventsTopic + ".filter.changed"
	if err := m.eventBus.Publish(topic, data); err != nil {
		m.log.Warn().Err(err).Str("topic", topic).Msg("publishing filter event failed")
	}
}
