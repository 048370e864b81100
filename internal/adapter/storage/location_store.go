// internal/adapter/storage/location_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lifeline/internal/domain/geo"
)

// locationKey is the single logical key the last resolved location lives
// under, namespaced per device. The value has no expiry; it survives until
// overwritten or the store is cleared.
const locationKey = "lastSavedLocation"

// LocationStore persists the last resolved location in Redis. Saves are full
// overwrites of one key; callers merge before saving, so last write wins.
type LocationStore struct {
	rdb *redis.Client
}

// NewLocationStore creates a location store backed by the given client.
func NewLocationStore(rdb *redis.Client) *LocationStore {
	return &LocationStore{rdb: rdb}
}

func deviceKey(deviceID string) string {
	if deviceID == "" {
		return locationKey
	}
	return locationKey + ":" + deviceID
}

// Save writes the structured form of the location, replacing whatever shape
// was stored before.
func (s *LocationStore) Save(ctx context.Context, deviceID string, loc geo.ResolvedLocation) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encoding location: %w", err)
	}
	if err := s.rdb.Set(ctx, deviceKey(deviceID), payload, 0).Err(); err != nil {
		return fmt.Errorf("writing location: %w", err)
	}
	return nil
}

// Load reads the stored location. Both historical payload shapes are
// accepted: the structured JSON object, and the legacy bare city string.
func (s *LocationStore) Load(ctx context.Context, deviceID string) (geo.ResolvedLocation, bool, error) {
	payload, err := s.rdb.Get(ctx, deviceKey(deviceID)).Bytes()
	if err == redis.Nil {
		return geo.ResolvedLocation{}, false, nil
	}
	if err != nil {
		return geo.ResolvedLocation{}, false, fmt.Errorf("reading location: %w", err)
	}
	return DecodeLocation(payload), true, nil
}

// DecodeLocation interprets a stored payload. A payload that does not parse
// as the structured object is downgraded to the legacy shape: the whole
// string is a normalized city key with no region or province. Never fails.
func DecodeLocation(payload []byte) geo.ResolvedLocation {
	var loc geo.ResolvedLocation
	if err := json.Unmarshal(payload, &loc); err == nil {
		return geo.ResolvedLocation{
			Region:   geo.Normalize(loc.Region),
			Province: geo.Normalize(loc.Province),
			City:     geo.Normalize(loc.City),
		}
	}
	// Legacy values may also be JSON-encoded strings from older clients.
	var legacy string
	if err := json.Unmarshal(payload, &legacy); err == nil {
		return geo.ResolvedLocation{City: geo.Normalize(legacy)}
	}
	return geo.ResolvedLocation{City: geo.Normalize(string(payload))}
}
