// internal/service/locate/resolver.go

package locate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"lifeline/internal/domain/geo"
)

// Geolocator is the live-geolocation capability: it produces device
// coordinates or fails with one of the reasons in errors.go.
type Geolocator interface {
	Locate(ctx context.Context) (geo.Coordinates, error)
}

// GeolocatorFunc adapts a function to the Geolocator interface.
type GeolocatorFunc func(ctx context.Context) (geo.Coordinates, error)

// Locate calls f.
func (f GeolocatorFunc) Locate(ctx context.Context) (geo.Coordinates, error) { return f(ctx) }

// StaticGeolocator returns a Geolocator that always yields the given
// coordinates, used when the caller already holds a device position.
func StaticGeolocator(c geo.Coordinates) Geolocator {
	return GeolocatorFunc(func(context.Context) (geo.Coordinates, error) { return c, nil })
}

// DeniedGeolocator returns a Geolocator that always fails with
// ErrPermissionDenied, used when the caller explicitly refused sharing.
func DeniedGeolocator() Geolocator {
	return GeolocatorFunc(func(context.Context) (geo.Coordinates, error) {
		return geo.Coordinates{}, ErrPermissionDenied
	})
}

// ReverseGeocoder resolves coordinates to a city name through the external
// reverse-geocode collaborator.
type ReverseGeocoder interface {
	CityAt(ctx context.Context, c geo.Coordinates) (string, error)
}

// LocationStore persists the last resolved location per device.
type LocationStore interface {
	Save(ctx context.Context, deviceID string, loc geo.ResolvedLocation) error
	Load(ctx context.Context, deviceID string) (geo.ResolvedLocation, bool, error)
}

// IndexProvider hands out the current hierarchy index. Going through a
// provider instead of a captured index keeps the resolver consistent with
// dataset reloads, which replace the index wholesale.
type IndexProvider interface {
	Index() *geo.HierarchyIndex
}

// Source identifies which stage of the chain produced a location.
type Source string

const (
	SourceLive      Source = "live"
	SourcePersisted Source = "persisted"
	SourceDefault   Source = "default"
)

// Status is the lifecycle of a resolution run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusDetecting Status = "detecting"
	StatusResolved  Status = "resolved"
)

// Result is the outcome of a resolution run. Location is always set when the
// dataset is non-empty; LocationError explains why live detection failed and
// may coexist with a successfully resolved fallback location.
type Result struct {
	Location      geo.ResolvedLocation `json:"location"`
	Source        Source               `json:"source"`
	LocationError string               `json:"locationError,omitempty"`
}

// ResolverConfig contains configuration for the resolver.
type ResolverConfig struct {
	// LocateTimeout bounds the live-geolocation wait. After it elapses the
	// chain advances to the fallback stages; there is no retry.
	LocateTimeout time.Duration

	// EventsTopic is the prefix of published resolution events.
	EventsTopic string
}

// Resolver runs the sequential fallback chain that produces a resolved
// location: live geolocation → reverse geocode → hierarchy match → persisted
// location → dataset default. Each stage either terminates the chain or
// yields to the next; no stage races another.
type Resolver struct {
	indexes  IndexProvider
	geocoder ReverseGeocoder
	store    LocationStore
	eventBus *nats.Conn
	config   ResolverConfig
	log      zerolog.Logger

	mu        sync.Mutex
	status    Status
	detecting bool
}

// NewResolver creates a resolver over the given index provider. The store
// and event bus may be nil; the corresponding stages then act as absent.
func NewResolver(
	indexes IndexProvider,
	geocoder ReverseGeocoder,
	store LocationStore,
	eventBus *nats.Conn,
	config ResolverConfig,
	log zerolog.Logger,
) *Resolver {
	if config.LocateTimeout <= 0 {
		config.LocateTimeout = 10 * time.Second
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "directory"
	}
	return &Resolver{
		indexes:  indexes,
		geocoder: geocoder,
		store:    store,
		eventBus: eventBus,
		config:   config,
		log:      log,
		status:   StatusIdle,
	}
}

// Status returns the current lifecycle state.
func (r *Resolver) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// IsDetecting reports whether a resolution run is in flight. It flips back to
// false exactly once, when any stage terminates the chain.
func (r *Resolver) IsDetecting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detecting
}

// Resolve runs the fallback chain for a device. The locator argument is the
// per-request live-geolocation capability; nil means the capability does not
// exist at all.
func (r *Resolver) Resolve(ctx context.Context, deviceID string, locator Geolocator) Result {
	r.mu.Lock()
	r.status = StatusDetecting
	r.detecting = true
	r.mu.Unlock()

	result := r.resolve(ctx, deviceID, locator)

	r.mu.Lock()
	r.status = StatusResolved
	r.detecting = false
	r.mu.Unlock()

	r.publishResolved(deviceID, result)
	return result
}

func (r *Resolver) resolve(ctx context.Context, deviceID string, locator Geolocator) Result {
	index := r.indexes.Index()

	// Stage 1: live geolocation with a bounded wait.
	coords, err := r.locate(ctx, locator)
	if err != nil {
		r.log.Debug().Err(err).Str("device", deviceID).Msg("live geolocation failed")
		return r.fallback(ctx, deviceID, FailureMessage(err))
	}

	// Stage 2: reverse geocode. A failure here is silent; the user still
	// gets a location from the fallback stages.
	city, err := r.geocodeCity(ctx, coords)
	if err != nil {
		r.log.Debug().Err(err).Msg("reverse geocode failed")
		return r.fallback(ctx, deviceID, "")
	}

	// Stage 3: hierarchy match of the geocoded city.
	if loc, ok := index.FindCity(city); ok {
		r.persist(ctx, deviceID, loc)
		return Result{Location: loc, Source: SourceLive}
	}

	// A valid coordinate resolved but the place is absent from the
	// dataset: go straight to the dataset default, skipping the persisted
	// fallback. Observed behavior of the directory, kept as-is.
	r.log.Debug().Str("city", city).Msg("geocoded city not in dataset")
	return r.defaultLocation(ctx, deviceID, "")
}

func (r *Resolver) locate(ctx context.Context, locator Geolocator) (geo.Coordinates, error) {
	if locator == nil {
		return geo.Coordinates{}, ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, r.config.LocateTimeout)
	defer cancel()
	coords, err := locator.Locate(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return geo.Coordinates{}, ErrTimeout
		}
		return geo.Coordinates{}, err
	}
	return coords, nil
}

func (r *Resolver) geocodeCity(ctx context.Context, coords geo.Coordinates) (string, error) {
	if r.geocoder == nil {
		return "", ErrNetworkFailure
	}
	city, err := r.geocoder.CityAt(ctx, coords)
	if err != nil {
		return "", err
	}
	return city, nil
}

// fallback is entered only when no network signal was obtained: it tries the
// persisted location, then the dataset default.
func (r *Resolver) fallback(ctx context.Context, deviceID, locationError string) Result {
	if r.store != nil {
		loc, ok, err := r.store.Load(ctx, deviceID)
		if err != nil {
			r.log.Warn().Err(err).Str("device", deviceID).Msg("persisted location read failed")
		} else if ok {
			return Result{Location: loc, Source: SourcePersisted, LocationError: locationError}
		}
	}
	return r.defaultLocation(ctx, deviceID, locationError)
}

func (r *Resolver) defaultLocation(ctx context.Context, deviceID, locationError string) Result {
	loc, ok := r.indexes.Index().DefaultLocation()
	if !ok {
		// Empty dataset; nothing can be resolved. The caller is expected
		// to have refused to serve without data, so this is a guard.
		return Result{Source: SourceDefault, LocationError: locationError}
	}
	r.persist(ctx, deviceID, loc)
	return Result{Location: loc, Source: SourceDefault, LocationError: locationError}
}

func (r *Resolver) persist(ctx context.Context, deviceID string, loc geo.ResolvedLocation) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, deviceID, loc); err != nil {
		r.log.Warn().Err(err).Str("device", deviceID).Msg("persisting location failed")
	}
}

// publishResolved publishes a resolution event to the event bus.
func (r *Resolver) publishResolved(deviceID string, result Result) {
	if r.eventBus == nil {
		return
	}
	data, err := json.Marshal(struct {
		DeviceID string               `json:"deviceId"`
		Location geo.ResolvedLocation `json:"location"`
		Source   Source               `json:"source"`
	}{deviceID, result.Location, result.Source})
	if err != nil {
		return
	}
	topic := r.config.EventsTopic + ".location.resolved"
	if err := r.eventBus.Publish(topic, data); err != nil {
		r.log.Warn().Err(err).Str("topic", topic).Msg("publishing resolution event failed")
	}
}
