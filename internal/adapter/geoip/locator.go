// internal/adapter/geoip/locator.go

package geoip

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"lifeline/internal/domain/geo"
	"lifeline/internal/service/locate"
)

// Locator derives device coordinates from the caller's IP address using a
// MaxMind City database. It is the serverside stand-in for a live
// geolocation capability: callers that do not send coordinates of their own
// are located by the address they connect from.
type Locator struct {
	db *geoip2.Reader
}

// Open opens the database at path. An empty path yields a nil Locator, which
// callers treat as the capability not existing at all.
func Open(path string) (*Locator, error) {
	if path == "" {
		return nil, nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database: %w", err)
	}
	return &Locator{db: db}, nil
}

// Close releases the database.
func (l *Locator) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// ForIP binds the locator to a request's remote IP, producing the
// per-request geolocation capability the resolver consumes.
func (l *Locator) ForIP(ip net.IP) locate.Geolocator {
	return locate.GeolocatorFunc(func(ctx context.Context) (geo.Coordinates, error) {
		if l == nil || l.db == nil {
			return geo.Coordinates{}, locate.ErrUnsupported
		}
		if ip == nil || ip.IsLoopback() || ip.IsPrivate() {
			return geo.Coordinates{}, locate.ErrPositionUnavailable
		}
		if err := ctx.Err(); err != nil {
			return geo.Coordinates{}, err
		}

		record, err := l.db.City(ip)
		if err != nil {
			return geo.Coordinates{}, locate.ErrPositionUnavailable
		}
		coords := geo.Coordinates{
			Latitude:  record.Location.Latitude,
			Longitude: record.Location.Longitude,
		}
		if coords.Latitude == 0 && coords.Longitude == 0 {
			return geo.Coordinates{}, locate.ErrPositionUnavailable
		}
		return coords, nil
	})
}
