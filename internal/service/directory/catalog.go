// internal/service/directory/catalog.go

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"lifeline/internal/domain/geo"
	"lifeline/internal/domain/hotline"
)

// Source loads the two datasets the directory is built from.
type Source interface {
	LoadMetadata(ctx context.Context) (geo.Metadata, error)
	LoadHotlines(ctx context.Context) ([]hotline.Hotline, error)
}

// Catalog holds the loaded datasets and the hierarchy index built over them.
// The datasets are effectively immutable after load; a reload replaces both
// and the index wholesale, which is the only invalidation that exists.
type Catalog struct {
	source      Source
	eventBus    *nats.Conn
	eventsTopic string
	log         zerolog.Logger

	mu       sync.RWMutex
	index    *geo.HierarchyIndex
	hotlines []hotline.Hotline
	loadedAt time.Time
}

// NewCatalog creates a catalog over the given dataset source. The event bus
// may be nil.
func NewCatalog(source Source, eventBus *nats.Conn, eventsTopic string, log zerolog.Logger) *Catalog {
	if eventsTopic == "" {
		eventsTopic = "directory"
	}
	return &Catalog{source: source, eventBus: eventBus, eventsTopic: eventsTopic, log: log}
}

// Load fetches both datasets and rebuilds the index. A failure of either
// fetch leaves the previously loaded data in place and is returned to the
// caller: with no dataset there is no further fallback, so serving without
// one is not an option.
func (c *Catalog) Load(ctx context.Context) error {
	meta, err := c.source.LoadMetadata(ctx)
	if err != nil {
		return fmt.Errorf("loading metadata dataset: %w", err)
	}
	hotlines, err := c.source.LoadHotlines(ctx)
	if err != nil {
		return fmt.Errorf("loading hotline dataset: %w", err)
	}

	index := geo.NewHierarchyIndex(meta)

	c.mu.Lock()
	c.index = index
	c.hotlines = hotlines
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.log.Info().
		Int("regions", len(meta.Regions)).
		Int("hotlines", len(hotlines)).
		Msg("datasets loaded")
	c.publishReloaded(len(hotlines))
	return nil
}

// Index returns the current hierarchy index, or nil before the first load.
func (c *Catalog) Index() *geo.HierarchyIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Hotlines returns the current hotline dataset.
func (c *Catalog) Hotlines() []hotline.Hotline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hotlines
}

// LoadedAt returns when the datasets were last loaded.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *Catalog) publishReloaded(count int) {
	if c.eventBus == nil {
		return
	}
	data, err := json.Marshal(struct {
		Hotlines int       `json:"hotlines"`
		LoadedAt time.Time `json:"loadedAt"`
	}{count, time.Now()})
	if err != nil {
		return
	}
	topic := c.eventsTopic + ".dataset.reloaded"
	if err := c.eventBus.Publish(topic, data); err != nil {
		c.log.Warn().Err(err).Str("topic", topic).Msg("publishing reload event failed")
	}
}
