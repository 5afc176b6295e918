package pluto

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/savid/plutotv-proxy/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// DefaultChannelsURL is the provider's channel list endpoint.
const DefaultChannelsURL = "https://api.pluto.tv/v2/channels.json"

// CatalogState is the load state of a Catalog.
type CatalogState int

// Catalog states. Loaded is terminal; Failed allows another attempt.
const (
	CatalogUnloaded CatalogState = iota
	CatalogLoading
	CatalogLoaded
	CatalogFailed
)

func (s CatalogState) String() string {
	switch s {
	case CatalogUnloaded:
		return "unloaded"
	case CatalogLoading:
		return "loading"
	case CatalogLoaded:
		return "loaded"
	case CatalogFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CatalogConfig configures a Catalog.
type CatalogConfig struct {
	URL          string // defaults to DefaultChannelsURL
	StartNumber  int    // display number of the first channel; 0 means 1
	ColoredLogos bool
}

// Catalog is the channel list, fetched once per process on first use.
// It reflects provider state at the first successful load and is never re-fetched.
type Catalog struct {
	fetcher Fetcher
	config  CatalogConfig
	logger  logrus.FieldLogger

	// loadMu serializes load attempts; mu guards the fields below.
	loadMu   sync.Mutex
	mu       sync.RWMutex
	state    CatalogState
	channels []Channel
	byID     map[int32]int
}

// NewCatalog creates an unloaded catalog.
func NewCatalog(fetcher Fetcher, cfg CatalogConfig, logger logrus.FieldLogger) *Catalog {
	if cfg.URL == "" {
		cfg.URL = DefaultChannelsURL
	}
	if cfg.StartNumber == 0 {
		cfg.StartNumber = 1
	}

	return &Catalog{
		fetcher: fetcher,
		config:  cfg,
		logger:  logger.WithField("component", "catalog"),
	}
}

// State returns the current load state.
func (c *Catalog) State() CatalogState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// EnsureLoaded returns nil once the catalog is loaded. While it is not, every
// call performs exactly one fetch and parse attempt.
func (c *Catalog) EnsureLoaded(ctx context.Context) error {
	if c.State() == CatalogLoaded {
		return nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// another caller may have finished loading while we waited
	if c.State() == CatalogLoaded {
		return nil
	}

	c.setState(CatalogLoading)

	channels, err := c.load(ctx)
	if err != nil {
		c.setState(CatalogFailed)
		metrics.RecordCatalogLoad("failure", 0)
		c.logger.WithError(err).Error("Failed to load channel catalog")
		return err
	}

	byID := make(map[int32]int, len(channels))
	for i, ch := range channels {
		byID[ch.ID] = i
	}

	c.mu.Lock()
	c.channels = channels
	c.byID = byID
	c.state = CatalogLoaded
	c.mu.Unlock()

	metrics.RecordCatalogLoad("success", len(channels))
	c.logger.WithField("channels", len(channels)).Info("Channel catalog loaded")
	return nil
}

func (c *Catalog) load(ctx context.Context) ([]Channel, error) {
	c.logger.WithField("url", c.config.URL).Debug("Fetching channel list")

	body, err := c.fetcher.Get(ctx, c.config.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: channels: %w", ErrTransport, err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: channels: empty response", ErrTransport)
	}

	docs, err := decodeChannels(trimmed)
	if err != nil {
		return nil, err
	}
	// an empty list is an upstream outage, never a real lineup
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: channels: empty response", ErrTransport)
	}

	return buildChannels(docs, c.config.StartNumber, c.config.ColoredLogos, c.logger)
}

func (c *Catalog) setState(s CatalogState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Channels returns a copy of the channel list in display order.
func (c *Catalog) Channels(ctx context.Context) ([]Channel, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Channel, len(c.channels))
	copy(out, c.channels)
	return out, nil
}

// Count returns the number of channels.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.channels), nil
}

// Lookup returns the channel with the given derived ID.
func (c *Catalog) Lookup(ctx context.Context, id int32) (Channel, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return Channel{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %d", ErrUnknownChannel, id)
	}
	return c.channels[i], nil
}
