package pluto

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/savid/plutotv-proxy/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// DefaultGuideURL is the provider's multi-channel schedule endpoint.
const DefaultGuideURL = "http://api.pluto.tv/v2/channels"

// guideLookback is how far before "now" a schedule request starts when the
// caller asks for a window that is already running. The provider returns
// nothing for windows that reach too far into the past.
const guideLookback = 2 * time.Hour

// ChannelResolver resolves a derived channel ID to its catalog record.
type ChannelResolver interface {
	Lookup(ctx context.Context, id int32) (Channel, error)
}

// GuideConfig configures a Guide.
type GuideConfig struct {
	URL string           // defaults to DefaultGuideURL
	Now func() time.Time // defaults to time.Now
}

// Guide serves program guide entries from a cached schedule document. The
// cache covers one nominal window and is replaced whenever a request falls
// outside it.
type Guide struct {
	fetcher  Fetcher
	channels ChannelResolver
	url      string
	now      func() time.Time
	logger   logrus.FieldLogger

	mu    sync.Mutex
	cache *guideCache
}

type guideCache struct {
	schedule *schedule
	start    time.Time
	end      time.Time
}

func (c *guideCache) covers(start, end time.Time) bool {
	return c != nil && c.schedule != nil && !start.Before(c.start) && !end.After(c.end)
}

// NewGuide creates a guide with an empty cache.
func NewGuide(fetcher Fetcher, channels ChannelResolver, cfg GuideConfig, logger logrus.FieldLogger) *Guide {
	if cfg.URL == "" {
		cfg.URL = DefaultGuideURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Guide{
		fetcher:  fetcher,
		channels: channels,
		url:      cfg.URL,
		now:      cfg.Now,
		logger:   logger.WithField("component", "guide"),
	}
}

// Query returns the guide entries of a channel for [start, end) in source order.
// A degenerate window yields an empty result. A channel without schedule data
// also yields an empty result; an unknown channel fails with ErrUnknownChannel.
func (g *Guide) Query(ctx context.Context, channelID int32, start, end time.Time) ([]GuideEntry, error) {
	if !start.Before(end) {
		return []GuideEntry{}, nil
	}

	ch, err := g.channels.Lookup(ctx, channelID)
	if err != nil {
		return nil, err
	}

	sched, err := g.scheduleFor(ctx, start, end)
	if err != nil {
		return nil, err
	}

	doc, ok := sched.lookup(ch.ProviderID)
	if !ok {
		g.logger.WithField("channel", ch.Name).Debug("No schedule data for channel")
		return []GuideEntry{}, nil
	}

	entries := make([]GuideEntry, 0, len(doc.Timelines))
	for _, item := range doc.Timelines {
		entry, err := guideEntry(ch.ID, item)
		if err != nil {
			metrics.RecordGuideEntrySkipped()
			g.logger.WithFields(logrus.Fields{
				"channel":  ch.Name,
				"timeline": item.ID.value,
			}).WithError(err).Warn("Skipping guide entry")
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Prefetch makes sure the cached schedule covers [start, end).
func (g *Guide) Prefetch(ctx context.Context, start, end time.Time) error {
	if !start.Before(end) {
		return nil
	}

	_, err := g.scheduleFor(ctx, start, end)
	return err
}

// Window returns the nominal window of the cached schedule.
func (g *Guide) Window() (start, end time.Time, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cache == nil {
		return time.Time{}, time.Time{}, false
	}
	return g.cache.start, g.cache.end, true
}

// scheduleFor returns a schedule covering [start, end), fetching and replacing
// the cache when needed. The lock is held across the fetch so concurrent
// callers wait for one download instead of starting their own.
func (g *Guide) scheduleFor(ctx context.Context, start, end time.Time) (*schedule, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cache.covers(start, end) {
		metrics.RecordGuideCache(true)
		return g.cache.schedule, nil
	}
	metrics.RecordGuideCache(false)

	from := start
	if now := g.now(); !start.After(now) {
		from = now.Add(-guideLookback)
	}

	url := g.scheduleURL(from, end)
	g.logger.WithFields(logrus.Fields{
		"url":   url,
		"start": start,
		"end":   end,
	}).Debug("Fetching schedule")

	body, err := g.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule: %w", ErrTransport, err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrUpstreamUnavailable
	}

	sched, err := decodeSchedule(body)
	if err != nil {
		return nil, err
	}

	// the nominal window is the caller's, not the widened fetch range
	g.cache = &guideCache{
		schedule: sched,
		start:    start,
		end:      end,
	}

	g.logger.WithFields(logrus.Fields{
		"channels": len(sched.channels),
		"start":    start,
		"end":      end,
	}).Info("Schedule cached")

	return sched, nil
}

func (g *Guide) scheduleURL(start, end time.Time) string {
	sep := "?"
	if strings.Contains(g.url, "?") {
		sep = "&"
	}
	return g.url + sep + "start=" + FormatTimestamp(start) + "&stop=" + FormatTimestamp(end)
}
