// Package addon implements the PVR host contract on top of the pluto.tv
// catalog and guide: channel listing, stream properties and program guide.
package addon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/savid/plutotv-proxy/pkg/pluto"
	"github.com/sirupsen/logrus"
)

// BackendName is reported to the host.
const BackendName = "pluto.tv PVR add-on"

// Version is the backend version, set at build time with -ldflags.
var Version = "dev"

// ChannelSource is the channel catalog.
type ChannelSource interface {
	Count(ctx context.Context) (int, error)
	Channels(ctx context.Context) ([]pluto.Channel, error)
	Lookup(ctx context.Context, id int32) (pluto.Channel, error)
}

// GuideSource is the program guide.
type GuideSource interface {
	Query(ctx context.Context, channelID int32, start, end time.Time) ([]pluto.GuideEntry, error)
}

// Identity supplies the device and session identifiers put into stream URLs.
type Identity interface {
	DeviceID(ctx context.Context) (string, error)
	SessionID(ctx context.Context) (string, error)
}

// Options configures an Addon.
type Options struct {
	WorkaroundBrokenStreams bool
	UserAgent               string
}

// Capabilities lists what the backend supports.
type Capabilities struct {
	SupportsEPG   bool `json:"supports_epg"`
	SupportsTV    bool `json:"supports_tv"`
	SupportsRadio bool `json:"supports_radio"`
}

// Addon answers host requests.
type Addon struct {
	channels ChannelSource
	guide    GuideSource
	identity Identity
	options  Options
	logger   logrus.FieldLogger
}

// New creates an Addon.
func New(channels ChannelSource, guide GuideSource, identity Identity, opts Options, logger logrus.FieldLogger) *Addon {
	return &Addon{
		channels: channels,
		guide:    guide,
		identity: identity,
		options:  opts,
		logger:   logger.WithField("component", "addon"),
	}
}

// Capabilities reports EPG and TV support.
func (a *Addon) Capabilities() Capabilities {
	return Capabilities{SupportsEPG: true, SupportsTV: true}
}

// BackendName returns the backend name.
func (a *Addon) BackendName() string {
	return BackendName
}

// BackendVersion returns the backend version.
func (a *Addon) BackendVersion() string {
	return Version
}

// SettingChanged is called when the host changes a setting. Every setting
// takes effect on the next start.
func (a *Addon) SettingChanged(name string) error {
	a.logger.WithField("setting", name).Info("Setting changed, restart required")
	return ErrNeedRestart
}

// ChannelCount returns the number of channels.
func (a *Addon) ChannelCount(ctx context.Context) (int, error) {
	n, err := a.channels.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("channel count: %w", err)
	}
	return n, nil
}

// Channels returns every TV channel in display order. There are no radio
// channels; a radio request returns an empty list without loading anything.
func (a *Addon) Channels(ctx context.Context, radio bool) ([]pluto.Channel, error) {
	if radio {
		return []pluto.Channel{}, nil
	}

	channels, err := a.channels.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("channels: %w", err)
	}
	return channels, nil
}

// StreamURL returns the playable URL of a channel. An empty string means the
// channel is unknown or has no stream.
func (a *Addon) StreamURL(ctx context.Context, channelID int32) (string, error) {
	ch, err := a.channels.Lookup(ctx, channelID)
	if errors.Is(err, pluto.ErrUnknownChannel) {
		a.logger.WithField("channel", channelID).Debug("Stream requested for unknown channel")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stream url: %w", err)
	}

	if !ch.HasStream() {
		return "", nil
	}

	deviceID, err := a.identity.DeviceID(ctx)
	if err != nil {
		return "", fmt.Errorf("device id: %w", err)
	}
	sessionID, err := a.identity.SessionID(ctx)
	if err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}

	return pluto.ComposeStreamURL(ch.StreamTemplate, deviceID, sessionID), nil
}

// StreamProperties returns the properties the host's player needs for a
// channel. An unknown channel or a channel without a stream fails with ErrFailed.
func (a *Addon) StreamProperties(ctx context.Context, channelID int32) ([]StreamProperty, error) {
	url, err := a.StreamURL(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("%w: no stream for channel %d", ErrFailed, channelID)
	}

	a.logger.WithFields(logrus.Fields{
		"channel": channelID,
		"url":     url,
	}).Debug("Playing stream")

	return streamProperties(url, a.options), nil
}

// EPG returns the guide entries of a channel for [start, end). A channel
// without guide data yields an empty list; an unknown channel fails with
// ErrInvalidParameters.
func (a *Addon) EPG(ctx context.Context, channelID int32, start, end time.Time) ([]pluto.GuideEntry, error) {
	entries, err := a.guide.Query(ctx, channelID, start, end)
	if err != nil {
		if errors.Is(err, pluto.ErrUnknownChannel) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}
		if !isUpstreamFault(err) {
			a.logger.WithError(err).Warn("Unclassified guide error")
		}
		return nil, fmt.Errorf("epg: %w", err)
	}
	return entries, nil
}

// ChannelGroupsAmount is not supported.
func (a *Addon) ChannelGroupsAmount(context.Context) (int, error) {
	return 0, ErrNotImplemented
}

// ChannelGroups is not supported.
func (a *Addon) ChannelGroups(context.Context, bool) ([]string, error) {
	return nil, ErrNotImplemented
}

// ChannelGroupMembers is not supported.
func (a *Addon) ChannelGroupMembers(context.Context, string) ([]int32, error) {
	return nil, ErrNotImplemented
}
