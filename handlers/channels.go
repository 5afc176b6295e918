package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/savid/plutotv-proxy/config"
	"github.com/savid/plutotv-proxy/pkg/addon"
	"github.com/savid/plutotv-proxy/pkg/pluto"
	"github.com/sirupsen/logrus"
)

// ChannelResponse is one channel of the JSON channel list.
type ChannelResponse struct {
	pluto.Channel
	HasStream bool `json:"has_stream"`
}

// BackendInfo describes the backend at /api/backend.
type BackendInfo struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Capabilities addon.Capabilities `json:"capabilities"`
}

// APIHandler serves the JSON API.
type APIHandler struct {
	backend Backend
	cfg     *config.Config
	now     func() time.Time
	logger  logrus.FieldLogger
}

// NewAPIHandler creates a new JSON API handler.
func NewAPIHandler(backend Backend, cfg *config.Config, logger logrus.FieldLogger) *APIHandler {
	return &APIHandler{
		backend: backend,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// Channels serves the channel list.
func (h *APIHandler) Channels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.backend.Channels(r.Context(), false)
	if err != nil {
		writeError(w, h.logger, err, "Channel data")
		return
	}

	resp := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		resp = append(resp, ChannelResponse{Channel: ch, HasStream: ch.HasStream()})
	}

	writeJSON(w, resp)
}

// ChannelEPG serves the guide entries of one channel. The window defaults to
// [now, now+guide window); start and end accept RFC 3339 times.
func (h *APIHandler) ChannelEPG(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	start := h.now()
	end := start.Add(h.cfg.GuideWindow)

	query := r.URL.Query()
	if v := query.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid start time", http.StatusBadRequest)
			return
		}
		start = t
	}
	if v := query.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "Invalid end time", http.StatusBadRequest)
			return
		}
		end = t
	}

	entries, err := h.backend.EPG(r.Context(), id, start, end)
	if err != nil {
		writeError(w, h.logger.WithField("channel", id), err, "EPG data")
		return
	}

	writeJSON(w, entries)
}

// Groups serves the channel groups, which the backend does not support.
func (h *APIHandler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.backend.ChannelGroups(r.Context(), false)
	if err != nil {
		writeError(w, h.logger, err, "Channel groups")
		return
	}

	writeJSON(w, groups)
}

// Backend serves the backend name, version and capabilities.
func (h *APIHandler) Backend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, BackendInfo{
		Name:         h.backend.BackendName(),
		Version:      h.backend.BackendVersion(),
		Capabilities: h.backend.Capabilities(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
		return
	}
}
