package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// StreamHandler sends players to a channel's stitched stream. Media is never
// proxied; the response is a redirect.
type StreamHandler struct {
	backend Backend
	logger  logrus.FieldLogger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(backend Backend, logger logrus.FieldLogger) *StreamHandler {
	return &StreamHandler{
		backend: backend,
		logger:  logger,
	}
}

// ServeHTTP redirects to the composed stream URL.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	url, err := h.backend.StreamURL(r.Context(), id)
	if err != nil {
		writeError(w, h.logger.WithField("channel", id), err, "Stream")
		return
	}
	if url == "" {
		http.Error(w, "Stream not available", http.StatusNotFound)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"channel": id,
		"url":     url,
	}).Debug("Redirecting to stream")

	http.Redirect(w, r, url, http.StatusFound)
}

// Properties serves the player properties of a channel's stream.
func (h *StreamHandler) Properties(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	props, err := h.backend.StreamProperties(r.Context(), id)
	if err != nil {
		writeError(w, h.logger.WithField("channel", id), err, "Stream")
		return
	}

	writeJSON(w, props)
}
