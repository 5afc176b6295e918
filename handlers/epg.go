package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/savid/plutotv-proxy/config"
	"github.com/savid/plutotv-proxy/pkg/epg"
	"github.com/sirupsen/logrus"
)

// EPGHandler handles HTTP requests for the XMLTV program guide.
type EPGHandler struct {
	backend Backend
	cfg     *config.Config
	now     func() time.Time
	logger  logrus.FieldLogger
}

// NewEPGHandler creates a new EPG handler instance.
func NewEPGHandler(backend Backend, cfg *config.Config, logger logrus.FieldLogger) *EPGHandler {
	return &EPGHandler{
		backend: backend,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// ServeHTTP serves the guide for [now, now+window) of every channel. Any
// channel failing with a server error fails the whole document.
func (h *EPGHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channels, err := h.backend.Channels(ctx, false)
	if err != nil {
		writeError(w, h.logger, err, "EPG data")
		return
	}

	start := h.now()
	end := start.Add(h.cfg.GuideWindow)

	guides := make([]epg.ChannelGuide, 0, len(channels))
	for _, ch := range channels {
		entries, err := h.backend.EPG(ctx, ch.ID, start, end)
		if err != nil {
			writeError(w, h.logger.WithField("channel", ch.Name), err, "EPG data")
			return
		}
		guides = append(guides, epg.ChannelGuide{Channel: ch, Entries: entries})
	}

	var buf bytes.Buffer
	if err := epg.Encode(&buf, epg.Build(guides)); err != nil {
		h.logger.WithError(err).Error("Failed to encode EPG")
		http.Error(w, "Failed to encode XML", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
