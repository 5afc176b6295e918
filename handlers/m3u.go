package handlers

import (
	"net/http"

	"github.com/savid/plutotv-proxy/config"
	"github.com/savid/plutotv-proxy/pkg/m3u"
	"github.com/sirupsen/logrus"
)

// M3UHandler handles HTTP requests for M3U playlists.
type M3UHandler struct {
	backend Backend
	cfg     *config.Config
	logger  logrus.FieldLogger
}

// NewM3UHandler creates a new M3U handler instance.
func NewM3UHandler(backend Backend, cfg *config.Config, logger logrus.FieldLogger) *M3UHandler {
	return &M3UHandler{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
	}
}

func (h *M3UHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channels, err := h.backend.Channels(r.Context(), false)
	if err != nil {
		writeError(w, h.logger, err, "M3U data")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	_, _ = w.Write(m3u.Build(channels, h.cfg.BaseURL))
}
