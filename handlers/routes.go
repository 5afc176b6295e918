package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/savid/plutotv-proxy/config"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every endpoint of the proxy.
func NewRouter(backend Backend, cfg *config.Config, logger logrus.FieldLogger) *mux.Router {
	api := NewAPIHandler(backend, cfg, logger)
	stream := NewStreamHandler(backend, logger)

	r := mux.NewRouter()

	r.Handle("/iptv.m3u", NewM3UHandler(backend, cfg, logger)).Methods(http.MethodGet)
	r.Handle("/epg.xml", NewEPGHandler(backend, cfg, logger)).Methods(http.MethodGet)

	r.Handle("/stream/{id:-?[0-9]+}", stream).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/stream/{id:-?[0-9]+}/properties", stream.Properties).Methods(http.MethodGet)

	r.HandleFunc("/api/channels", api.Channels).Methods(http.MethodGet)
	r.HandleFunc("/api/channels/{id}/epg", api.ChannelEPG).Methods(http.MethodGet)
	r.HandleFunc("/api/groups", api.Groups).Methods(http.MethodGet)
	r.HandleFunc("/api/backend", api.Backend).Methods(http.MethodGet)

	r.HandleFunc("/", RootXMLHandler(cfg)).Methods(http.MethodGet)
	r.HandleFunc("/device.xml", RootXMLHandler(cfg)).Methods(http.MethodGet)
	r.HandleFunc("/discover.json", DiscoveryHandler(cfg, backend)).Methods(http.MethodGet)
	r.HandleFunc("/lineup.json", LineupHandler(cfg, backend, logger)).Methods(http.MethodGet)
	r.HandleFunc("/lineup_status.json", LineupStatusHandler()).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.Use(LoggingMiddleware(logger))

	return r
}
