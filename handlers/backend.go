// Package handlers provides HTTP handlers for the pluto.tv proxy server.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/savid/plutotv-proxy/pkg/addon"
	"github.com/savid/plutotv-proxy/pkg/pluto"
	"github.com/sirupsen/logrus"
)

// Backend is the add-on surface served over HTTP.
type Backend interface {
	Channels(ctx context.Context, radio bool) ([]pluto.Channel, error)
	StreamURL(ctx context.Context, channelID int32) (string, error)
	StreamProperties(ctx context.Context, channelID int32) ([]addon.StreamProperty, error)
	EPG(ctx context.Context, channelID int32, start, end time.Time) ([]pluto.GuideEntry, error)
	ChannelGroups(ctx context.Context, radio bool) ([]string, error)
	Capabilities() addon.Capabilities
	BackendName() string
	BackendVersion() string
}

// writeError maps an add-on error to an HTTP status.
func writeError(w http.ResponseWriter, logger logrus.FieldLogger, err error, what string) {
	status := http.StatusBadGateway
	switch addon.Code(err) {
	case addon.InvalidParameters, addon.Failed:
		status = http.StatusNotFound
	case addon.NotImplemented:
		status = http.StatusNotImplemented
	}

	entry := logger.WithError(err).WithField("status", status)
	if status == http.StatusBadGateway {
		entry.Errorf("%s not available", what)
	} else {
		entry.Debugf("%s request rejected", what)
	}

	http.Error(w, what+" not available", status)
}

// channelID reads the {id} route variable.
func channelID(r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(id), true
}
