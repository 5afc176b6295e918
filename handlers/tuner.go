package handlers

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/savid/plutotv-proxy/config"
	"github.com/savid/plutotv-proxy/pkg/m3u"
	"github.com/savid/plutotv-proxy/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Tuner identity advertised to media servers.
const (
	tunerFriendlyName = "PlutoTV-Proxy"
	tunerDeviceID     = "2020-05-PLUTO-PROXY01"
)

// DeviceXML represents the UPnP device description.
type DeviceXML struct {
	XMLName     xml.Name `xml:"root"`
	Xmlns       string   `xml:"xmlns,attr"`
	URLBase     string   `xml:"URLBase"`
	SpecVersion SpecVersion
	Device      Device
}

// SpecVersion represents the UPnP spec version.
type SpecVersion struct {
	Major int `xml:"major"`
	Minor int `xml:"minor"`
}

// Device represents the UPnP device information.
type Device struct {
	DeviceType   string `xml:"deviceType"`
	FriendlyName string `xml:"friendlyName"`
	Manufacturer string `xml:"manufacturer"`
	ModelName    string `xml:"modelName"`
	ModelNumber  string `xml:"modelNumber"`
	SerialNumber string `xml:"serialNumber"`
	UDN          string `xml:"UDN"`
}

// DiscoveryJSON represents the device discovery response.
type DiscoveryJSON struct {
	FriendlyName    string `json:"FriendlyName"`
	Manufacturer    string `json:"Manufacturer"`
	ManufacturerURL string `json:"ManufacturerURL"`
	ModelNumber     string `json:"ModelNumber"`
	FirmwareName    string `json:"FirmwareName"`
	TunerCount      int    `json:"TunerCount"`
	FirmwareVersion string `json:"FirmwareVersion"`
	DeviceID        string `json:"DeviceID"`
	DeviceAuth      string `json:"DeviceAuth"`
	BaseURL         string `json:"BaseURL"`
	LineupURL       string `json:"LineupURL"`
}

// LineupItem represents a channel in the lineup.
type LineupItem struct {
	GuideNumber string `json:"GuideNumber"`
	GuideName   string `json:"GuideName"`
	URL         string `json:"URL"`
}

// LineupStatus represents the lineup scanning status.
type LineupStatus struct {
	ScanInProgress int      `json:"ScanInProgress"`
	ScanPossible   int      `json:"ScanPossible"`
	Source         string   `json:"Source"`
	SourceList     []string `json:"SourceList"`
}

// RootXMLHandler serves the UPnP device description at /.
func RootXMLHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		device := DeviceXML{
			Xmlns:   "urn:schemas-upnp-org:device-1-0",
			URLBase: cfg.BaseURL,
			SpecVersion: SpecVersion{
				Major: 1,
				Minor: 0,
			},
			Device: Device{
				DeviceType:   "urn:schemas-upnp-org:device:MediaServer:1",
				FriendlyName: tunerFriendlyName,
				Manufacturer: "Silicondust",
				ModelName:    "HDTC-2US",
				ModelNumber:  "HDTC-2US",
				SerialNumber: "",
				UDN:          "uuid:" + tunerDeviceID,
			},
		}

		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)

		// Write XML header
		if _, err := w.Write([]byte(xml.Header)); err != nil {
			http.Error(w, "Failed to write XML header", http.StatusInternalServerError)
			return
		}

		encoder := xml.NewEncoder(w)
		encoder.Indent("", "  ")
		if err := encoder.Encode(device); err != nil {
			http.Error(w, "Failed to encode XML", http.StatusInternalServerError)
			return
		}
	}
}

// DiscoveryHandler serves device discovery JSON at /discover.json.
func DiscoveryHandler(cfg *config.Config, backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		version := backend.BackendVersion()
		writeJSON(w, DiscoveryJSON{
			FriendlyName:    tunerFriendlyName,
			Manufacturer:    "Golang",
			ManufacturerURL: "https://github.com/savid/plutotv-proxy",
			ModelNumber:     "HDTC-2US",
			FirmwareName:    "hdhomeruntc_atsc",
			TunerCount:      cfg.TunerCount,
			FirmwareVersion: version,
			DeviceID:        tunerDeviceID,
			DeviceAuth:      "plutotv-proxy",
			BaseURL:         cfg.BaseURL,
			LineupURL:       utils.JoinURL(cfg.BaseURL, "lineup.json"),
		})
	}
}

// LineupHandler serves the channel lineup at /lineup.json. Channels without
// a stream are left out, as in the playlist.
func LineupHandler(cfg *config.Config, backend Backend, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels, err := backend.Channels(r.Context(), false)
		if err != nil {
			writeError(w, logger, err, "Lineup")
			return
		}

		lineup := make([]LineupItem, 0, len(channels))
		for _, ch := range channels {
			if !ch.HasStream() {
				continue
			}
			lineup = append(lineup, LineupItem{
				GuideNumber: strconv.Itoa(ch.Number),
				GuideName:   ch.Name,
				URL:         utils.JoinURL(cfg.BaseURL, m3u.StreamPath(ch.ID)),
			})
		}

		writeJSON(w, lineup)
	}
}

// LineupStatusHandler serves the lineup scanning status at /lineup_status.json.
func LineupStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, LineupStatus{
			ScanInProgress: 0,
			ScanPossible:   0,
			Source:         "Cable",
			SourceList:     []string{"Cable"},
		})
	}
}
