package addon

import (
	"github.com/savid/plutotv-proxy/pkg/data"
	"github.com/savid/plutotv-proxy/pkg/utils"
)

// Stream property names understood by the host player.
const (
	PropertyStreamURL        = "streamurl"
	PropertyInputStream      = "inputstream"
	PropertyIsRealtimeStream = "isrealtimestream"
	PropertyMimeType         = "mimetype"
	PropertyManifestHeaders  = "inputstream.adaptive.manifest_headers"
	PropertyStreamHeaders    = "inputstream.adaptive.stream_headers"
	PropertyManifestConfig   = "inputstream.adaptive.manifest_config"
)

// brokenStreamConfig tells the HLS demuxer to tolerate the provider's
// ad-stitched playlists.
const brokenStreamConfig = `{"hls_ignore_endlist":true,"hls_fix_mediasequence":true,"hls_fix_discsequence":true}`

// StreamProperty is one name/value pair handed to the player.
type StreamProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func streamProperties(url string, opts Options) []StreamProperty {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = data.DefaultUserAgent
	}
	headers := "User-Agent=" + utils.EncodeHeaderValue(userAgent)

	props := []StreamProperty{
		{Name: PropertyStreamURL, Value: url},
		{Name: PropertyInputStream, Value: "inputstream.adaptive"},
		{Name: PropertyIsRealtimeStream, Value: "true"},
		{Name: PropertyMimeType, Value: "application/x-mpegURL"},
		{Name: PropertyManifestHeaders, Value: headers},
		{Name: PropertyStreamHeaders, Value: headers},
	}
	if opts.WorkaroundBrokenStreams {
		props = append(props, StreamProperty{Name: PropertyManifestConfig, Value: brokenStreamConfig})
	}

	return props
}
