// Package m3u builds extended M3U playlists.
package m3u

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/savid/plutotv-proxy/pkg/pluto"
	"github.com/savid/plutotv-proxy/pkg/utils"
)

// StreamPath is the proxy path that redirects to a channel's stream.
func StreamPath(id int32) string {
	return "stream/" + strconv.FormatInt(int64(id), 10)
}

// Build writes a playlist with one entry per channel. Each entry points at the
// proxy's stream endpoint under baseURL; channels without a stitched stream
// are left out.
func Build(channels []pluto.Channel, baseURL string) []byte {
	var buf bytes.Buffer

	buf.WriteString("#EXTM3U\n")

	for _, ch := range channels {
		if !ch.HasStream() {
			continue
		}

		fmt.Fprintf(&buf, "#EXTINF:-1 tvg-id=\"%d\" tvg-chno=\"%d\" tvg-name=\"%s\" tvg-logo=\"%s\",%s\n",
			ch.ID, ch.Number, attribute(ch.Name), attribute(ch.IconPath), ch.Name)
		buf.WriteString(utils.JoinURL(baseURL, StreamPath(ch.ID)))
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// attribute strips characters that would end a quoted attribute or the line.
func attribute(value string) string {
	return strings.NewReplacer(`"`, "'", "\n", " ", "\r", " ").Replace(value)
}
