package pluto

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Channel is one provider channel as held by the catalog.
type Channel struct {
	Number         int    `json:"number"`
	ProviderID     string `json:"provider_id"`
	ID             int32  `json:"id"`
	Name           string `json:"name"`
	IconPath       string `json:"icon_path,omitempty"`
	StreamTemplate string `json:"-"`
}

// HasStream reports whether the channel carries a stitched playback URL.
func (c Channel) HasStream() bool {
	return c.StreamTemplate != ""
}

type imageDoc struct {
	Path optString `json:"path"`
}

func (i *imageDoc) UnmarshalJSON(b []byte) error {
	type plain imageDoc
	var v plain
	decodeObject(b, &v)
	*i = imageDoc(v)
	return nil
}

func (i *imageDoc) path() string {
	if i == nil {
		return ""
	}
	return i.Path.value
}

type stitchedURLDoc struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type stitchedDoc struct {
	URLs []stitchedURLDoc `json:"urls"`
}

// channelDoc is one element of the channels.json array.
type channelDoc struct {
	ID           *string      `json:"_id"`
	Name         *string      `json:"name"`
	ColorLogoPNG *imageDoc    `json:"colorLogoPNG"`
	SolidLogoPNG *imageDoc    `json:"solidLogoPNG"`
	Logo         *imageDoc    `json:"logo"`
	Stitched     *stitchedDoc `json:"stitched"`
}

func (d channelDoc) icon(colored bool) string {
	if colored {
		if p := d.ColorLogoPNG.path(); p != "" {
			return p
		}
	}
	if p := d.SolidLogoPNG.path(); p != "" {
		return p
	}
	return d.Logo.path()
}

func (d channelDoc) streamTemplate() string {
	if d.Stitched == nil {
		return ""
	}
	for _, u := range d.Stitched.URLs {
		if u.URL != "" {
			return u.URL
		}
	}
	return ""
}

// decodeChannels decodes the channel list document. Every element must carry
// _id and name; the remaining fields are optional.
func decodeChannels(body []byte) ([]channelDoc, error) {
	var docs []channelDoc
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("%w: channels: %v", ErrMalformedResponse, err)
	}
	if docs == nil {
		return nil, fmt.Errorf("%w: channels: top level is not an array", ErrMalformedResponse)
	}

	for i, d := range docs {
		if d.ID == nil {
			return nil, fmt.Errorf("%w: channel %d has no _id", ErrMalformedResponse, i)
		}
		if d.Name == nil {
			return nil, fmt.Errorf("%w: channel %d (%s) has no name", ErrMalformedResponse, i, *d.ID)
		}
	}

	return docs, nil
}

// buildChannels maps decoded documents to channel records numbered from start.
// A document repeating an earlier _id is dropped; two distinct _ids deriving
// the same ID fail the build.
func buildChannels(docs []channelDoc, start int, colored bool, logger logrus.FieldLogger) ([]Channel, error) {
	channels := make([]Channel, 0, len(docs))
	seen := make(map[int32]string, len(docs))

	for _, d := range docs {
		providerID := *d.ID
		id := DeriveID(providerID)
		if other, ok := seen[id]; ok {
			if other == providerID {
				logger.WithField("provider_id", providerID).Warn("Skipping repeated channel")
				continue
			}
			return nil, fmt.Errorf("%w: channels %q and %q both derive id %d", ErrDataIntegrity, other, providerID, id)
		}
		seen[id] = providerID

		channels = append(channels, Channel{
			Number:         start + len(channels),
			ProviderID:     providerID,
			ID:             id,
			Name:           *d.Name,
			IconPath:       d.icon(colored),
			StreamTemplate: d.streamTemplate(),
		})
	}

	return channels, nil
}
