// Package epg builds XMLTV documents from pluto.tv guide entries.
package epg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/savid/plutotv-proxy/pkg/pluto"
)

// TimeLayout is the XMLTV date format.
const TimeLayout = "20060102150405 -0700"

// TV represents the root element of an EPG XML document.
type TV struct {
	XMLName       xml.Name    `xml:"tv"`
	GeneratorName string      `xml:"generator-info-name,attr,omitempty"`
	Channels      []Channel   `xml:"channel"`
	Programs      []Programme `xml:"programme"`
}

// Channel represents a channel in the EPG data.
type Channel struct {
	ID          string `xml:"id,attr"`
	DisplayName string `xml:"display-name"`
	Icon        *Icon  `xml:"icon,omitempty"`
}

// Icon represents a channel or programme icon.
type Icon struct {
	Src string `xml:"src,attr"`
}

// Programme represents a program/show in the EPG data.
type Programme struct {
	Channel     string      `xml:"channel,attr"`
	Start       string      `xml:"start,attr"`
	Stop        string      `xml:"stop,attr"`
	Title       string      `xml:"title"`
	SubTitle    string      `xml:"sub-title,omitempty"`
	Description string      `xml:"desc,omitempty"`
	Category    string      `xml:"category,omitempty"`
	Icon        *Icon       `xml:"icon,omitempty"`
	EpisodeNum  *EpisodeNum `xml:"episode-num,omitempty"`
}

// EpisodeNum is an episode number in the given numbering system.
type EpisodeNum struct {
	System string `xml:"system,attr"`
	Value  string `xml:",chardata"`
}

// ChannelGuide is one channel and its guide entries in source order.
type ChannelGuide struct {
	Channel pluto.Channel
	Entries []pluto.GuideEntry
}

// ChannelID is the XMLTV channel id used for a derived channel ID. The
// playlist's tvg-id carries the same value.
func ChannelID(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}

// Build assembles a TV document. Channels appear in the given order, followed
// by every programme of every channel.
func Build(guides []ChannelGuide) *TV {
	tv := &TV{
		GeneratorName: "plutotv-proxy",
		Channels:      make([]Channel, 0, len(guides)),
	}

	for _, g := range guides {
		ch := Channel{
			ID:          ChannelID(g.Channel.ID),
			DisplayName: g.Channel.Name,
		}
		if g.Channel.IconPath != "" {
			ch.Icon = &Icon{Src: g.Channel.IconPath}
		}
		tv.Channels = append(tv.Channels, ch)

		for _, e := range g.Entries {
			tv.Programs = append(tv.Programs, programme(e))
		}
	}

	return tv
}

func programme(e pluto.GuideEntry) Programme {
	p := Programme{
		Channel:     ChannelID(e.ChannelID),
		Start:       FormatTime(e.Start),
		Stop:        FormatTime(e.End),
		Title:       e.Title,
		SubTitle:    e.EpisodeName,
		Description: e.Plot,
		Category:    e.Genre,
	}
	if e.IconPath != "" {
		p.Icon = &Icon{Src: e.IconPath}
	}
	if e.EpisodeNumber > 0 {
		p.EpisodeNum = &EpisodeNum{System: "onscreen", Value: "E" + strconv.Itoa(e.EpisodeNumber)}
	}
	return p
}

// FormatTime formats t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Encode writes tv as an indented XML document with the XML header.
func Encode(w io.Writer, tv *TV) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(tv); err != nil {
		return fmt.Errorf("failed to encode EPG: %w", err)
	}
	return encoder.Close()
}
