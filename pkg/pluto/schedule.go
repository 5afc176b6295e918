package pluto

import (
	"encoding/json"
	"fmt"
	"time"
)

// GuideEntry is one scheduled program of a channel.
type GuideEntry struct {
	BroadcastID   int32     `json:"broadcast_id"`
	ChannelID     int32     `json:"channel_id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Plot          string    `json:"plot,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	IconPath      string    `json:"icon_path,omitempty"`
	EpisodeName   string    `json:"episode_name,omitempty"`
	EpisodeNumber int       `json:"episode_number,omitempty"` // 0 when unknown
	IsSeries      bool      `json:"is_series"`
}

type seriesDoc struct {
	Name optString `json:"name"`
}

func (d *seriesDoc) UnmarshalJSON(b []byte) error {
	type plain seriesDoc
	var v plain
	decodeObject(b, &v)
	*d = seriesDoc(v)
	return nil
}

type episodeDoc struct {
	Name        optString  `json:"name"`
	Number      optInt     `json:"number"`
	Description optString  `json:"description"`
	Genre       optString  `json:"genre"`
	Thumbnail   *imageDoc  `json:"thumbnail"`
	Series      *seriesDoc `json:"series"`
}

func (d *episodeDoc) UnmarshalJSON(b []byte) error {
	type plain episodeDoc
	var v plain
	decodeObject(b, &v)
	*d = episodeDoc(v)
	return nil
}

// seriesTitle returns the series and episode names when both are present and non-empty.
func (d *episodeDoc) seriesTitle() (series, episode string, ok bool) {
	if d.Series == nil || d.Series.Name.value == "" || d.Name.value == "" {
		return "", "", false
	}
	return d.Series.Name.value, d.Name.value, true
}

// timelineDoc is one scheduled item. An item that is not an object decodes
// with no start and is skipped when mapped.
type timelineDoc struct {
	ID      optString   `json:"_id"`
	Start   optString   `json:"start"`
	Stop    optString   `json:"stop"`
	Title   optString   `json:"title"`
	Episode *episodeDoc `json:"episode"`
}

func (d *timelineDoc) UnmarshalJSON(b []byte) error {
	type plain timelineDoc
	var v plain
	decodeObject(b, &v)
	*d = timelineDoc(v)
	return nil
}

// timelineList is a lenient array of timeline items; a value that is not an
// array decodes as empty.
type timelineList []timelineDoc

func (l *timelineList) UnmarshalJSON(b []byte) error {
	var items []timelineDoc
	decodeObject(b, &items)
	*l = items
	return nil
}

type scheduleChannelDoc struct {
	ID        optString    `json:"_id"`
	Timelines timelineList `json:"timelines"`
}

func (d *scheduleChannelDoc) UnmarshalJSON(b []byte) error {
	type plain scheduleChannelDoc
	var v plain
	decodeObject(b, &v)
	*d = scheduleChannelDoc(v)
	return nil
}

// schedule is a decoded multi-channel schedule document indexed by provider ID.
type schedule struct {
	channels []scheduleChannelDoc
	index    map[string]int
}

func decodeSchedule(body []byte) (*schedule, error) {
	var docs []scheduleChannelDoc
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("%w: schedule: %v", ErrMalformedResponse, err)
	}
	if docs == nil {
		return nil, fmt.Errorf("%w: schedule: top level is not an array", ErrMalformedResponse)
	}

	s := &schedule{
		channels: docs,
		index:    make(map[string]int, len(docs)),
	}
	for i, d := range docs {
		if !d.ID.set {
			continue
		}
		// first occurrence wins
		if _, ok := s.index[d.ID.value]; !ok {
			s.index[d.ID.value] = i
		}
	}

	return s, nil
}

func (s *schedule) lookup(providerID string) (scheduleChannelDoc, bool) {
	i, ok := s.index[providerID]
	if !ok {
		return scheduleChannelDoc{}, false
	}
	return s.channels[i], true
}

// guideEntry maps one timeline item. Only an unparsable start or stop fails
// the entry; every other field is optional.
func guideEntry(channelID int32, item timelineDoc) (GuideEntry, error) {
	start, err := ParseTimestamp(item.Start.value)
	if err != nil {
		return GuideEntry{}, fmt.Errorf("start: %w", err)
	}
	end, err := ParseTimestamp(item.Stop.value)
	if err != nil {
		return GuideEntry{}, fmt.Errorf("stop: %w", err)
	}

	entry := GuideEntry{
		BroadcastID: DeriveID(item.ID.value),
		ChannelID:   channelID,
		Title:       item.Title.value,
		Start:       start,
		End:         end,
	}

	ep := item.Episode
	if ep == nil {
		return entry, nil
	}
	entry.Plot = ep.Description.value
	entry.Genre = ep.Genre.value
	entry.IconPath = ep.Thumbnail.path()
	if ep.Number.set && ep.Number.value > 0 {
		entry.EpisodeNumber = ep.Number.value
	}
	if series, episode, ok := ep.seriesTitle(); ok {
		entry.Title = series
		entry.EpisodeName = episode
		entry.IsSeries = true
	}

	return entry, nil
}
