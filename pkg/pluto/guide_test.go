package pluto

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

const testGuideURL = "http://guide.test/v2/channels"

var (
	kidsID   = DeriveID("5ad9b648e738977e2c312131")
	moviesID = DeriveID("5ad8d3a31b95267e225e4e09")
	retroID  = DeriveID("5e1f7e089f23700009d66303")

	guideNow = time.Date(2020, 5, 27, 15, 0, 0, 0, time.UTC)
)

type guideFixture struct {
	guide   *Guide
	fetcher *countingFetcher
	fail    bool
	mu      sync.Mutex
}

func newGuideFixture(t *testing.T) *guideFixture {
	t.Helper()
	return newGuideFixtureWithSchedule(t, readTestdata(t, "schedule.json"))
}

func newGuideFixtureWithSchedule(t *testing.T, sched []byte) *guideFixture {
	t.Helper()

	channels := readTestdata(t, "channels.json")

	f := &guideFixture{}
	f.fetcher = &countingFetcher{fn: func(url string) ([]byte, error) {
		if strings.HasPrefix(url, testChannelsURL) {
			return channels, nil
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail {
			return nil, errors.New("connection reset")
		}
		return sched, nil
	}}

	catalog := NewCatalog(f.fetcher, CatalogConfig{URL: testChannelsURL, ColoredLogos: true}, testLogger())
	f.guide = NewGuide(f.fetcher, catalog, GuideConfig{
		URL: testGuideURL,
		Now: func() time.Time { return guideNow },
	}, testLogger())
	return f
}

func (f *guideFixture) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func TestGuideQuery(t *testing.T) {
	f := newGuideFixture(t)

	start := guideNow
	end := guideNow.Add(3 * time.Hour)
	entries, err := f.guide.Query(context.Background(), kidsID, start, end)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// the entry with an unparsable start is dropped
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Title != "Planet Max" {
		t.Errorf("Expected title 'Planet Max', got %s", first.Title)
	}
	if first.EpisodeName != "Die Affengrippe" {
		t.Errorf("Expected episode 'Die Affengrippe', got %s", first.EpisodeName)
	}
	if !first.IsSeries {
		t.Error("Expected series entry")
	}
	if first.BroadcastID != 253451176 {
		t.Errorf("Expected broadcast ID 253451176, got %d", first.BroadcastID)
	}
	if first.ChannelID != kidsID {
		t.Errorf("Expected channel ID %d, got %d", kidsID, first.ChannelID)
	}
	if !first.Start.Equal(time.Date(2020, 5, 27, 15, 41, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start: %v", first.Start)
	}
	if !first.End.Equal(time.Date(2020, 5, 27, 16, 6, 0, 0, time.UTC)) {
		t.Errorf("Unexpected end: %v", first.End)
	}
	if first.Genre != "Children & Family" {
		t.Errorf("Unexpected genre: %s", first.Genre)
	}
	if first.Plot != "Nesmith hat einen Schnupfen." {
		t.Errorf("Unexpected plot: %s", first.Plot)
	}
	if first.IconPath != "http://images.pluto.tv/episodes/5d0b449900557a40f64a71ee/thumbnail.jpg" {
		t.Errorf("Unexpected icon: %s", first.IconPath)
	}
	if first.EpisodeNumber != 124 {
		t.Errorf("Expected episode number 124, got %d", first.EpisodeNumber)
	}

	second := entries[1]
	if second.Title != "Kurzfilm" || second.IsSeries || second.Plot != "" {
		t.Errorf("Unexpected plain entry: %+v", second)
	}

	third := entries[2]
	if third.Title != "Movie Night" || third.IsSeries || third.EpisodeName != "" {
		t.Errorf("Expected no series override with an empty episode name: %+v", third)
	}
	if third.Plot != "A film." {
		t.Errorf("Unexpected plot: %s", third.Plot)
	}

	// window starts at now, so the request looks back two hours
	expectedURL := testGuideURL + "?start=2020-05-27T13:00:00Z&stop=2020-05-27T18:00:00Z"
	if got := f.fetcher.last(); got != expectedURL {
		t.Errorf("Expected fetch of %s, got %s", expectedURL, got)
	}

	ws, we, ok := f.guide.Window()
	if !ok || !ws.Equal(start) || !we.Equal(end) {
		t.Errorf("Expected nominal window %v-%v, got %v-%v (%v)", start, end, ws, we, ok)
	}
}

func TestGuideMistypedOptionalFields(t *testing.T) {
	sched := []byte(`[
		{"_id":"5ad9b648e738977e2c312131","timelines":[
			{"_id":"a","start":"2020-05-27T15:00:00Z","stop":"2020-05-27T15:30:00Z","title":"First",
			 "episode":{"genre":"Kids","description":"Fine"}},
			{"_id":"b","start":"2020-05-27T15:30:00Z","stop":"2020-05-27T16:00:00Z","title":"Second",
			 "episode":{"genre":7,"description":["x"],"number":"nine","thumbnail":"none",
			            "name":"Pilot","series":{"name":false}}},
			{"_id":"c","start":"2020-05-27T16:00:00Z","stop":"2020-05-27T16:30:00Z","title":42,
			 "episode":"not an object"},
			"not a timeline",
			{"_id":"d","start":"2020-05-27T16:30:00Z","stop":"2020-05-27T17:00:00Z","title":"Last",
			 "episode":{"name":"Ep","series":{"name":"Show"},"thumbnail":{"path":3}}}
		]},
		{"_id":"5ad8d3a31b95267e225e4e09","timelines":{"unexpected":true}},
		17
	]`)
	f := newGuideFixtureWithSchedule(t, sched)

	entries, err := f.guide.Query(context.Background(), kidsID, guideNow, guideNow.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// the string item has no start and is skipped
	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(entries))
	}
	if entries[0].Genre != "Kids" || entries[0].Plot != "Fine" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}

	second := entries[1]
	if second.Title != "Second" || second.Genre != "" || second.Plot != "" || second.IconPath != "" {
		t.Errorf("Expected mistyped fields to be dropped: %+v", second)
	}
	if second.IsSeries || second.EpisodeNumber != 0 {
		t.Errorf("Expected no series mapping without a series name: %+v", second)
	}

	if entries[2].Title != "" || entries[2].BroadcastID != DeriveID("c") {
		t.Errorf("Unexpected third entry: %+v", entries[2])
	}

	last := entries[3]
	if last.Title != "Show" || last.EpisodeName != "Ep" || !last.IsSeries || last.IconPath != "" {
		t.Errorf("Unexpected last entry: %+v", last)
	}

	movies, err := f.guide.Query(context.Background(), moviesID, guideNow, guideNow.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("Expected no entries for non-array timelines, got %d", len(movies))
	}
}

func TestGuideCoveredQueryDoesNotFetch(t *testing.T) {
	f := newGuideFixture(t)
	ctx := context.Background()

	start := guideNow
	end := guideNow.Add(3 * time.Hour)
	if _, err := f.guide.Query(ctx, kidsID, start, end); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	inner := []struct{ start, end time.Time }{
		{start, end},
		{start.Add(time.Hour), end.Add(-time.Hour)},
		{start, start.Add(time.Minute)},
	}
	for _, w := range inner {
		if _, err := f.guide.Query(ctx, moviesID, w.start, w.end); err != nil {
			t.Fatalf("Query failed: %v", err)
		}
	}

	if n := f.fetcher.count(testGuideURL); n != 1 {
		t.Errorf("Expected 1 schedule fetch, got %d", n)
	}
}

func TestGuideWindowOutsideCacheRefetches(t *testing.T) {
	f := newGuideFixture(t)
	ctx := context.Background()

	if _, err := f.guide.Query(ctx, kidsID, guideNow, guideNow.Add(3*time.Hour)); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// future window: fetched from its own start
	start := guideNow.Add(2 * time.Hour)
	end := guideNow.Add(6 * time.Hour)
	if _, err := f.guide.Query(ctx, kidsID, start, end); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if n := f.fetcher.count(testGuideURL); n != 2 {
		t.Errorf("Expected 2 schedule fetches, got %d", n)
	}
	expectedURL := testGuideURL + "?start=2020-05-27T17:00:00Z&stop=2020-05-27T21:00:00Z"
	if got := f.fetcher.last(); got != expectedURL {
		t.Errorf("Expected fetch of %s, got %s", expectedURL, got)
	}

	ws, we, _ := f.guide.Window()
	if !ws.Equal(start) || !we.Equal(end) {
		t.Errorf("Expected window to be replaced with %v-%v, got %v-%v", start, end, ws, we)
	}
}

func TestGuideEmptyTimelines(t *testing.T) {
	f := newGuideFixture(t)

	entries, err := f.guide.Query(context.Background(), moviesID, guideNow, guideNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestGuideChannelWithoutSchedule(t *testing.T) {
	f := newGuideFixture(t)

	entries, err := f.guide.Query(context.Background(), retroID, guideNow, guideNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", entries)
	}
}

func TestGuideUnknownChannel(t *testing.T) {
	f := newGuideFixture(t)

	_, err := f.guide.Query(context.Background(), 7, guideNow, guideNow.Add(time.Hour))
	if !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("Expected ErrUnknownChannel, got %v", err)
	}
	if n := f.fetcher.count(testGuideURL); n != 0 {
		t.Errorf("Expected no schedule fetch, got %d", n)
	}
}

func TestGuideDegenerateWindow(t *testing.T) {
	f := newGuideFixture(t)

	for _, end := range []time.Time{guideNow, guideNow.Add(-time.Hour)} {
		entries, err := f.guide.Query(context.Background(), kidsID, guideNow, end)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Expected no entries, got %d", len(entries))
		}
	}

	if len(f.fetcher.calls) != 0 {
		t.Errorf("Expected no fetches, got %v", f.fetcher.calls)
	}
}

func TestGuideFailureKeepsCache(t *testing.T) {
	f := newGuideFixture(t)
	ctx := context.Background()

	start := guideNow
	end := guideNow.Add(3 * time.Hour)
	if _, err := f.guide.Query(ctx, kidsID, start, end); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	f.setFail(true)
	_, err := f.guide.Query(ctx, kidsID, guideNow.Add(4*time.Hour), guideNow.Add(8*time.Hour))
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}

	ws, we, ok := f.guide.Window()
	if !ok || !ws.Equal(start) || !we.Equal(end) {
		t.Errorf("Expected cache to survive failure, got %v-%v (%v)", ws, we, ok)
	}

	// the old window is still served from cache
	entries, err := f.guide.Query(ctx, kidsID, start, end)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 cached entries, got %d", len(entries))
	}
}

func TestGuideEmptyResponse(t *testing.T) {
	catalogData := readTestdata(t, "channels.json")
	fetcher := &countingFetcher{fn: func(url string) ([]byte, error) {
		if strings.HasPrefix(url, testChannelsURL) {
			return catalogData, nil
		}
		return []byte("  "), nil
	}}
	catalog := NewCatalog(fetcher, CatalogConfig{URL: testChannelsURL}, testLogger())
	guide := NewGuide(fetcher, catalog, GuideConfig{URL: testGuideURL, Now: func() time.Time { return guideNow }}, testLogger())

	_, err := guide.Query(context.Background(), kidsID, guideNow, guideNow.Add(time.Hour))
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
	}
	if _, _, ok := guide.Window(); ok {
		t.Error("Expected no cached window")
	}
}

func TestGuidePrefetch(t *testing.T) {
	f := newGuideFixture(t)
	ctx := context.Background()

	if err := f.guide.Prefetch(ctx, guideNow, guideNow.Add(12*time.Hour)); err != nil {
		t.Fatalf("Prefetch failed: %v", err)
	}
	if _, err := f.guide.Query(ctx, kidsID, guideNow.Add(time.Hour), guideNow.Add(2*time.Hour)); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if n := f.fetcher.count(testGuideURL); n != 1 {
		t.Errorf("Expected 1 schedule fetch, got %d", n)
	}
}

func TestGuideConcurrentQueries(t *testing.T) {
	f := newGuideFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int32) {
			defer wg.Done()
			if _, err := f.guide.Query(ctx, id, guideNow, guideNow.Add(3*time.Hour)); err != nil {
				t.Errorf("Query failed: %v", err)
			}
		}([]int32{kidsID, moviesID, retroID}[i%3])
	}
	wg.Wait()

	if n := f.fetcher.count(testGuideURL); n != 1 {
		t.Errorf("Expected 1 schedule fetch, got %d", n)
	}
}
