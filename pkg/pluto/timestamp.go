package pluto

import (
	"fmt"
	"time"
)

// timestampLayout is the provider wire format. time.Parse accepts an optional
// fractional second after the seconds field, which covers "...05.000Z".
const timestampLayout = "2006-01-02T15:04:05Z"

// ParseTimestamp parses a provider timestamp such as "2020-05-27T15:41:00.000Z".
// The millisecond part is optional; the UTC designator is not.
func ParseTimestamp(text string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, text)
	}

	return t.UTC(), nil
}

// FormatTimestamp renders t in the format the schedule endpoint expects for its
// start and stop parameters.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
