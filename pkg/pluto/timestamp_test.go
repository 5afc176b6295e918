package pluto

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "with milliseconds",
			input: "2020-05-27T15:41:00.000Z",
			want:  time.Date(2020, 5, 27, 15, 41, 0, 0, time.UTC),
		},
		{
			name:  "without milliseconds",
			input: "2020-05-27T16:06:05Z",
			want:  time.Date(2020, 5, 27, 16, 6, 5, 0, time.UTC),
		},
		{
			name:  "non-zero milliseconds",
			input: "2020-05-27T17:53:04.127Z",
			want:  time.Date(2020, 5, 27, 17, 53, 4, 127000000, time.UTC),
		},
		{name: "empty", input: "", wantErr: true},
		{name: "missing designator", input: "2020-05-27T15:41:00", wantErr: true},
		{name: "offset instead of Z", input: "2020-05-27T15:41:00+02:00", wantErr: true},
		{name: "garbage", input: "not a time", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrMalformedTimestamp) {
					t.Errorf("Expected ErrMalformedTimestamp, got %v", err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("Expected UTC location, got %v", got.Location())
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	got := FormatTimestamp(time.Date(2020, 5, 27, 17, 4, 5, 0, loc))
	if got != "2020-05-27T15:04:05Z" {
		t.Errorf("FormatTimestamp() = %q, want %q", got, "2020-05-27T15:04:05Z")
	}
}
