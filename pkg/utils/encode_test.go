package utils

import (
	"net/url"
	"testing"
)

func TestEncodeHeaderValue(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"abcXYZ019-._~", "abcXYZ019-._~"},
		{"a b", "a%20b"},
		{"Mozilla/5.0 (Windows NT 10.0)", "Mozilla%2F5.0%20%28Windows%20NT%2010.0%29"},
		{"k=v&x+y", "k%3Dv%26x%2By"},
		{"ü", "%C3%BC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := EncodeHeaderValue(tt.input)
			if result != tt.expected {
				t.Errorf("EncodeHeaderValue(%q) = %q, want %q", tt.input, result, tt.expected)
			}

			decoded, err := url.PathUnescape(result)
			if err != nil {
				t.Fatalf("PathUnescape(%q) failed: %v", result, err)
			}
			if decoded != tt.input {
				t.Errorf("PathUnescape(%q) = %q, want %q", result, decoded, tt.input)
			}
		})
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base     string
		path     string
		expected string
	}{
		{"http://localhost:8080", "stream/1", "http://localhost:8080/stream/1"},
		{"http://localhost:8080/", "/stream/1", "http://localhost:8080/stream/1"},
		{"http://host/prefix//", "epg.xml", "http://host/prefix/epg.xml"},
	}

	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.path); got != tt.expected {
			t.Errorf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.expected)
		}
	}
}
