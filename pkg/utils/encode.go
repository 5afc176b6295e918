// Package utils provides small encoding helpers shared by the HTTP surface.
package utils

import "strings"

// EncodeHeaderValue percent-encodes value per RFC 3986: every byte except the
// unreserved set (ALPHA / DIGIT / "-" / "." / "_" / "~") becomes %XX.
// Unlike url.QueryEscape, a space is encoded as %20.
func EncodeHeaderValue(value string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(value) * 3)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	default:
		return false
	}
}

// JoinURL joins a base URL and a path with exactly one slash between them.
func JoinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
