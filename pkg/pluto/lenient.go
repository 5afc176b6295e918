package pluto

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// optString is an optional string leaf. null and values of any other JSON
// type decode as unset instead of failing the document.
type optString struct {
	value string
	set   bool
}

func (s *optString) UnmarshalJSON(b []byte) error {
	*s = optString{}
	if bytes.Equal(b, jsonNull) {
		return nil
	}

	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*s = optString{value: v, set: true}
	return nil
}

// optInt is an optional integer leaf with the same rules as optString.
type optInt struct {
	value int
	set   bool
}

func (n *optInt) UnmarshalJSON(b []byte) error {
	*n = optInt{}
	if bytes.Equal(b, jsonNull) {
		return nil
	}

	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*n = optInt{value: v, set: true}
	return nil
}

// decodeObject decodes an optional object. A value that is not an object
// leaves v at its zero value. Leaves inside v are expected to be lenient
// themselves, so only the top-level type can mismatch.
func decodeObject(b []byte, v any) {
	_ = json.Unmarshal(b, v)
}
