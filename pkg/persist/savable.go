package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Version is written into every new blob
const Version = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported blob version")
)

// savable wraps the stored value so that readers can tell formats apart.
// version 0 is the original format: a bare json array with no envelope
type savable struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Encode wraps v in a versioned envelope
func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(savable{Version: Version, Data: data})
}

// Decode unwraps a blob written by Encode, or a legacy bare array, into v.
// The returned version lets callers run their own migration step
func Decode(bs []byte, v interface{}) (int, error) {
	trimmed := bytes.TrimSpace(bs)
	if len(trimmed) == 0 {
		return 0, errors.New("empty blob")
	}
	if trimmed[0] == '[' {
		return 0, json.Unmarshal(trimmed, v)
	}
	var s savable
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return 0, err
	}
	if s.Version < 1 || s.Version > Version {
		return s.Version, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	if len(s.Data) == 0 {
		return s.Version, errors.New("missing data")
	}
	return s.Version, json.Unmarshal(s.Data, v)
}
