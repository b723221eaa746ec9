package mods

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Blob is an opaque image payload. It is raw bytes inside the core and
// base64 text on the wire.
type Blob []byte

// Present reports whether the payload carries any data
func (b Blob) Present() bool {
	return len(b) > 0
}

// Clone copies the payload
func (b Blob) Clone() Blob {
	if b == nil {
		return nil
	}
	return append(Blob(nil), b...)
}

// MarshalJSON encodes the payload as standard base64
func (b Blob) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// UnmarshalJSON accepts plain base64 or a data URI ("data:image/png;base64,...")
func (b *Blob) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	decoded, err := DecodeBlob(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// DecodeBlob decodes base64 text, stripping a data URI prefix if present
func DecodeBlob(s string) (Blob, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		s = s[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return Blob(raw), nil
}
