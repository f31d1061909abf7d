// Package codec is the byte-serialization capability used to carry
// argument values across the process boundary.
//
// Values are gob-encoded inside an envelope and rendered as base64
// string literals, so a serialized blob can never contain bytes that are
// special to the script grammar or the delimiter markers. Both sides of
// the boundary run the same binary, so gob's type registry lines up.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
)

// Module is the module name registered for every expression that embeds
// serialized literals. The dispatcher provides it implicitly.
const Module = "encoding"

// envelope wraps the value so interface-typed payloads round-trip.
type envelope struct {
	V any
}

func init() {
	// Concrete types allowed inside interface payloads. Anything else
	// must be registered by the caller via Register, mirroring gob.
	gob.Register(int(0))
	gob.Register(int8(0))
	gob.Register(int16(0))
	gob.Register(int32(0))
	gob.Register(int64(0))
	gob.Register(uint(0))
	gob.Register(uint8(0))
	gob.Register(uint16(0))
	gob.Register(uint32(0))
	gob.Register(uint64(0))
	gob.Register(float32(0))
	gob.Register(float64(0))
	gob.Register(false)
	gob.Register("")
	gob.Register([]byte(nil))
	gob.Register([]any(nil))
	gob.Register([]string(nil))
	gob.Register(map[string]any(nil))
	gob.Register(map[string]string(nil))
}

// Register records a concrete argument type with the codec. Required for
// user-defined types passed as arguments or returned by fixtures, on both
// sides of the process boundary (same call in the same binary covers both).
func Register(value any) {
	gob.Register(value)
}

// Marshal serializes a value to bytes.
func Marshal(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(envelope{V: value}); err != nil {
		return nil, fmt.Errorf("serializing %T: %w", value, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes bytes produced by Marshal.
func Unmarshal(data []byte) (any, error) {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("deserializing value: %w", err)
	}
	return env.V, nil
}

// EncodeLiteral serializes a value and renders it as the base64 literal
// embedded in deserialize(...) placeholders.
func EncodeLiteral(value any) (string, error) {
	data, err := Marshal(value)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeLiteral reverses EncodeLiteral.
func DecodeLiteral(literal string) (any, error) {
	data, err := base64.StdEncoding.DecodeString(literal)
	if err != nil {
		return nil, fmt.Errorf("decoding literal: %w", err)
	}
	return Unmarshal(data)
}
