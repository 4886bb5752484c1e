// Package jsoncodec is the JSON encoder used across the service. It is backed
// by sonic in its standard-library compatible mode.
package jsoncodec

import (
	"bytes"
	"errors"
	"io"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

// ErrTrailingData is returned by DecodeValue when a document holds more than
// one JSON value.
var ErrTrailingData = errors.New("unexpected data after top-level JSON value")

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

// Encode writes v to w as JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	return defaultConfig.NewEncoder(w).Encode(v)
}

// Decode reads a single JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return defaultConfig.NewDecoder(r).Decode(v)
}

// DecodeValue decodes a JSON document into its generic representation.
// Numbers are kept as json.Number so integers and floats survive unchanged.
func DecodeValue(data []byte) (any, error) {
	dec := defaultConfig.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, ErrTrailingData
	}
	return v, nil
}
