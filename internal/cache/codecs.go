package cache

import (
	"encoding/gob"
	"io"
	"reflect"

	"github.com/bytedance/sonic"
	"github.com/fxamacker/cbor/v2"
)

// JSONCodec serializes through sonic. Human-readable; numbers round-trip as
// float64 and maps as map[string]any.
type JSONCodec struct{}

func (JSONCodec) Encode(w io.Writer, v any) error {
	return sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func (JSONCodec) Decode(r io.Reader) (any, error) {
	var v any
	if err := sonic.ConfigDefault.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// CBORCodec serializes through fxamacker/cbor. Compact binary; preserves
// integer types across the round trip.
type CBORCodec struct{}

// cborDec decodes maps as map[string]any so cached objects come back in the
// same shape the engine works with.
var cborDec, _ = cbor.DecOptions{
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
}.DecMode()

func (CBORCodec) Encode(w io.Writer, v any) error {
	return cbor.NewEncoder(w).Encode(v)
}

func (CBORCodec) Decode(r io.Reader) (any, error) {
	var v any
	if err := cborDec.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// GobCodec serializes through encoding/gob. Concrete types beyond the
// registered map/slice shapes must be gob.Register-ed by the caller.
type GobCodec struct{}

func init() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

func (GobCodec) Encode(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(&v)
}

func (GobCodec) Decode(r io.Reader) (any, error) {
	var v any
	if err := gob.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
