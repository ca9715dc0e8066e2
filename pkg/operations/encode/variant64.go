package encode

import (
	"io"

	"github.com/provide-io/keyforge/pkg/encoding/variant64"
	"github.com/provide-io/keyforge/pkg/operations"
)

func init() {
	operations.Register(NewVariant64Operation())
}

// Variant64Operation turns bytes into license key text
type Variant64Operation struct {
	operations.BaseOperation
}

// NewVariant64Operation creates a variant64 encoding stage
func NewVariant64Operation() *Variant64Operation {
	return &Variant64Operation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_VARIANT64,
			OpName: "VARIANT64",
		},
	}
}

// Apply encodes data
func (o *Variant64Operation) Apply(input []byte) ([]byte, error) {
	return []byte(variant64.Encode(input)), nil
}

// Reverse decodes data
func (o *Variant64Operation) Reverse(input []byte) ([]byte, error) {
	return variant64.Decode(string(input))
}

// ApplyStream encodes a stream. The tail rule needs the total length, so the
// input is read in full.
func (o *Variant64Operation) ApplyStream(input io.Reader, output io.Writer) error {
	return operations.BufferedStream(o.Apply, input, output)
}

// ReverseStream decodes a stream
func (o *Variant64Operation) ReverseStream(input io.Reader, output io.Writer) error {
	return operations.BufferedStream(o.Reverse, input, output)
}

// EstimateSize returns the exact encoded length
func (o *Variant64Operation) EstimateSize(inputSize int64) int64 {
	return int64(variant64.EncodedLen(int(inputSize)))
}
