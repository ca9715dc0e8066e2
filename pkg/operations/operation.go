package operations

import (
	"fmt"
	"io"
)

// Operation identifiers
const (
	// No operation - raw data
	OP_NONE = 0x00

	// Container operations (0x01-0x0F)
	OP_ZIP = 0x02 // single-entry stored ZIP archive

	// Obfuscation operations (0x40-0x4F)
	OP_FEEDBACK_XOR = 0x40 // key-feedback XOR stream

	// Text encodings (0x50-0x5F)
	OP_VARIANT64 = 0x50 // license key text encoding
)

// Operation represents a single transformation stage
type Operation interface {
	// ID returns the operation identifier (e.g., OP_VARIANT64)
	ID() uint8

	// Name returns the human-readable name
	Name() string

	// Apply applies the operation to input data
	Apply(input []byte) ([]byte, error)

	// ApplyStream applies the operation to a stream
	ApplyStream(input io.Reader, output io.Writer) error

	// Reverse undoes the operation
	Reverse(input []byte) ([]byte, error)

	// ReverseStream undoes the operation on a stream
	ReverseStream(input io.Reader, output io.Writer) error

	// CanReverse returns true if the operation is reversible
	CanReverse() bool

	// EstimateSize estimates the output size given input size
	EstimateSize(inputSize int64) int64
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8 {
	return o.OpID
}

func (o *BaseOperation) Name() string {
	return o.OpName
}

func (o *BaseOperation) CanReverse() bool {
	return true
}

func (o *BaseOperation) EstimateSize(inputSize int64) int64 {
	return inputSize
}

// Registry maps operation IDs to implementations
var Registry = make(map[uint8]Operation)

// Register registers an operation implementation
func Register(op Operation) {
	Registry[op.ID()] = op
}

// Get retrieves an operation by ID
func Get(id uint8) (Operation, error) {
	op, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown operation: 0x%02x", id)
	}
	return op, nil
}

// Resolve looks up every ID in order.
func Resolve(ids []uint8) ([]Operation, error) {
	ops := make([]Operation, 0, len(ids))
	for _, id := range ids {
		op, err := Get(id)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// GetName returns the name of an operation by ID
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_ZIP:
		return "ZIP"
	case OP_FEEDBACK_XOR:
		return "FEEDBACK_XOR"
	case OP_VARIANT64:
		return "VARIANT64"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}

// BufferedStream runs fn over the whole of input and writes the result.
// Stages whose transform is not incremental use it for their stream methods.
func BufferedStream(fn func([]byte) ([]byte, error), input io.Reader, output io.Writer) error {
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	result, err := fn(data)
	if err != nil {
		return err
	}
	if _, err := output.Write(result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
