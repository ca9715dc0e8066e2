package obfuscate

import (
	"bufio"
	"fmt"
	"io"

	"github.com/provide-io/keyforge/pkg/operations"
	"github.com/provide-io/keyforge/pkg/utils"
)

func init() {
	operations.Register(NewFeedbackXOROperation(utils.DefaultFeedbackKey))
}

// FeedbackXOROperation implements the key-feedback XOR stream
type FeedbackXOROperation struct {
	operations.BaseOperation
	Seed uint32
}

// NewFeedbackXOROperation creates a feedback XOR stage starting from seed
func NewFeedbackXOROperation(seed uint32) *FeedbackXOROperation {
	return &FeedbackXOROperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_FEEDBACK_XOR,
			OpName: "FEEDBACK_XOR",
		},
		Seed: seed,
	}
}

// Apply encrypts data
func (o *FeedbackXOROperation) Apply(input []byte) ([]byte, error) {
	return utils.FeedbackXOR(o.Seed, input), nil
}

// Reverse decrypts data
func (o *FeedbackXOROperation) Reverse(input []byte) ([]byte, error) {
	return utils.FeedbackXORDecode(o.Seed, input), nil
}

// ApplyStream encrypts a stream, carrying the key across reads
func (o *FeedbackXOROperation) ApplyStream(input io.Reader, output io.Writer) error {
	return o.stream(input, output, false)
}

// ReverseStream decrypts a stream
func (o *FeedbackXOROperation) ReverseStream(input io.Reader, output io.Writer) error {
	return o.stream(input, output, true)
}

func (o *FeedbackXOROperation) stream(input io.Reader, output io.Writer, decode bool) error {
	br := bufio.NewReader(input)
	bw := bufio.NewWriter(output)
	key := o.Seed
	step := utils.FeedbackStep
	if decode {
		step = utils.FeedbackUnstep
	}

	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		b, key = step(key, b)
		if err := bw.WriteByte(b); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	return bw.Flush()
}
