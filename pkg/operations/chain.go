package operations

import (
	"fmt"
	"strings"
)

// ChainString renders a chain in execution order, e.g. "feedback_xor|variant64|zip".
func ChainString(ops []Operation) string {
	if len(ops) == 0 {
		return "raw"
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = strings.ToLower(op.Name())
	}
	return strings.Join(names, "|")
}

// ApplyChain applies a chain of operations to data
func ApplyChain(data []byte, ops []Operation) ([]byte, error) {
	current := data

	for _, op := range ops {
		result, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op.Name(), err)
		}
		current = result
	}

	return current, nil
}

// ReverseChain reverses a chain of operations on data
func ReverseChain(data []byte, ops []Operation) ([]byte, error) {
	current := data

	// Apply operations in reverse order
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if !op.CanReverse() {
			return nil, fmt.Errorf("operation %s is not reversible", op.Name())
		}

		result, err := op.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", op.Name(), err)
		}
		current = result
	}

	return current, nil
}

// EstimateChainSize folds EstimateSize across the chain.
func EstimateChainSize(inputSize int64, ops []Operation) int64 {
	size := inputSize
	for _, op := range ops {
		size = op.EstimateSize(size)
	}
	return size
}
