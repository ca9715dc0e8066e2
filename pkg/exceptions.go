package pkg

import (
	"errors"

	"github.com/provide-io/keyforge/pkg/operations/bundle"
)

var (
	// Request errors 📝
	ErrInvalidRequest = errors.New("❌ invalid license request")

	// Archive errors 📦
	ErrEntryMissing      = bundle.ErrEntryMissing
	ErrUnexpectedEntries = bundle.ErrUnexpectedEntries
	ErrCompressedEntry   = bundle.ErrCompressedEntry
)
