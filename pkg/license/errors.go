package license

import "errors"

var (
	// Input errors 📝
	ErrInvalidVersionFormat = errors.New("❌ invalid version format, expected 'x.y'")

	// Decoding errors 🔍
	ErrMalformedPayload = errors.New("❌ malformed license payload")
)
