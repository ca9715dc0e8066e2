package license

import (
	"fmt"

	"github.com/provide-io/keyforge/pkg/encoding/variant64"
	"github.com/provide-io/keyforge/pkg/utils"
)

// Seal encrypts payload with the default feedback key and encodes it.
func Seal(payload string) string {
	return variant64.Encode(utils.FeedbackXORDefault([]byte(payload)))
}

// Open reverses Seal.
func Open(encoded string) (string, error) {
	raw, err := variant64.Decode(encoded)
	if err != nil {
		return "", err
	}
	return string(utils.FeedbackXORDecodeDefault(raw)), nil
}

// GenerateLicense returns the encoded license for identity, version and count.
// The only failure is ErrInvalidVersionFormat.
func GenerateLicense(identity, version string, count uint32) (string, error) {
	payload, err := BuildPayload(identity, version, count)
	if err != nil {
		return "", err
	}
	return Seal(payload), nil
}

// DecodeLicense recovers the fields from an encoded license.
func DecodeLicense(encoded string) (Fields, error) {
	payload, err := Open(encoded)
	if err != nil {
		return Fields{}, fmt.Errorf("decoding license: %w", err)
	}
	return ParsePayload(payload)
}
