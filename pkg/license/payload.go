// Package license builds and parses the license payload and runs it through
// the feedback cipher and the variant64 text encoding.
//
// Payload grammar:
//
//	1#<identity>|<major><minor>#<count>#<major>3<minor>6<minor>#0#0#0#
//
// Identity is embedded verbatim; no delimiter escaping is done.
package license

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	payloadPrefix = "1#"
	payloadSuffix = "#0#0#0#"
)

// Fields are the values carried by a license payload.
type Fields struct {
	Identity     string
	MajorVersion string
	MinorVersion string
	Count        uint32
}

// Version returns the "major.minor" form.
func (f Fields) Version() string {
	return f.MajorVersion + "." + f.MinorVersion
}

// ParseVersion splits version on '.' and requires exactly two parts. Parts are
// not checked for emptiness or digits.
func ParseVersion(version string) (major, minor string, err error) {
	parts := strings.Split(version, ".")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidVersionFormat, version)
	}
	return parts[0], parts[1], nil
}

// NewFields validates version and returns the payload fields.
func NewFields(identity, version string, count uint32) (Fields, error) {
	major, minor, err := ParseVersion(version)
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		Identity:     identity,
		MajorVersion: major,
		MinorVersion: minor,
		Count:        count,
	}, nil
}

// String renders the payload.
func (f Fields) String() string {
	var sb strings.Builder
	sb.WriteString(payloadPrefix)
	sb.WriteString(f.Identity)
	sb.WriteByte('|')
	sb.WriteString(f.MajorVersion)
	sb.WriteString(f.MinorVersion)
	sb.WriteByte('#')
	sb.WriteString(strconv.FormatUint(uint64(f.Count), 10))
	sb.WriteByte('#')
	sb.WriteString(f.versionEcho())
	sb.WriteString(payloadSuffix)
	return sb.String()
}

func (f Fields) versionEcho() string {
	return f.MajorVersion + "3" + f.MinorVersion + "6" + f.MinorVersion
}

// BuildPayload formats the license payload for identity, version and count.
func BuildPayload(identity, version string, count uint32) (string, error) {
	fields, err := NewFields(identity, version, count)
	if err != nil {
		return "", err
	}
	return fields.String(), nil
}

// ParsePayload reverses BuildPayload. Fields are located from the right so an
// identity containing '|' or '#' still parses; the version echo must agree
// with the concatenated version.
func ParsePayload(payload string) (Fields, error) {
	body, ok := strings.CutPrefix(payload, payloadPrefix)
	if !ok {
		return Fields{}, fmt.Errorf("%w: missing %q prefix", ErrMalformedPayload, payloadPrefix)
	}
	body, ok = strings.CutSuffix(body, payloadSuffix)
	if !ok {
		return Fields{}, fmt.Errorf("%w: missing %q suffix", ErrMalformedPayload, payloadSuffix)
	}

	i := strings.LastIndexByte(body, '#')
	if i < 0 {
		return Fields{}, fmt.Errorf("%w: missing version echo", ErrMalformedPayload)
	}
	echo := body[i+1:]
	body = body[:i]

	i = strings.LastIndexByte(body, '#')
	if i < 0 {
		return Fields{}, fmt.Errorf("%w: missing count", ErrMalformedPayload)
	}
	count, err := strconv.ParseUint(body[i+1:], 10, 32)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: count: %v", ErrMalformedPayload, err)
	}
	body = body[:i]

	i = strings.LastIndexByte(body, '|')
	if i < 0 {
		return Fields{}, fmt.Errorf("%w: missing identity separator", ErrMalformedPayload)
	}
	identity, joined := body[:i], body[i+1:]

	// echo = major "3" minor "6" minor, joined = major minor
	minorLen := len(echo) - len(joined) - 2
	if minorLen < 0 || minorLen > len(joined) {
		return Fields{}, fmt.Errorf("%w: version echo %q does not match %q", ErrMalformedPayload, echo, joined)
	}
	fields := Fields{
		Identity:     identity,
		MajorVersion: joined[:len(joined)-minorLen],
		MinorVersion: joined[len(joined)-minorLen:],
		Count:        uint32(count),
	}
	if fields.versionEcho() != echo {
		return Fields{}, fmt.Errorf("%w: version echo %q does not match %q", ErrMalformedPayload, echo, joined)
	}

	return fields, nil
}
