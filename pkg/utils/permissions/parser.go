// Package permissions parses and formats the unix mode bits stamped on
// archive entries
package permissions

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultEntryPerms is rw-r--r--, what the license reader expects
const DefaultEntryPerms = 0o644

// ParseOctalString parses an octal permission string into a uint16
// Handles formats like "644", "0644", "0o644"
func ParseOctalString(s string) (uint16, error) {
	if s == "" {
		return DefaultEntryPerms, nil
	}

	// Remove common prefixes
	digits := strings.TrimPrefix(s, "0o")
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return 0, nil
	}

	val, err := strconv.ParseUint(digits, 8, 16)
	if err != nil {
		return DefaultEntryPerms, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return DefaultEntryPerms, fmt.Errorf("invalid permission string %q: only permission bits are allowed", s)
	}

	return uint16(val), nil
}

// FormatOctal formats a permission value as an octal string
func FormatOctal(perm uint16) string {
	return fmt.Sprintf("0%o", perm)
}
