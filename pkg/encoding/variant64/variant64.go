// Package variant64 implements the license key text encoding: a base64
// relative that packs each 3-byte group little-endian, reads 6-bit windows
// from the least significant end, and emits a short tail instead of padding.
//
// The alphabet carries a 65th symbol, '=', which the encoder never emits.
package variant64

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the symbol table. Index 64 ('=') is reserved.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

const invalidSymbol = 0xFF

var (
	ErrInvalidLength = errors.New("❌ invalid variant64 length")
	ErrInvalidSymbol = errors.New("❌ invalid variant64 symbol")
	ErrNonCanonical  = errors.New("❌ non-canonical variant64 tail")
)

var decodeMap = func() [256]byte {
	var m [256]byte
	for i := range m {
		m[i] = invalidSymbol
	}
	// '=' stays invalid: it never appears in encoder output.
	for i := 0; i < 64; i++ {
		m[Alphabet[i]] = byte(i)
	}
	return m
}()

// tailLen maps the number of leftover bytes to the number of symbols emitted.
var tailLen = [3]int{0, 2, 3}

// EncodedLen returns the encoded length of n input bytes.
func EncodedLen(n int) int {
	return 4*(n/3) + tailLen[n%3]
}

// Encode encodes src. Full groups produce 4 symbols, a 1-byte tail 2 symbols,
// and a 2-byte tail 3 symbols.
func Encode(src []byte) string {
	var sb strings.Builder
	sb.Grow(EncodedLen(len(src)))

	full := len(src) / 3
	for i := 0; i < full; i++ {
		g := src[3*i : 3*i+3]
		writeWindows(&sb, pack(g[0], g[1], g[2]), 4)
	}

	switch rest := src[3*full:]; len(rest) {
	case 1:
		writeWindows(&sb, pack(rest[0], 0, 0), 2)
	case 2:
		writeWindows(&sb, pack(rest[0], rest[1], 0), 3)
	}

	return sb.String()
}

// pack builds the little-endian word of [b0, b1, b2, 0].
func pack(b0, b1, b2 byte) uint32 {
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16
}

func writeWindows(sb *strings.Builder, word uint32, n int) {
	for i := 0; i < n; i++ {
		sb.WriteByte(Alphabet[(word>>(6*i))&0x3F])
	}
}

// Decode reverses Encode. It rejects lengths of the form 4k+1, symbols outside
// the 64 data symbols, and tails whose unused high bits are set.
func Decode(s string) ([]byte, error) {
	if len(s)%4 == 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, len(s))
	}

	out := make([]byte, 0, len(s)/4*3+2)
	for off := 0; off < len(s); off += 4 {
		end := off + 4
		if end > len(s) {
			end = len(s)
		}

		var word uint32
		for i := off; i < end; i++ {
			v := decodeMap[s[i]]
			if v == invalidSymbol {
				return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidSymbol, s[i], i)
			}
			word |= uint32(v) << (6 * (i - off))
		}

		switch end - off {
		case 4:
			out = append(out, byte(word), byte(word>>8), byte(word>>16))
		case 3:
			if word>>16 != 0 {
				return nil, fmt.Errorf("%w at offset %d", ErrNonCanonical, off)
			}
			out = append(out, byte(word), byte(word>>8))
		case 2:
			if word>>8 != 0 {
				return nil, fmt.Errorf("%w at offset %d", ErrNonCanonical, off)
			}
			out = append(out, byte(word))
		}
	}

	return out, nil
}
