package parser

import (
	"math/big"
	"strings"
)

// addressFromTopic extracts the address occupying the low 20 bytes of a
// 32-byte topic word, lowercased.
func addressFromTopic(topic string) string {
	if len(topic) < 40 {
		return ""
	}
	return "0x" + strings.ToLower(topic[len(topic)-40:])
}

// dataWord decodes the 32-byte word at the given position of a 0x-prefixed
// data field as an unsigned big-endian integer, returned as a decimal
// string. Out-of-range or malformed words decode to "0".
func dataWord(data string, word int) string {
	start := 2 + word*64
	if len(data) < start+64 {
		return "0"
	}
	n, ok := new(big.Int).SetString(data[start:start+64], 16)
	if !ok {
		return "0"
	}
	return n.String()
}

// dataWordAddress reads the address packed into the low 20 bytes of the
// 32-byte word at the given position.
func dataWordAddress(data string, word int) string {
	start := 2 + word*64
	if len(data) < start+64 {
		return ""
	}
	return "0x" + lower(data[start+24:start+64])
}

// dataAsAmount decodes the entire data field as one unsigned integer.
// Absent or empty data decodes to zero.
func dataAsAmount(data string) string {
	hex := strings.TrimPrefix(data, "0x")
	if hex == "" {
		return "0"
	}
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return "0"
	}
	return n.String()
}

// sameAddr compares two addresses case-insensitively.
func sameAddr(a, b string) bool {
	return strings.EqualFold(a, b)
}

func lower(s string) string {
	return strings.ToLower(s)
}

func isKnownRouter(addr string) bool {
	_, ok := knownUniswapRouters[lower(addr)]
	return ok
}

// isPositive reports whether a decimal-string amount is strictly greater
// than zero. Comparison is arbitrary precision; malformed values are not
// positive.
func isPositive(value string) bool {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return false
	}
	return n.Sign() > 0
}

// logIndexDistance is the absolute distance between two log positions.
func logIndexDistance(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
