package parser

import (
	"math/big"
	"strings"
)

// FormatTransferAmount renders a raw integer token amount as a decimal
// string scaled by the token's decimals, with trailing zeros trimmed.
// Arithmetic is arbitrary precision; malformed input renders as "0".
func FormatTransferAmount(amount string, decimals uint8) string {
	raw, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return "0"
	}
	if decimals == 0 {
		return raw.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, remainder := new(big.Int).QuoRem(raw, divisor, new(big.Int))

	if remainder.Sign() == 0 {
		return whole.String()
	}

	decimalPart := remainder.String()
	for len(decimalPart) < int(decimals) {
		decimalPart = "0" + decimalPart
	}
	decimalPart = strings.TrimRight(decimalPart, "0")
	return whole.String() + "." + decimalPart
}

// TruncateAddress shortens an address for display: 0x1234...abcd.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
