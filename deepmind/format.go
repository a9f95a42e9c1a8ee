package deepmind

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Protocol text conventions for space-delimited fields: unprefixed lowercase
// hexadecimal, with "." standing in for zero-valued addresses, hashes and
// big integers as well as for empty byte strings. Plain uint64 quantities
// (gas, nonces, indices, block numbers) print in decimal, see Uint64.
//
// Fields embedded in JSON sub-structures do not go through these helpers,
// they follow the JSON sub-format's own 0x-prefixed convention.

// Addr formats an address, "." when zero.
func Addr(in common.Address) string {
	if in == (common.Address{}) {
		return "."
	}

	return hex.EncodeToString(in[:])
}

// Hash formats a 32-byte hash, "." when zero.
func Hash(in common.Hash) string {
	if in == (common.Hash{}) {
		return "."
	}

	return hex.EncodeToString(in[:])
}

// Hex formats an arbitrary byte string, "." when empty.
func Hex(in []byte) string {
	if len(in) == 0 {
		return "."
	}

	return hex.EncodeToString(in)
}

// BigInt formats an arbitrary-precision integer, "." when nil or zero.
func BigInt(in *big.Int) string {
	if in == nil || in.Sign() == 0 {
		return "."
	}

	return in.Text(16)
}

// Uint256 formats a 256-bit integer, "." when nil or zero.
func Uint256(in *uint256.Int) string {
	if in == nil || in.IsZero() {
		return "."
	}

	return in.Hex()[2:]
}

// Uint64 formats plain 64-bit quantities. Those are decimal on the wire, the
// zero sentinel does not apply to them.
func Uint64(in uint64) string {
	return strconv.FormatUint(in, 10)
}

func Bool(in bool) string {
	if in {
		return "true"
	}

	return "false"
}
