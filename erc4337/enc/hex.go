// Package enc implements the low-level hex/bytes and ABI encoding
// primitives the rest of the core builds on: fixed-length big-integer to
// hex conversion, left/right padding, and the static/dynamic ABI layout
// rules used by account call-data encoders.
package enc

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// StripPrefix removes a leading "0x"/"0X" if present.
func StripPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// WithPrefix ensures s begins with "0x".
func WithPrefix(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}

// HexDecode tolerates a missing "0x" prefix, unlike hexutil.Decode.
func HexDecode(s string) ([]byte, error) {
	return hexutil.Decode(WithPrefix(s))
}

// HexFromBytes renders b as a "0x"-prefixed lowercase hex string.
func HexFromBytes(b []byte) string {
	return hexutil.Encode(b)
}

// HexFromUint left-pads the big-endian bytes of n to byteLen bytes and
// renders the result as "0x"-prefixed hex. It fails if n exceeds the
// range representable in byteLen bytes.
func HexFromUint(n *big.Int, byteLen int) (string, error) {
	if n.Sign() < 0 {
		return "", fmt.Errorf("enc: negative value %s has no unsigned hex form", n.String())
	}
	max := new(big.Int).Lsh(big.NewInt(1), uint(8*byteLen))
	if n.Cmp(max) >= 0 {
		return "", fmt.Errorf("enc: value %s exceeds %d bytes", n.String(), byteLen)
	}
	b := make([]byte, byteLen)
	n.FillBytes(b)
	return HexFromBytes(b), nil
}

// HexToUint parses a "0x"-prefixed or bare hex string into a big.Int.
func HexToUint(s string) (*big.Int, error) {
	s = StripPrefix(s)
	if s == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("enc: invalid hex integer %q", s)
	}
	return n, nil
}

// ByteLen returns the number of bytes a hex string decodes to.
func ByteLen(s string) int {
	s = StripPrefix(s)
	return (len(s) + 1) / 2
}

// PadLeft left-pads (big-endian, zero-fill) the decoded bytes of hex to
// byteLen bytes and re-encodes as hex.
func PadLeft(hex string, byteLen int) (string, error) {
	b, err := HexDecode(hex)
	if err != nil {
		return "", err
	}
	if len(b) > byteLen {
		return "", fmt.Errorf("enc: value of %d bytes does not fit in %d bytes", len(b), byteLen)
	}
	out := make([]byte, byteLen)
	copy(out[byteLen-len(b):], b)
	return HexFromBytes(out), nil
}

// PadRight right-pads (zero-fill) the decoded bytes of hex to byteLen
// bytes and re-encodes as hex.
func PadRight(hex string, byteLen int) (string, error) {
	b, err := HexDecode(hex)
	if err != nil {
		return "", err
	}
	if len(b) > byteLen {
		return "", fmt.Errorf("enc: value of %d bytes does not fit in %d bytes", len(b), byteLen)
	}
	out := make([]byte, byteLen)
	copy(out, b)
	return HexFromBytes(out), nil
}

// Slice returns hex[start:end] measured in bytes, re-encoded with a "0x" prefix.
func Slice(hex string, start, end int) (string, error) {
	b, err := HexDecode(hex)
	if err != nil {
		return "", err
	}
	if start < 0 || end > len(b) || start > end {
		return "", fmt.Errorf("enc: slice [%d:%d] out of range for %d bytes", start, end, len(b))
	}
	return HexFromBytes(b[start:end]), nil
}

// Concat concatenates the decoded bytes of every hex string in order.
func Concat(hexes ...string) (string, error) {
	var out []byte
	for _, h := range hexes {
		b, err := HexDecode(h)
		if err != nil {
			return "", err
		}
		out = append(out, b...)
	}
	return HexFromBytes(out), nil
}
