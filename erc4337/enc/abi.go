package enc

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const wordSize = 32

// EncodeAddress ABI-encodes an address as a 32-byte left-padded word.
func EncodeAddress(a common.Address) []byte {
	out := make([]byte, wordSize)
	copy(out[wordSize-common.AddressLength:], a.Bytes())
	return out
}

// EncodeUint256 ABI-encodes n as a 32-byte big-endian word.
func EncodeUint256(n *big.Int) []byte {
	if n == nil {
		n = big.NewInt(0)
	}
	out := make([]byte, wordSize)
	n.FillBytes(out)
	return out
}

// EncodeBool ABI-encodes b as a 32-byte word with the low bit set.
func EncodeBool(b bool) []byte {
	out := make([]byte, wordSize)
	if b {
		out[wordSize-1] = 1
	}
	return out
}

// EncodeBytes32 right-pads b (accepting shorter input) into a single word.
func EncodeBytes32(b []byte) []byte {
	if len(b) > wordSize {
		b = b[:wordSize]
	}
	out := make([]byte, wordSize)
	copy(out, b)
	return out
}

// padTo32 rounds n up to the next multiple of 32.
func padTo32(n int) int {
	rem := n % wordSize
	if rem == 0 {
		return n
	}
	return n + (wordSize - rem)
}

// EncodeBytes ABI-encodes a dynamic bytes value: a 32-byte length word
// followed by the data, right-padded to a 32-byte boundary.
func EncodeBytes(b []byte) []byte {
	out := make([]byte, 0, wordSize+padTo32(len(b)))
	out = append(out, EncodeUint256(big.NewInt(int64(len(b))))...)
	padded := make([]byte, padTo32(len(b)))
	copy(padded, b)
	out = append(out, padded...)
	return out
}

// FunctionSelector returns the first 4 bytes of keccak256(signature),
// where signature is the canonical "name(type1,type2,...)" ASCII string.
func FunctionSelector(signature string) [4]byte {
	h := crypto.Keccak256([]byte(signature))
	var sel [4]byte
	copy(sel[:], h[:4])
	return sel
}

// Part is one element of a mixed static/dynamic ABI parameter list, as
// fed to EncodeWithDynamics.
type Part struct {
	IsStatic bool
	// Static payload, exactly 32 bytes, used when IsStatic is true.
	Static []byte
	// Dynamic payload, ABI-encoded as a self-contained dynamic value
	// (e.g. the output of EncodeBytes), used when IsStatic is false.
	Dynamic []byte
}

// EncodeWithDynamics lays out a sequence of static and dynamic parameters
// the way Solidity's ABI encoder does for a flat parameter list: the head
// is one word per parameter (the raw static value, or an offset pointer
// for dynamic ones), followed by the dynamic tail in order. Offsets are
// measured from the start of the parameter block and are always a
// multiple of 32.
func EncodeWithDynamics(parts []Part) []byte {
	head := make([]byte, wordSize*len(parts))
	var tail []byte
	tailStart := wordSize * len(parts)

	for i, p := range parts {
		if p.IsStatic {
			copy(head[i*wordSize:(i+1)*wordSize], p.Static)
			continue
		}
		offset := tailStart + len(tail)
		copy(head[i*wordSize:(i+1)*wordSize], EncodeUint256(big.NewInt(int64(offset))))
		tail = append(tail, p.Dynamic...)
	}

	return append(head, tail...)
}

// MustSelectorHex renders a 4-byte selector as a "0x"-prefixed hex string,
// a convenience for constant definitions and tests.
func MustSelectorHex(sig string) string {
	sel := FunctionSelector(sig)
	return fmt.Sprintf("0x%x", sel)
}
