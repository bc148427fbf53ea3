// Package typeddata implements EIP-191 personal/raw message hashing and
// EIP-712 typed-data hashing, including nested structs, arrays, and the
// dynamic encoding rules custom account signature schemes rely on.
package typeddata

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashPersonalMessage computes the EIP-191 personal-message hash:
// keccak256("\x19Ethereum Signed Message:\n" || len(m) || m).
func HashPersonalMessage(message []byte) common.Hash {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256Hash([]byte(prefix), message)
}

// HashRawMessage treats a 32-byte hash as the personal-sign payload,
// the convention Kernel v0.3 uses for operation-hash signing:
// keccak256("\x19Ethereum Signed Message:\n32" || hash).
func HashRawMessage(hash common.Hash) common.Hash {
	return HashPersonalMessage(hash.Bytes())
}
