// Package authorization implements EIP-7702 authorization tuples: the
// signed (chainId, contractAddress, nonce) triples an EOA issues to
// delegate its code to a contract. The core only produces the signed
// tuple; attaching it to a type-0x04 transaction is a bundler-specific
// concern left to the caller.
package authorization

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Authorization is a signed EIP-7702 delegation tuple. It's go-ethereum's
// own SetCodeAuthorization, so a signed value here can be dropped
// straight into a SetCodeTx's AuthList without re-encoding.
type Authorization = types.SetCodeAuthorization

// Sign produces a signed Authorization delegating contractAddress's code
// to the EOA derived from owner, at the given nonce on chainID.
// go-ethereum's SignSetCode owns the RLP encoding, the 0x05 magic-byte
// prefix, and the digest itself, so this never re-derives them by hand.
func Sign(chainID *big.Int, contractAddress common.Address, nonce uint64, owner *ecdsa.PrivateKey) (*Authorization, error) {
	unsigned := types.SetCodeAuthorization{
		ChainID: *uint256.MustFromBig(chainID),
		Address: contractAddress,
		Nonce:   nonce,
	}
	signed, err := types.SignSetCode(owner, unsigned)
	if err != nil {
		return nil, err
	}
	return &signed, nil
}

// RecoverAuthority recovers the EOA address that signed a.
func RecoverAuthority(a *Authorization) (common.Address, error) {
	return a.Authority()
}
