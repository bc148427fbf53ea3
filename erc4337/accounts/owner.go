package accounts

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethaccount/aa4337/erc4337/typeddata"
)

// Owner is the signing capability an account family wraps into its
// on-chain signature format. A single owner key can back many accounts
// (different factories, different salts) since the owner only ever
// signs digests the account hands it.
type Owner interface {
	Address() common.Address
	// SignRawHash signs a 32-byte digest with no prefix, producing a
	// 65-byte [R || S || V] signature with V in {27, 28}.
	SignRawHash(hash common.Hash) ([]byte, error)
	// SignPersonalMessage wraps message in the EIP-191 personal-sign
	// prefix before signing.
	SignPersonalMessage(message []byte) ([]byte, error)
	// SignTypedDataHash signs an already-computed EIP-712 digest. Callers
	// compute the digest via the typeddata package and pass it through.
	SignTypedDataHash(hash common.Hash) ([]byte, error)
}

// PrivateKeyOwner is the default Owner backed by a raw ECDSA key, the
// signer shape the core expects callers to supply for EOA-owned
// accounts.
type PrivateKeyOwner struct {
	key *ecdsa.PrivateKey
}

// NewPrivateKeyOwner wraps an ECDSA private key as an Owner.
func NewPrivateKeyOwner(key *ecdsa.PrivateKey) *PrivateKeyOwner {
	return &PrivateKeyOwner{key: key}
}

func (o *PrivateKeyOwner) Address() common.Address {
	return crypto.PubkeyToAddress(o.key.PublicKey)
}

// signAndNormalize signs digest and rewrites the recovery id into the
// {27, 28} range go-ethereum's crypto.Sign omits by default.
func (o *PrivateKeyOwner) signAndNormalize(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, o.key)
	if err != nil {
		return nil, err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

func (o *PrivateKeyOwner) SignRawHash(hash common.Hash) ([]byte, error) {
	return o.signAndNormalize(hash.Bytes())
}

func (o *PrivateKeyOwner) SignPersonalMessage(message []byte) ([]byte, error) {
	digest := typeddata.HashPersonalMessage(message)
	return o.signAndNormalize(digest.Bytes())
}

func (o *PrivateKeyOwner) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	return o.signAndNormalize(hash.Bytes())
}

var _ Owner = (*PrivateKeyOwner)(nil)

// concatSignatures joins owner signatures in order, the shape a
// multi-owner account (e.g. Safe) expects on-chain.
func concatSignatures(sigs ...[]byte) []byte {
	var out []byte
	for _, s := range sigs {
		out = append(out, s...)
	}
	return out
}
