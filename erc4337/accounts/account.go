// Package accounts implements the per-family account abstraction: one
// type per smart-account implementation, each exposing the same
// capability set (address, init code, call encoding, stub signature,
// and the three signing operations) so the orchestration client in
// erc4337/client can drive any of them identically.
package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/aaerrors"
)

// PublicClient is the minimal on-chain read surface an account needs to
// resolve its counterfactual address when it can't compute CREATE2
// locally, and to check whether it's already deployed.
type PublicClient interface {
	// GetSenderAddress simulates entryPoint.getSenderAddress(initCode)
	// and returns the address it would revert with.
	GetSenderAddress(ctx context.Context, entryPoint common.Address, initCode []byte) (common.Address, error)
	// CodeAt returns the deployed code at addr, or nil if undeployed.
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
}

// Account is the capability set every account family implements:
// address derivation, factory/init-code production, call encoding, a
// stub signature for gas estimation, and the three signing operations
// an orchestration client drives.
type Account interface {
	// Address resolves the account's address per the policy in
	// resolver.resolve: pre-computed, then local CREATE2, then a public
	// client's getSenderAddress, else AddressUnavailable.
	Address(ctx context.Context, pub PublicClient) (common.Address, error)
	// Deployed reports whether the account has been deployed on-chain,
	// used by the orchestration client to decide whether to include
	// factory/factoryData.
	Deployed(ctx context.Context, pub PublicClient) (bool, error)
	// Factory returns the deploying factory address, or ZeroAddress if
	// this account has none (e.g. an EIP-7702 delegated EOA).
	Factory() common.Address
	// FactoryData returns the calldata passed to Factory to deploy this
	// account, or nil if none.
	FactoryData() []byte
	// EncodeCall encodes a single call as this account's execute calldata.
	EncodeCall(call erc4337.Call) ([]byte, error)
	// EncodeCalls encodes one or more calls as this account's execute
	// (or batch execute) calldata.
	EncodeCalls(calls []erc4337.Call) ([]byte, error)
	// StubSignature returns a signature-shaped placeholder of the exact
	// length the real signature will have, used during gas estimation.
	StubSignature() []byte
	// NonceKey returns this account's nonce key (0 for most families;
	// validator-derived for Kernel v0.3/Nexus/EIP-7702 Kernel).
	NonceKey() *big.Int
	// SignUserOpHash produces the final on-chain signature for a
	// userOpHash, wrapped per this family's convention.
	SignUserOpHash(hash common.Hash) ([]byte, error)
	// SignMessage implements EIP-1271-style message signing for this
	// account, wrapped per its family convention.
	SignMessage(message []byte) ([]byte, error)
	// SignTypedDataHash signs an already-computed EIP-712 digest under
	// this account's conventions.
	SignTypedDataHash(hash common.Hash) ([]byte, error)
}

// UserOpSigner is an optional capability for families whose signature
// must be computed over the full operation rather than a bare hash —
// Safe's SafeOp EIP-712 struct binds in the chain ID and the Safe
// address alongside the operation, so a userOpHash alone isn't enough.
// Client.Sign checks for this before falling back to SignUserOpHash.
type UserOpSigner interface {
	SignUserOp(chainID *big.Int, sender common.Address, uo *erc4337.UserOperationV07) ([]byte, error)
}

// resolver centralizes the address-resolution policy shared by every
// account family: a caller-supplied pre-computed address wins;
// otherwise a family that knows its CREATE2 recipe
// computes it locally; otherwise it falls back to a public client's
// getSenderAddress simulation; otherwise resolution fails.
type resolver struct {
	precomputed *common.Address
	cached      *common.Address

	entryPoint   common.Address
	factory      common.Address
	factoryData  []byte
	localCreate2 func() (common.Address, bool)
}

func (r *resolver) resolve(ctx context.Context, pub PublicClient) (common.Address, error) {
	if r.cached != nil {
		return *r.cached, nil
	}
	if r.precomputed != nil {
		r.cached = r.precomputed
		return *r.cached, nil
	}
	if r.localCreate2 != nil {
		if addr, ok := r.localCreate2(); ok {
			r.cached = &addr
			return addr, nil
		}
	}
	if pub == nil {
		return common.Address{}, aaerrors.AddressUnavailablef("no pre-computed address, no local CREATE2 recipe, and no public client resolver")
	}
	initCode := append(append([]byte{}, r.factory.Bytes()...), r.factoryData...)
	addr, err := pub.GetSenderAddress(ctx, r.entryPoint, initCode)
	if err != nil {
		return common.Address{}, aaerrors.Wrap(aaerrors.PublicRPC, "getSenderAddress", err)
	}
	r.cached = &addr
	return addr, nil
}

func (r *resolver) deployed(ctx context.Context, pub PublicClient) (bool, error) {
	addr, err := r.resolve(ctx, pub)
	if err != nil {
		return false, err
	}
	if pub == nil {
		return false, nil
	}
	code, err := pub.CodeAt(ctx, addr)
	if err != nil {
		return false, aaerrors.Wrap(aaerrors.PublicRPC, "getCode", err)
	}
	return len(code) > 0, nil
}

// create2Address computes keccak(0xff || factory || salt || keccak(initCode))[12:],
// the standard CREATE2 address derivation used by every factory-based
// family below.
func create2Address(factory common.Address, salt [32]byte, initCode []byte) common.Address {
	initCodeHash := crypto.Keccak256(initCode)
	payload := make([]byte, 0, 1+20+32+32)
	payload = append(payload, 0xff)
	payload = append(payload, factory.Bytes()...)
	payload = append(payload, salt[:]...)
	payload = append(payload, initCodeHash...)
	return common.BytesToAddress(crypto.Keccak256(payload)[12:])
}

// saltFromUint left-pads a salt value to 32 bytes.
func saltFromUint(n *big.Int) [32]byte {
	var out [32]byte
	if n != nil {
		n.FillBytes(out[:])
	}
	return out
}

var zeroNonceKey = big.NewInt(0)
