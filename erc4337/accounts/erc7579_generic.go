package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/erc7579"
)

// ERC7579Account is the shared implementation for account families that
// differ only in how their address/factory is derived but otherwise use
// plain ERC-7579 execute and raw-ECDSA-over-userOpHash signing: Nexus
// and Etherspot.
type ERC7579Account struct {
	owner   Owner
	factory common.Address
	resolv  *resolver
}

// NewERC7579Account constructs a generic ERC-7579 account. A non-nil
// localCreate2 computes the address locally; with a nil one the address
// comes from precomputed or a public client's getSenderAddress
// simulation. NewNexusAccount and NewEtherspotAccount both pass nil.
// Both families only run under EntryPoint v0.7.
func NewERC7579Account(owner Owner, factory common.Address, factoryData []byte, precomputed *common.Address, localCreate2 func() (common.Address, bool)) *ERC7579Account {
	a := &ERC7579Account{owner: owner, factory: factory}
	a.resolv = &resolver{
		precomputed:  precomputed,
		entryPoint:   erc4337.EntryPointV07,
		factory:      factory,
		factoryData:  factoryData,
		localCreate2: localCreate2,
	}
	return a
}

func (a *ERC7579Account) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *ERC7579Account) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *ERC7579Account) Factory() common.Address { return a.factory }
func (a *ERC7579Account) FactoryData() []byte      { return a.resolv.factoryData }
func (a *ERC7579Account) NonceKey() *big.Int       { return zeroNonceKey }

func (a *ERC7579Account) EncodeCall(call erc4337.Call) ([]byte, error) {
	return erc7579.EncodeCall(call), nil
}

func (a *ERC7579Account) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	return erc7579.EncodeCalls(calls)
}

func (a *ERC7579Account) StubSignature() []byte { return stubSignature65 }

func (a *ERC7579Account) SignUserOpHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignRawHash(hash)
}

func (a *ERC7579Account) SignMessage(message []byte) ([]byte, error) {
	return a.owner.SignPersonalMessage(message)
}

func (a *ERC7579Account) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignTypedDataHash(hash)
}

var _ Account = (*ERC7579Account)(nil)

// NewNexusAccount constructs a Nexus account. Its address is always
// resolved through a provided public client or caller-supplied
// precomputed value, since the core doesn't embed Nexus's factory
// bytecode hash.
func NewNexusAccount(owner Owner, factory common.Address, factoryData []byte, precomputed *common.Address) *ERC7579Account {
	return NewERC7579Account(owner, factory, factoryData, precomputed, nil)
}

// NewEtherspotAccount constructs an Etherspot modular account. Like
// Nexus it resolves via CREATE2 simulation unless the caller supplies a
// precomputed address, since the core doesn't embed Etherspot's runtime
// bytecode hash either.
func NewEtherspotAccount(owner Owner, factory common.Address, factoryData []byte, precomputed *common.Address) *ERC7579Account {
	return NewERC7579Account(owner, factory, factoryData, precomputed, nil)
}
