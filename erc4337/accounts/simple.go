package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/enc"
)

var (
	createAccountArgs        = abi.Arguments{{Type: legacyAddressType}, {Type: legacyUint256Type}}
	simpleCreateAccountSel   = enc.FunctionSelector("createAccount(address,uint256)")
)

// stubSignature65 is a placeholder ECDSA signature, the exact length a
// real one has, for use during gas estimation.
var stubSignature65 = func() []byte {
	b := make([]byte, 65)
	for i := range b {
		b[i] = 0xff
	}
	b[64] = 0x1c
	return b
}()

// SimpleAccount implements the eth-infinitism-style SimpleAccount:
// CREATE2 via SimpleAccountFactory.createAccount(owner, salt),
// execute/executeBatch, raw ECDSA signatures over the userOpHash.
type SimpleAccount struct {
	owner   Owner
	factory common.Address
	salt    *big.Int
	resolv  *resolver
}

// NewSimpleAccount constructs a SimpleAccount bound to owner, deployed
// (if needed) by factory with the given salt. entryPoint is the
// EntryPoint this instance targets (v0.6 or v0.7 — Simple supports
// either), used when falling back to a public client's
// getSenderAddress simulation.
func NewSimpleAccount(owner Owner, factory common.Address, salt *big.Int, entryPoint common.Address, precomputed *common.Address) *SimpleAccount {
	if salt == nil {
		salt = big.NewInt(0)
	}
	factoryData, _ := createAccountArgs.Pack(owner.Address(), salt)
	factoryData = append(append([]byte{}, simpleCreateAccountSel[:]...), factoryData...)

	a := &SimpleAccount{owner: owner, factory: factory, salt: salt}
	a.resolv = &resolver{
		precomputed: precomputed,
		entryPoint:  entryPoint,
		factory:     factory,
		factoryData: factoryData,
		localCreate2: func() (common.Address, bool) {
			return common.Address{}, false // runtime bytecode hash unknown to the core; defer to a public client
		},
	}
	return a
}

func (a *SimpleAccount) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *SimpleAccount) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *SimpleAccount) Factory() common.Address { return a.factory }
func (a *SimpleAccount) FactoryData() []byte      { return a.resolv.factoryData }
func (a *SimpleAccount) NonceKey() *big.Int       { return zeroNonceKey }

func (a *SimpleAccount) EncodeCall(call erc4337.Call) ([]byte, error) {
	return encodeLegacyExecute(call)
}

func (a *SimpleAccount) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	return encodeLegacyCalls(calls)
}

func (a *SimpleAccount) StubSignature() []byte { return stubSignature65 }

func (a *SimpleAccount) SignUserOpHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignRawHash(hash)
}

func (a *SimpleAccount) SignMessage(message []byte) ([]byte, error) {
	return a.owner.SignPersonalMessage(message)
}

func (a *SimpleAccount) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignTypedDataHash(hash)
}

var _ Account = (*SimpleAccount)(nil)
