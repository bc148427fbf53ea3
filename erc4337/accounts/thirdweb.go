package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
)

// ThirdwebAccount implements thirdweb's smart-wallet factory: CREATE2
// deployment, execute/executeBatch, raw ECDSA signatures.
type ThirdwebAccount struct {
	owner   Owner
	factory common.Address
	salt    *big.Int
	resolv  *resolver
}

// NewThirdwebAccount constructs a ThirdwebAccount. entryPoint is the
// EntryPoint this instance targets (v0.6 or v0.7 — thirdweb supports
// either), used when falling back to a public client's
// getSenderAddress simulation.
func NewThirdwebAccount(owner Owner, factory common.Address, salt *big.Int, entryPoint common.Address, precomputed *common.Address) *ThirdwebAccount {
	if salt == nil {
		salt = big.NewInt(0)
	}
	factoryData, _ := createAccountArgs.Pack(owner.Address(), salt)
	factoryData = append(append([]byte{}, simpleCreateAccountSel[:]...), factoryData...)

	a := &ThirdwebAccount{owner: owner, factory: factory, salt: salt}
	a.resolv = &resolver{precomputed: precomputed, entryPoint: entryPoint, factory: factory, factoryData: factoryData}
	return a
}

func (a *ThirdwebAccount) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *ThirdwebAccount) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *ThirdwebAccount) Factory() common.Address { return a.factory }
func (a *ThirdwebAccount) FactoryData() []byte      { return a.resolv.factoryData }
func (a *ThirdwebAccount) NonceKey() *big.Int       { return zeroNonceKey }

func (a *ThirdwebAccount) EncodeCall(call erc4337.Call) ([]byte, error) {
	return encodeLegacyExecute(call)
}

func (a *ThirdwebAccount) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	return encodeLegacyCalls(calls)
}

func (a *ThirdwebAccount) StubSignature() []byte { return stubSignature65 }

func (a *ThirdwebAccount) SignUserOpHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignRawHash(hash)
}

func (a *ThirdwebAccount) SignMessage(message []byte) ([]byte, error) {
	return a.owner.SignPersonalMessage(message)
}

func (a *ThirdwebAccount) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignTypedDataHash(hash)
}

var _ Account = (*ThirdwebAccount)(nil)
