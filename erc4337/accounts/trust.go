package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
)

// Trust Wallet's Barz account is an EIP-2535 diamond proxy; its
// AccountFacet exposes the same execute/executeBatch shape as the
// legacy families, so only the deployment selector differs.
var trustCreateAccountSel = func() [4]byte {
	sel, _ := hexSel("0x00dd2e44") // createAccount(bytes publicKeyOrAddress, uint256 salt)
	var out [4]byte
	copy(out[:], sel)
	return out
}()

var trustCreateAccountArgs = func() abi.Arguments {
	return abi.Arguments{{Type: legacyBytesType}, {Type: legacyUint256Type}}
}()

// TrustAccount implements Trust Wallet's Barz diamond-proxy account:
// CREATE2 deployment through BarzFactory.createAccount, execute/
// executeBatch on the AccountFacet, and raw ECDSA over the userOpHash
// via the installed SECP256K1VerificationFacet.
type TrustAccount struct {
	owner   Owner
	factory common.Address
	resolv  *resolver
}

// NewTrustAccount constructs a Barz account. salt selects among
// counterfactual deployments for the same owner key. Trust/Barz only
// runs under EntryPoint v0.6.
func NewTrustAccount(owner Owner, factory common.Address, salt *big.Int, precomputed *common.Address) (*TrustAccount, error) {
	if salt == nil {
		salt = big.NewInt(0)
	}
	ownerBytes := owner.Address().Bytes()
	body, err := trustCreateAccountArgs.Pack(ownerBytes, salt)
	if err != nil {
		return nil, err
	}
	factoryData := append(append([]byte{}, trustCreateAccountSel[:]...), body...)

	a := &TrustAccount{owner: owner, factory: factory}
	a.resolv = &resolver{precomputed: precomputed, entryPoint: erc4337.EntryPointV06, factory: factory, factoryData: factoryData}
	return a, nil
}

func (a *TrustAccount) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *TrustAccount) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *TrustAccount) Factory() common.Address { return a.factory }
func (a *TrustAccount) FactoryData() []byte      { return a.resolv.factoryData }
func (a *TrustAccount) NonceKey() *big.Int       { return zeroNonceKey }

func (a *TrustAccount) EncodeCall(call erc4337.Call) ([]byte, error) {
	return encodeLegacyExecute(call)
}

func (a *TrustAccount) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	return encodeLegacyCalls(calls)
}

func (a *TrustAccount) StubSignature() []byte { return stubSignature65 }

func (a *TrustAccount) SignUserOpHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignRawHash(hash)
}

func (a *TrustAccount) SignMessage(message []byte) ([]byte, error) {
	return a.owner.SignPersonalMessage(message)
}

func (a *TrustAccount) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignTypedDataHash(hash)
}

var _ Account = (*TrustAccount)(nil)
