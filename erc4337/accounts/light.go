package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/enc"
	"github.com/ethaccount/aa4337/erc4337/typeddata"
)

// LightVersion distinguishes Alchemy Light Account v1.1.0 from v2.0.0:
// v2.0 prepends a 1-byte signature-type discriminator and wraps
// messages in a LightAccountMessage EIP-712 struct.
type LightVersion int

const (
	LightV1 LightVersion = iota
	LightV2
)

const (
	lightCreateAccountSelector = "0x5fbfb9cf"
	lightExecuteSelector       = "0xb61d27f6"
	lightExecuteBatchSelector  = "0x47e1da2a"

	// lightSigTypeEOA is the v2.0.0 signature-type byte for a plain
	// ECDSA owner signature (as opposed to a contract-owner signature).
	lightSigTypeEOA byte = 0x00
)

// LightAccount implements Alchemy's LightAccountFactory-deployed account.
type LightAccount struct {
	owner   Owner
	version LightVersion
	factory common.Address
	salt    *big.Int
	resolv  *resolver
}

// NewLightAccount constructs a LightAccount of the given version.
// entryPoint is the EntryPoint this instance targets (v1.1.0 runs under
// v0.6, v2.0.0 under v0.7), used when falling back to a public client's
// getSenderAddress simulation.
func NewLightAccount(owner Owner, version LightVersion, factory common.Address, salt *big.Int, entryPoint common.Address, precomputed *common.Address) *LightAccount {
	if salt == nil {
		salt = big.NewInt(0)
	}
	sel, _ := enc.HexDecode(lightCreateAccountSelector)
	body, _ := createAccountArgs.Pack(owner.Address(), salt)
	factoryData := append(append([]byte{}, sel...), body...)

	a := &LightAccount{owner: owner, version: version, factory: factory, salt: salt}
	a.resolv = &resolver{
		precomputed: precomputed,
		entryPoint:  entryPoint,
		factory:     factory,
		factoryData: factoryData,
	}
	return a
}

func (a *LightAccount) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *LightAccount) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *LightAccount) Factory() common.Address { return a.factory }
func (a *LightAccount) FactoryData() []byte      { return a.resolv.factoryData }
func (a *LightAccount) NonceKey() *big.Int       { return zeroNonceKey }

func (a *LightAccount) EncodeCall(call erc4337.Call) ([]byte, error) {
	sel, _ := enc.HexDecode(lightExecuteSelector)
	body, err := executeArgs.Pack(call.To, valueOr0(call.Value), call.Data)
	if err != nil {
		return nil, err
	}
	return append(sel, body...), nil
}

func (a *LightAccount) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	if len(calls) == 0 {
		return nil, callsEmptyErr()
	}
	if len(calls) == 1 {
		return a.EncodeCall(calls[0])
	}
	tos := make([]common.Address, len(calls))
	values := make([]*big.Int, len(calls))
	datas := make([][]byte, len(calls))
	for i, c := range calls {
		tos[i] = c.To
		values[i] = valueOr0(c.Value)
		datas[i] = c.Data
	}
	sel, _ := enc.HexDecode(lightExecuteBatchSelector)
	body, err := executeBatchArgs.Pack(tos, values, datas)
	if err != nil {
		return nil, err
	}
	return append(sel, body...), nil
}

func (a *LightAccount) StubSignature() []byte {
	if a.version == LightV2 {
		return append([]byte{lightSigTypeEOA}, stubSignature65...)
	}
	return stubSignature65
}

func (a *LightAccount) SignUserOpHash(hash common.Hash) ([]byte, error) {
	sig, err := a.owner.SignRawHash(hash)
	if err != nil {
		return nil, err
	}
	if a.version == LightV2 {
		return append([]byte{lightSigTypeEOA}, sig...), nil
	}
	return sig, nil
}

// lightMessageTypedData builds the LightAccountMessage EIP-712 type set
// and message value v2.0.0 wraps arbitrary messages in before requesting
// a signature; SignMessage supplies the domain.
func lightMessageTypedData(message []byte) (typeddata.TypeSet, map[string]typeddata.Value) {
	types := typeddata.TypeSet{
		"LightAccountMessage": {{Name: "message", Type: "bytes"}},
	}
	return types, map[string]typeddata.Value{"message": typeddata.Bytes(message)}
}

func (a *LightAccount) SignMessage(message []byte) ([]byte, error) {
	if a.version != LightV2 {
		sig, err := a.owner.SignPersonalMessage(message)
		if err != nil {
			return nil, err
		}
		return sig, nil
	}

	domain := typeddata.Domain{Name: strPtr("LightAccount"), Version: strPtr("2"), ChainId: nil}
	types, values := lightMessageTypedData(message)
	hash, err := typeddata.Hash(domain, types, "LightAccountMessage", values)
	if err != nil {
		return nil, err
	}
	sig, err := a.owner.SignTypedDataHash(hash)
	if err != nil {
		return nil, err
	}
	return append([]byte{lightSigTypeEOA}, sig...), nil
}

func (a *LightAccount) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	sig, err := a.owner.SignTypedDataHash(hash)
	if err != nil {
		return nil, err
	}
	if a.version == LightV2 {
		return append([]byte{lightSigTypeEOA}, sig...), nil
	}
	return sig, nil
}

func strPtr(s string) *string { return &s }

var _ Account = (*LightAccount)(nil)
