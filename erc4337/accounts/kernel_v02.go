package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/enc"
	"github.com/ethaccount/aa4337/erc4337/erc7579"
)

const (
	kernelV2ExecuteSelector = "0xb61d27f6"
	// kernelV2RootMode prefixes a sudo-validator (ECDSA-owner) signature;
	// Kernel v0.2's default/root execution mode.
	kernelV2RootMode = "0x00000000"
)

var kernelV2ExecuteArgs = func() abi.Arguments {
	uint8Type, _ := abi.NewType("uint8", "", nil)
	return abi.Arguments{{Type: legacyAddressType}, {Type: legacyUint256Type}, {Type: legacyBytesType}, {Type: uint8Type}}
}()

// KernelV02 implements ZeroDev's Kernel v0.2.4 account: an ERC-1967 proxy
// deployed by an "AdminLess" factory, execute(to,value,data,operation) /
// executeBatch(Execution[]), and ROOT_MODE-prefixed ECDSA signatures.
type KernelV02 struct {
	owner   Owner
	factory common.Address
	resolv  *resolver
}

// NewKernelV02 constructs a Kernel v0.2.4 account. factoryData is the
// AdminLess factory's createAccount(owner, index) calldata, supplied by
// the caller since the factory's exact ABI is deployment-specific.
// Kernel v0.2.4 only runs under EntryPoint v0.6.
func NewKernelV02(owner Owner, factory common.Address, factoryData []byte, precomputed *common.Address) *KernelV02 {
	a := &KernelV02{owner: owner, factory: factory}
	a.resolv = &resolver{precomputed: precomputed, entryPoint: erc4337.EntryPointV06, factory: factory, factoryData: factoryData}
	return a
}

func (a *KernelV02) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *KernelV02) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *KernelV02) Factory() common.Address { return a.factory }
func (a *KernelV02) FactoryData() []byte      { return a.resolv.factoryData }
func (a *KernelV02) NonceKey() *big.Int       { return zeroNonceKey }

func (a *KernelV02) EncodeCall(call erc4337.Call) ([]byte, error) {
	sel, _ := enc.HexDecode(kernelV2ExecuteSelector)
	body, err := kernelV2ExecuteArgs.Pack(call.To, valueOr0(call.Value), call.Data, uint8(0))
	if err != nil {
		return nil, err
	}
	return append(sel, body...), nil
}

func (a *KernelV02) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	if len(calls) == 0 {
		return nil, callsEmptyErr()
	}
	if len(calls) == 1 {
		return a.EncodeCall(calls[0])
	}
	// Kernel v0.2's executeBatch(Execution[]) shares the same
	// to/value/data tuple-array layout as ERC-7579's batch payload.
	payload, err := erc7579.EncodeBatch(calls)
	if err != nil {
		return nil, err
	}
	sel := enc.FunctionSelector("executeBatch((address,uint256,bytes)[])")
	return append(append([]byte{}, sel[:]...), payload...), nil
}

func (a *KernelV02) StubSignature() []byte {
	mode, _ := enc.HexDecode(kernelV2RootMode)
	return append(mode, stubSignature65...)
}

func (a *KernelV02) SignUserOpHash(hash common.Hash) ([]byte, error) {
	sig, err := a.owner.SignRawHash(hash)
	if err != nil {
		return nil, err
	}
	mode, _ := enc.HexDecode(kernelV2RootMode)
	return append(mode, sig...), nil
}

func (a *KernelV02) SignMessage(message []byte) ([]byte, error) {
	sig, err := a.owner.SignPersonalMessage(message)
	if err != nil {
		return nil, err
	}
	mode, _ := enc.HexDecode(kernelV2RootMode)
	return append(mode, sig...), nil
}

func (a *KernelV02) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	sig, err := a.owner.SignTypedDataHash(hash)
	if err != nil {
		return nil, err
	}
	mode, _ := enc.HexDecode(kernelV2RootMode)
	return append(mode, sig...), nil
}

var _ Account = (*KernelV02)(nil)
