package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
)

// Biconomy v2's deployment and execution selectors don't follow the
// standard "execute(...)"/"createAccount(...)" naming, so they're
// hardcoded here rather than derived via enc.FunctionSelector.
const (
	biconomyInitForSmartAccountSel    = "0x2ede3bc0" // initForSmartAccount(address owner)
	biconomyDeployCounterfactualSel   = "0xdf20ffbc" // deployCounterFactualAccount(address moduleSetupContract, bytes moduleSetupData, uint256 index)
	biconomyExecuteSel                = "0x0000189a" // execute_ncC(address,uint256,bytes)
	biconomyExecuteBatchSel           = "0x00004680" // executeBatch_y6U(address[],uint256[],bytes[])
)

var biconomyExecuteArgs = func() abi.Arguments {
	bytesT, _ := abi.NewType("bytes", "", nil)
	return abi.Arguments{{Type: legacyAddressType}, {Type: legacyUint256Type}, {Type: bytesT}}
}()

var biconomyExecuteBatchArgs = func() abi.Arguments {
	addrArr, _ := abi.NewType("address[]", "", nil)
	uintArr, _ := abi.NewType("uint256[]", "", nil)
	bytesArr, _ := abi.NewType("bytes[]", "", nil)
	return abi.Arguments{{Type: addrArr}, {Type: uintArr}, {Type: bytesArr}}
}()

// biconomySigWrapperArgs packs the (bytes signature, address
// moduleAddress) tuple Biconomy's default ECDSA validation module
// expects wrapped around the raw owner signature.
var biconomySigWrapperArgs = func() abi.Arguments {
	bytesT, _ := abi.NewType("bytes", "", nil)
	return abi.Arguments{{Type: bytesT}, {Type: legacyAddressType}}
}()

// BiconomyAccount implements Biconomy's legacy (v2) smart account:
// CREATE2 deployment via deployCounterFactualAccount with an ECDSA
// ownership module's init data, execute_ncC/executeBatch_y6U call
// encoding, and signatures ABI-wrapped with the validation module
// address so the account knows which module to delegate validation to.
type BiconomyAccount struct {
	owner          Owner
	factory        common.Address
	ecdsaModule    common.Address
	resolv         *resolver
}

// NewBiconomyAccount constructs a Biconomy v2 account. factory is the
// SmartAccountFactory, ecdsaModule is the installed ECDSA ownership
// module whose address every signature gets wrapped with, and index
// selects among counterfactual deployments for the same owner.
// Biconomy v2 (legacy) only runs under EntryPoint v0.6.
func NewBiconomyAccount(owner Owner, factory common.Address, ecdsaModule common.Address, index *big.Int, precomputed *common.Address) (*BiconomyAccount, error) {
	if index == nil {
		index = big.NewInt(0)
	}

	ownerAddrArgs := abi.Arguments{{Type: legacyAddressType}}
	moduleInitData, err := ownerAddrArgs.Pack(owner.Address())
	if err != nil {
		return nil, err
	}
	initSel, err := hexSel(biconomyInitForSmartAccountSel)
	if err != nil {
		return nil, err
	}
	moduleSetupData := append(initSel, moduleInitData...)

	deployArgs := abi.Arguments{{Type: legacyAddressType}, {Type: legacyBytesType}, {Type: legacyUint256Type}}
	deployBody, err := deployArgs.Pack(ecdsaModule, moduleSetupData, index)
	if err != nil {
		return nil, err
	}
	deploySel, err := hexSel(biconomyDeployCounterfactualSel)
	if err != nil {
		return nil, err
	}
	factoryData := append(deploySel, deployBody...)

	a := &BiconomyAccount{owner: owner, factory: factory, ecdsaModule: ecdsaModule}
	a.resolv = &resolver{precomputed: precomputed, entryPoint: erc4337.EntryPointV06, factory: factory, factoryData: factoryData}
	return a, nil
}

func (a *BiconomyAccount) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *BiconomyAccount) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *BiconomyAccount) Factory() common.Address { return a.factory }
func (a *BiconomyAccount) FactoryData() []byte      { return a.resolv.factoryData }
func (a *BiconomyAccount) NonceKey() *big.Int       { return zeroNonceKey }

func (a *BiconomyAccount) EncodeCall(call erc4337.Call) ([]byte, error) {
	sel, err := hexSel(biconomyExecuteSel)
	if err != nil {
		return nil, err
	}
	body, err := biconomyExecuteArgs.Pack(call.To, valueOr0(call.Value), call.Data)
	if err != nil {
		return nil, err
	}
	return append(sel, body...), nil
}

func (a *BiconomyAccount) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
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
	sel, err := hexSel(biconomyExecuteBatchSel)
	if err != nil {
		return nil, err
	}
	body, err := biconomyExecuteBatchArgs.Pack(tos, values, datas)
	if err != nil {
		return nil, err
	}
	return append(sel, body...), nil
}

// wrapSignature packs sig alongside the ECDSA validation module address,
// the shape Biconomy's isValidSignature/validateUserOp expect.
func (a *BiconomyAccount) wrapSignature(sig []byte) ([]byte, error) {
	return biconomySigWrapperArgs.Pack(sig, a.ecdsaModule)
}

func (a *BiconomyAccount) StubSignature() []byte {
	wrapped, err := a.wrapSignature(stubSignature65)
	if err != nil {
		return stubSignature65
	}
	return wrapped
}

func (a *BiconomyAccount) SignUserOpHash(hash common.Hash) ([]byte, error) {
	sig, err := a.owner.SignRawHash(hash)
	if err != nil {
		return nil, err
	}
	return a.wrapSignature(sig)
}

func (a *BiconomyAccount) SignMessage(message []byte) ([]byte, error) {
	sig, err := a.owner.SignPersonalMessage(message)
	if err != nil {
		return nil, err
	}
	return a.wrapSignature(sig)
}

func (a *BiconomyAccount) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	sig, err := a.owner.SignTypedDataHash(hash)
	if err != nil {
		return nil, err
	}
	return a.wrapSignature(sig)
}

var _ Account = (*BiconomyAccount)(nil)
