package accounts

import (
	"bytes"
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/aaerrors"
	"github.com/ethaccount/aa4337/erc4337/enc"
	"github.com/ethaccount/aa4337/erc4337/typeddata"
)

var (
	safeSetupSelector                     = enc.FunctionSelector("setup(address[],uint256,address,bytes,address,address,uint256,address)")
	safeEnableModulesSelector             = enc.FunctionSelector("enableModules(address[])")
	safeExecuteUserOpWithErrorStrSelector = enc.FunctionSelector("executeUserOpWithErrorString(address,uint256,bytes,uint8)")
	safeCreateProxyWithNonceSelector      = enc.FunctionSelector("createProxyWithNonce(address,bytes,uint256)")
)

var safeSetupArgs = func() abi.Arguments {
	addrArr, _ := abi.NewType("address[]", "", nil)
	bytesT, _ := abi.NewType("bytes", "", nil)
	return abi.Arguments{
		{Type: addrArr}, {Type: legacyUint256Type}, {Type: legacyAddressType}, {Type: bytesT},
		{Type: legacyAddressType}, {Type: legacyAddressType}, {Type: legacyUint256Type}, {Type: legacyAddressType},
	}
}()

var safeEnableModulesArgs = func() abi.Arguments {
	addrArr, _ := abi.NewType("address[]", "", nil)
	return abi.Arguments{{Type: addrArr}}
}()

var safeExecuteArgs = func() abi.Arguments {
	bytesT, _ := abi.NewType("bytes", "", nil)
	uint8T, _ := abi.NewType("uint8", "", nil)
	return abi.Arguments{{Type: legacyAddressType}, {Type: legacyUint256Type}, {Type: bytesT}, {Type: uint8T}}
}()

var safeCreateProxyArgs = func() abi.Arguments {
	bytesT, _ := abi.NewType("bytes", "", nil)
	return abi.Arguments{{Type: legacyAddressType}, {Type: bytesT}, {Type: legacyUint256Type}}
}()

// SafeAccount implements a Safe smart account driven through the Safe
// 4337 module: CREATE2 deployment via the proxy factory, init through
// Safe's own setup() plus enabling the 4337 module, executing calls via
// executeUserOpWithErrorString, and EIP-712 SafeOp signatures
// concatenated across owners in ascending address order.
type SafeAccount struct {
	owners           []Owner
	threshold        uint64
	module           common.Address // Safe4337Module, also the execute target
	singleton        common.Address
	proxyFactory     common.Address
	fallbackHandler  common.Address
	moduleSetup      common.Address
	saltNonce        *big.Int
	entryPoint       common.Address
	firstOperation   bool // caller-supplied SafeConfig.FirstOperation; stored only, no encoding path reads it
	resolv           *resolver
}

// SafeConfig bundles the deployment-time parameters a Safe account
// needs, since unlike single-owner families Safe has no single obvious
// "owner + salt" shape.
type SafeConfig struct {
	Owners          []Owner
	Threshold       uint64
	Module          common.Address
	Singleton       common.Address
	ProxyFactory    common.Address
	FallbackHandler common.Address
	ModuleSetup     common.Address
	SaltNonce       *big.Int
	// EntryPoint is the EntryPoint this instance targets (v0.6 or v0.7
	// — Safe supports either), used both in the SafeOp typed-data
	// struct and when falling back to a public client's
	// getSenderAddress simulation.
	EntryPoint common.Address
	// FirstOperation marks the operation as the first one for this
	// counterfactual Safe. The account stores the flag; call data,
	// factory data and signatures are the same whether it is set or
	// not, and no ERC-7579 launchpad setup is encoded.
	FirstOperation bool
	Precomputed    *common.Address
}

// NewSafeAccount constructs a SafeAccount from cfg.
func NewSafeAccount(cfg SafeConfig) (*SafeAccount, error) {
	if len(cfg.Owners) == 0 {
		return nil, aaerrors.BadInputf("safe account requires at least one owner")
	}
	saltNonce := cfg.SaltNonce
	if saltNonce == nil {
		saltNonce = big.NewInt(0)
	}

	ownerAddrs := make([]common.Address, len(cfg.Owners))
	for i, o := range cfg.Owners {
		ownerAddrs[i] = o.Address()
	}

	enableModulesData, err := safeEnableModulesArgs.Pack([]common.Address{cfg.Module})
	if err != nil {
		return nil, err
	}
	enableModulesCall := append(append([]byte{}, safeEnableModulesSelector[:]...), enableModulesData...)

	setupData, err := safeSetupArgs.Pack(
		ownerAddrs, new(big.Int).SetUint64(cfg.Threshold), cfg.ModuleSetup, enableModulesCall,
		cfg.FallbackHandler, erc4337.ZeroAddress, big.NewInt(0), erc4337.ZeroAddress,
	)
	if err != nil {
		return nil, err
	}
	setupCall := append(append([]byte{}, safeSetupSelector[:]...), setupData...)

	factoryBody, err := safeCreateProxyArgs.Pack(cfg.Singleton, setupCall, saltNonce)
	if err != nil {
		return nil, err
	}
	factoryData := append(append([]byte{}, safeCreateProxyWithNonceSelector[:]...), factoryBody...)

	a := &SafeAccount{
		owners: cfg.Owners, threshold: cfg.Threshold, module: cfg.Module, singleton: cfg.Singleton,
		proxyFactory: cfg.ProxyFactory, fallbackHandler: cfg.FallbackHandler, moduleSetup: cfg.ModuleSetup,
		saltNonce: saltNonce, entryPoint: cfg.EntryPoint, firstOperation: cfg.FirstOperation,
	}
	a.resolv = &resolver{
		precomputed: cfg.Precomputed,
		entryPoint:  cfg.EntryPoint,
		factory:     cfg.ProxyFactory,
		factoryData: factoryData,
	}
	return a, nil
}

func (a *SafeAccount) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *SafeAccount) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *SafeAccount) Factory() common.Address { return a.proxyFactory }
func (a *SafeAccount) FactoryData() []byte      { return a.resolv.factoryData }
func (a *SafeAccount) NonceKey() *big.Int       { return zeroNonceKey }

// encodeExecuteUserOp builds executeUserOpWithErrorString(to,value,data,operation=Call).
func (a *SafeAccount) encodeExecuteUserOp(call erc4337.Call) ([]byte, error) {
	body, err := safeExecuteArgs.Pack(call.To, valueOr0(call.Value), call.Data, uint8(0))
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, safeExecuteUserOpWithErrorStrSelector[:]...), body...), nil
}

func (a *SafeAccount) EncodeCall(call erc4337.Call) ([]byte, error) {
	return a.encodeExecuteUserOp(call)
}

func (a *SafeAccount) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	if len(calls) == 0 {
		return nil, callsEmptyErr()
	}
	if len(calls) == 1 {
		return a.encodeExecuteUserOp(calls[0])
	}
	// Safe accounts encode exactly one call per operation, through the
	// 4337 module's executeUserOpWithErrorString. There is no MultiSend
	// batching here: more than one call is rejected as BadInput.
	return nil, aaerrors.BadInputf("safe accounts encode one call per operation, got %d", len(calls))
}

func (a *SafeAccount) StubSignature() []byte {
	out := make([]byte, 0, 65*len(a.owners))
	for range a.owners {
		out = append(out, stubSignature65...)
	}
	return out
}

// safeOpTypedData builds the Safe4337Module SafeOp struct and domain.
func (a *SafeAccount) safeOpTypedData(chainID *big.Int, safe common.Address, uo *erc4337.UserOperationV07) (typeddata.Domain, typeddata.TypeSet, map[string]typeddata.Value) {
	domain := typeddata.Domain{
		Name:              strPtr("Safe4337Module"),
		Version:           strPtr("1.0.0"),
		ChainId:           chainID,
		VerifyingContract: &a.module,
	}
	types := typeddata.TypeSet{
		"SafeOp": {
			{Name: "safe", Type: "address"},
			{Name: "nonce", Type: "uint256"},
			{Name: "initCode", Type: "bytes"},
			{Name: "callData", Type: "bytes"},
			{Name: "verificationGasLimit", Type: "uint256"},
			{Name: "callGasLimit", Type: "uint256"},
			{Name: "preVerificationGas", Type: "uint256"},
			{Name: "maxFeePerGas", Type: "uint256"},
			{Name: "maxPriorityFeePerGas", Type: "uint256"},
			{Name: "paymasterAndData", Type: "bytes"},
			{Name: "validAfter", Type: "uint48"},
			{Name: "validUntil", Type: "uint48"},
			{Name: "entryPoint", Type: "address"},
		},
	}

	var initCode []byte
	if uo.HasFactory() {
		initCode = append(initCode, uo.Factory.Bytes()...)
		initCode = append(initCode, uo.FactoryData...)
	}
	var paymasterAndData []byte
	if uo.HasPaymaster() {
		paymasterAndData = append(paymasterAndData, uo.Paymaster.Bytes()...)
	}

	values := map[string]typeddata.Value{
		"safe":                 typeddata.Addr(safe),
		"nonce":                typeddata.Uint(valueOr0(uo.Nonce)),
		"initCode":             typeddata.Bytes(initCode),
		"callData":             typeddata.Bytes(uo.CallData),
		"verificationGasLimit": typeddata.Uint(valueOr0(uo.VerificationGasLimit)),
		"callGasLimit":         typeddata.Uint(valueOr0(uo.CallGasLimit)),
		"preVerificationGas":   typeddata.Uint(valueOr0(uo.PreVerificationGas)),
		"maxFeePerGas":         typeddata.Uint(valueOr0(uo.MaxFeePerGas)),
		"maxPriorityFeePerGas": typeddata.Uint(valueOr0(uo.MaxPriorityFeePerGas)),
		"paymasterAndData":     typeddata.Bytes(paymasterAndData),
		"validAfter":           typeddata.Uint(big.NewInt(0)),
		"validUntil":           typeddata.Uint(big.NewInt(0)),
		"entryPoint":           typeddata.Addr(a.entryPoint),
	}
	return domain, types, values
}

// SignSafeOp signs a v0.7 UserOperation's SafeOp EIP-712 hash, producing
// the concatenated multi-owner signature Safe expects (owners sorted by
// ascending address, the order Safe's signature-checking loop requires).
func (a *SafeAccount) SignSafeOp(chainID *big.Int, safe common.Address, uo *erc4337.UserOperationV07) ([]byte, error) {
	domain, types, values := a.safeOpTypedData(chainID, safe, uo)
	hash, err := typeddata.Hash(domain, types, "SafeOp", values)
	if err != nil {
		return nil, err
	}

	type ownerSig struct {
		addr common.Address
		sig  []byte
	}
	sigs := make([]ownerSig, len(a.owners))
	for i, o := range a.owners {
		sig, err := o.SignTypedDataHash(hash)
		if err != nil {
			return nil, err
		}
		sigs[i] = ownerSig{addr: o.Address(), sig: sig}
	}
	sort.Slice(sigs, func(i, j int) bool {
		return bytes.Compare(sigs[i].addr.Bytes(), sigs[j].addr.Bytes()) < 0
	})

	out := make([]byte, 0, 65*len(sigs))
	for _, s := range sigs {
		out = append(out, s.sig...)
	}
	return out, nil
}

// SignUserOpHash exists to satisfy Account, but Safe never signs a bare
// userOpHash: its signature is the SafeOp EIP-712 digest, which binds in
// the chain ID and the Safe address alongside the operation. Callers
// that drive Safe through Client get this for free since Client.Sign
// type-asserts for UserOpSigner and calls SignUserOp/SignSafeOp instead;
// anyone calling SignUserOpHash directly on a Safe account is missing
// that binding and gets an explicit error rather than a bad signature.
func (a *SafeAccount) SignUserOpHash(hash common.Hash) ([]byte, error) {
	return nil, aaerrors.UnsupportedOperationf("safe accounts sign the SafeOp typed-data struct, not a bare userOpHash; use SignUserOp or SignSafeOp")
}

// SignUserOp implements UserOpSigner: it routes through SignSafeOp so
// Client.Sign produces a signature over the same digest the Safe4337
// module actually checks.
func (a *SafeAccount) SignUserOp(chainID *big.Int, sender common.Address, uo *erc4337.UserOperationV07) ([]byte, error) {
	return a.SignSafeOp(chainID, sender, uo)
}

func (a *SafeAccount) SignMessage(message []byte) ([]byte, error) {
	var sigs [][]byte
	for _, o := range a.owners {
		sig, err := o.SignPersonalMessage(message)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return concatSignatures(sigs...), nil
}

// SignTypedDataHash concatenates every owner's signature over hash,
// ordered by ascending owner address like SignSafeOp.
func (a *SafeAccount) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	owners := append([]Owner{}, a.owners...)
	sort.Slice(owners, func(i, j int) bool {
		return bytes.Compare(owners[i].Address().Bytes(), owners[j].Address().Bytes()) < 0
	})
	var sigs [][]byte
	for _, o := range owners {
		sig, err := o.SignTypedDataHash(hash)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return concatSignatures(sigs...), nil
}

var (
	_ Account      = (*SafeAccount)(nil)
	_ UserOpSigner = (*SafeAccount)(nil)
)
