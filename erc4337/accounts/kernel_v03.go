package accounts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/aaerrors"
	"github.com/ethaccount/aa4337/erc4337/erc7579"
	"github.com/ethaccount/aa4337/erc4337/typeddata"
)

const kernelMetaFactoryDeploySelector = "0xc5265d5d"

// kernelMessageTypedData wraps an arbitrary message/hash in Kernel's own
// EIP-712 domain, keyed by validator so a signature for one validator
// can't be replayed against another installed on the same account.
func kernelMessageTypedData(account common.Address, validator common.Address, hash common.Hash) (typeddata.Domain, typeddata.TypeSet, map[string]typeddata.Value) {
	domain := typeddata.Domain{
		Name:              strPtr("Kernel"),
		Version:           strPtr("0.3.1"),
		VerifyingContract: &account,
	}
	types := typeddata.TypeSet{
		"KernelMessage": {
			{Name: "validator", Type: "address"},
			{Name: "hash", Type: "bytes32"},
		},
	}
	values := map[string]typeddata.Value{
		"validator": typeddata.Addr(validator),
		"hash":      typeddata.BytesN(32, hash.Bytes()),
	}
	return domain, types, values
}

// KernelV03 implements ZeroDev's Kernel v0.3.x account: meta-factory
// deployment, ERC-7579 execute, raw ECDSA over the userOpHash, and
// validator-keyed EIP-712 wrapping for message/typed-data signing.
type KernelV03 struct {
	owner     Owner
	validator common.Address
	factory   common.Address
	resolv    *resolver
}

// NewKernelV03 constructs a Kernel v0.3.x account. initCallData is the
// account implementation's initializeV3 calldata (selector
// 0x3c3b752b), and salt selects among counterfactual deployments from
// the same factory+initCallData pair. Kernel v0.3.x only runs under
// EntryPoint v0.7.
func NewKernelV03(owner Owner, validator common.Address, metaFactory common.Address, initCallData []byte, salt *big.Int, precomputed *common.Address) *KernelV03 {
	factoryData := buildMetaFactoryDeployData(metaFactory, initCallData, salt)
	a := &KernelV03{owner: owner, validator: validator, factory: metaFactory}
	a.resolv = &resolver{precomputed: precomputed, entryPoint: erc4337.EntryPointV07, factory: metaFactory, factoryData: factoryData}
	return a
}

func buildMetaFactoryDeployData(factory common.Address, initCallData []byte, salt *big.Int) []byte {
	args := executeArgsForMetaFactory()
	body, _ := args.Pack(factory, initCallData, saltFromUint(salt))
	sel, _ := hexSel(kernelMetaFactoryDeploySelector)
	return append(sel, body...)
}

func (a *KernelV03) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.resolv.resolve(ctx, pub)
}

func (a *KernelV03) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.resolv.deployed(ctx, pub)
}

func (a *KernelV03) Factory() common.Address { return a.factory }
func (a *KernelV03) FactoryData() []byte      { return a.resolv.factoryData }

func (a *KernelV03) NonceKey() *big.Int {
	return erc7579.NonceKeyForValidator(a.validator)
}

func (a *KernelV03) EncodeCall(call erc4337.Call) ([]byte, error) {
	return erc7579.EncodeCall(call), nil
}

func (a *KernelV03) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	return erc7579.EncodeCalls(calls)
}

func (a *KernelV03) StubSignature() []byte { return stubSignature65 }

func (a *KernelV03) SignUserOpHash(hash common.Hash) ([]byte, error) {
	return a.owner.SignRawHash(hash)
}

func (a *KernelV03) SignMessage(message []byte) ([]byte, error) {
	account, err := a.resolv.resolve(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	hash := typeddata.HashPersonalMessage(message)
	domain, types, values := kernelMessageTypedData(account, a.validator, hash)
	digest, err := typeddata.Hash(domain, types, "KernelMessage", values)
	if err != nil {
		return nil, err
	}
	return a.owner.SignTypedDataHash(digest)
}

func (a *KernelV03) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	account, err := a.resolv.resolve(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	domain, types, values := kernelMessageTypedData(account, a.validator, hash)
	digest, err := typeddata.Hash(domain, types, "KernelMessage", values)
	if err != nil {
		return nil, err
	}
	return a.owner.SignTypedDataHash(digest)
}

var _ Account = (*KernelV03)(nil)

// KernelEIP7702 implements Kernel v0.3.3's EIP-7702 delegation mode: the
// account address IS the owning EOA, there is no factory, and the
// userOpHash is signed with an EIP-191 raw-prefix instead of plain
// ECDSA. Message/typed-data signing require the EOA to already carry
// the delegation designator; the core can't check that on-chain state
// itself and reports UnsupportedOperation so the caller decides how to
// verify delegation before calling back in.
type KernelEIP7702 struct {
	owner       Owner
	validator   common.Address
	delegated   bool
}

// NewKernelEIP7702 constructs a Kernel v0.3.3 EIP-7702 account. delegated
// must be set once the caller has confirmed (via eth_getCode) that the
// owner EOA carries the Kernel delegation designator.
func NewKernelEIP7702(owner Owner, validator common.Address, delegated bool) *KernelEIP7702 {
	return &KernelEIP7702{owner: owner, validator: validator, delegated: delegated}
}

func (a *KernelEIP7702) Address(ctx context.Context, pub PublicClient) (common.Address, error) {
	return a.owner.Address(), nil
}

func (a *KernelEIP7702) Deployed(ctx context.Context, pub PublicClient) (bool, error) {
	return a.delegated, nil
}

func (a *KernelEIP7702) Factory() common.Address { return erc4337.ZeroAddress }
func (a *KernelEIP7702) FactoryData() []byte      { return nil }

func (a *KernelEIP7702) NonceKey() *big.Int {
	return erc7579.NonceKeyForValidator(a.validator)
}

func (a *KernelEIP7702) EncodeCall(call erc4337.Call) ([]byte, error) {
	return erc7579.EncodeCall(call), nil
}

func (a *KernelEIP7702) EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	return erc7579.EncodeCalls(calls)
}

func (a *KernelEIP7702) StubSignature() []byte { return stubSignature65 }

func (a *KernelEIP7702) SignUserOpHash(hash common.Hash) ([]byte, error) {
	digest := typeddata.HashRawMessage(hash)
	return a.owner.SignTypedDataHash(digest)
}

func (a *KernelEIP7702) SignMessage(message []byte) ([]byte, error) {
	if !a.delegated {
		return nil, aaerrors.UnsupportedOperationf("EIP-7702 Kernel account has no delegated code installed yet")
	}
	account, _ := a.Address(context.Background(), nil)
	hash := typeddata.HashPersonalMessage(message)
	domain, types, values := kernelMessageTypedData(account, a.validator, hash)
	digest, err := typeddata.Hash(domain, types, "KernelMessage", values)
	if err != nil {
		return nil, err
	}
	return a.owner.SignTypedDataHash(digest)
}

func (a *KernelEIP7702) SignTypedDataHash(hash common.Hash) ([]byte, error) {
	if !a.delegated {
		return nil, aaerrors.UnsupportedOperationf("EIP-7702 Kernel account has no delegated code installed yet")
	}
	account, _ := a.Address(context.Background(), nil)
	domain, types, values := kernelMessageTypedData(account, a.validator, hash)
	digest, err := typeddata.Hash(domain, types, "KernelMessage", values)
	if err != nil {
		return nil, err
	}
	return a.owner.SignTypedDataHash(digest)
}

var _ Account = (*KernelEIP7702)(nil)
