package accounts

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethaccount/aa4337/erc4337"
)

func newTestOwner(t *testing.T) *PrivateKeyOwner {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return NewPrivateKeyOwner(key)
}

func TestSimpleAccountFactoryDataDeterministic(t *testing.T) {
	owner := newTestOwner(t)
	factory := common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	a1 := NewSimpleAccount(owner, factory, big.NewInt(0), erc4337.EntryPointV07, nil)
	a2 := NewSimpleAccount(owner, factory, big.NewInt(0), erc4337.EntryPointV07, nil)

	assert.Equal(t, a1.FactoryData(), a2.FactoryData())
}

func TestSimpleAccountAddressUsesPrecomputed(t *testing.T) {
	owner := newTestOwner(t)
	factory := common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	precomputed := common.HexToAddress("0x2222222222222222222222222222222222222222")
	a := NewSimpleAccount(owner, factory, big.NewInt(0), erc4337.EntryPointV07, &precomputed)

	addr, err := a.Address(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, precomputed, addr)
}

func TestSimpleAccountAddressUnavailableWithoutResolver(t *testing.T) {
	owner := newTestOwner(t)
	a := NewSimpleAccount(owner, common.Address{}, big.NewInt(0), erc4337.EntryPointV07, nil)

	_, err := a.Address(context.Background(), nil)
	assert.Error(t, err)
}

func TestSimpleAccountStubSignatureLength(t *testing.T) {
	owner := newTestOwner(t)
	a := NewSimpleAccount(owner, common.Address{}, big.NewInt(1), erc4337.EntryPointV07, nil)
	assert.Len(t, a.StubSignature(), 65)
}

func TestSimpleAccountSignUserOpHashShape(t *testing.T) {
	owner := newTestOwner(t)
	a := NewSimpleAccount(owner, common.Address{}, big.NewInt(1), erc4337.EntryPointV07, nil)
	hash := crypto.Keccak256Hash([]byte("test"))
	sig, err := a.SignUserOpHash(hash)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.GreaterOrEqual(t, sig[64], byte(27))
}

func TestLightAccountV2StubSignaturePrefixed(t *testing.T) {
	owner := newTestOwner(t)
	v1 := NewLightAccount(owner, LightV1, common.Address{}, big.NewInt(0), erc4337.EntryPointV07, nil)
	v2 := NewLightAccount(owner, LightV2, common.Address{}, big.NewInt(0), erc4337.EntryPointV07, nil)

	assert.Len(t, v1.StubSignature(), 65)
	assert.Len(t, v2.StubSignature(), 66)
	assert.Equal(t, lightSigTypeEOA, v2.StubSignature()[0])
}

func TestKernelV03NonceKeyUsesValidator(t *testing.T) {
	owner := newTestOwner(t)
	validator := common.HexToAddress("0x845AbDA219b4cE6FA16E32Ff13d41C0c2fd6CE57")
	a := NewKernelV03(owner, validator, common.Address{}, []byte{0x01}, big.NewInt(0), nil)

	key := a.NonceKey()
	expected := new(big.Int).Lsh(new(big.Int).SetBytes(validator.Bytes()), 16)
	assert.Equal(t, expected, key)
}

func TestBiconomySignatureWrapsModuleAddress(t *testing.T) {
	owner := newTestOwner(t)
	module := common.HexToAddress("0x0000001c5b32F37F5beA87BDD5374eB2aC54eA8e")
	a, err := NewBiconomyAccount(owner, common.Address{}, module, nil, nil)
	require.NoError(t, err)

	hash := crypto.Keccak256Hash([]byte("op"))
	sig, err := a.SignUserOpHash(hash)
	require.NoError(t, err)

	var decodedModule common.Address
	vals, err := biconomySigWrapperArgs.Unpack(sig)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	decodedModule = vals[1].(common.Address)
	assert.Equal(t, module, decodedModule)
}

func TestBiconomyStubSignatureWraps(t *testing.T) {
	owner := newTestOwner(t)
	module := common.HexToAddress("0x0000001c5b32F37F5beA87BDD5374eB2aC54eA8e")
	a, err := NewBiconomyAccount(owner, common.Address{}, module, nil, nil)
	require.NoError(t, err)
	assert.Greater(t, len(a.StubSignature()), 65)
}

func TestSafeAccountSignatureConcatenationSortedByAddress(t *testing.T) {
	ownerA := newTestOwner(t)
	ownerB := newTestOwner(t)
	owners := []Owner{ownerA, ownerB}
	// Sort so the test's expectation matches SignTypedDataHash's sorted output.
	if bytes.Compare(ownerA.Address().Bytes(), ownerB.Address().Bytes()) > 0 {
		owners = []Owner{ownerB, ownerA}
	}

	a, err := NewSafeAccount(SafeConfig{
		Owners:          []Owner{owners[1], owners[0]},
		Threshold:       2,
		Module:          common.HexToAddress("0x75cf11467937ce3F2f357CE24ffc3DBF8fD5c226"),
		Singleton:       common.HexToAddress("0x29fcB43b46531BcA003ddC8FCB67FFE91900C762"),
		ProxyFactory:    common.HexToAddress("0x4e1DCf7AD4e460CfD30791CCC4F9c8a4f820ec67"),
		FallbackHandler: common.HexToAddress("0xfd0732Dc9E303f09fCEf3a7388Ad10A83459Ec99"),
		ModuleSetup:     common.HexToAddress("0x8EcD4ec46D4D2a6B64fE960B3D64e8B94B2234eb"),
		EntryPoint:      erc4337.EntryPointV07,
	})
	require.NoError(t, err)

	assert.Len(t, a.StubSignature(), 130)

	hash := crypto.Keccak256Hash([]byte("safe-op"))
	sig, err := a.SignTypedDataHash(hash)
	require.NoError(t, err)
	assert.Len(t, sig, 130)

	sigLow, err := owners[0].SignTypedDataHash(hash)
	require.NoError(t, err)
	sigHigh, err := owners[1].SignTypedDataHash(hash)
	require.NoError(t, err)
	assert.Equal(t, append(sigLow, sigHigh...), sig)
}

func TestSafeAccountRejectsNoOwners(t *testing.T) {
	_, err := NewSafeAccount(SafeConfig{Threshold: 1})
	assert.Error(t, err)
}

func TestTrustAccountLegacyExecuteSelector(t *testing.T) {
	owner := newTestOwner(t)
	a, err := NewTrustAccount(owner, common.Address{}, big.NewInt(0), nil)
	require.NoError(t, err)

	data, err := a.EncodeCall(erc4337.Call{To: common.HexToAddress("0x1111111111111111111111111111111111111111"), Value: big.NewInt(0), Data: nil})
	require.NoError(t, err)
	assert.Equal(t, executeSelector[:], data[:4])
}

func TestEncodeCallsRejectsEmpty(t *testing.T) {
	owner := newTestOwner(t)
	a := NewSimpleAccount(owner, common.Address{}, big.NewInt(0), erc4337.EntryPointV07, nil)
	_, err := a.EncodeCalls(nil)
	assert.Error(t, err)
}
