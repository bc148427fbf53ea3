package erc4337

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleV07Op() *UserOperationV07 {
	return &UserOperationV07{
		Sender:               common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Nonce:                big.NewInt(0),
		CallData:             []byte{0xb6, 0x1d, 0x27, 0xf6},
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(100_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(20_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		Signature:            []byte{},
	}
}

func TestUserOpHashV07Deterministic(t *testing.T) {
	op := sampleV07Op()
	h1, err := UserOpHashV07(op, EntryPointV07, big.NewInt(11155111))
	require.NoError(t, err)
	h2, err := UserOpHashV07(op, EntryPointV07, big.NewInt(11155111))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestUserOpHashV07ChangesWithChainID(t *testing.T) {
	op := sampleV07Op()
	h1, err := UserOpHashV07(op, EntryPointV07, big.NewInt(11155111))
	require.NoError(t, err)
	h2, err := UserOpHashV07(op, EntryPointV07, big.NewInt(1))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestUserOpHashFromPackedMatchesDirect(t *testing.T) {
	op := sampleV07Op()
	direct, err := UserOpHashV07(op, EntryPointV07, big.NewInt(11155111))
	require.NoError(t, err)

	packed := PackUserOp(op)
	fromPacked, err := UserOpHashFromPacked(packed, EntryPointV07, big.NewInt(11155111))
	require.NoError(t, err)

	assert.Equal(t, direct, fromPacked)
}

func TestUserOpHashV06Deterministic(t *testing.T) {
	op := &UserOperationV06{
		Sender:               common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Nonce:                big.NewInt(0),
		InitCode:             []byte{},
		CallData:             []byte{0xb6, 0x1d, 0x27, 0xf6},
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(100_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(20_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		PaymasterAndData:     []byte{},
		Signature:            []byte{},
	}
	h1, err := UserOpHashV06(op, EntryPointV06, big.NewInt(11155111))
	require.NoError(t, err)
	h2, err := UserOpHashV06(op, EntryPointV06, big.NewInt(11155111))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestRequiredPrefundV07WithoutPaymaster(t *testing.T) {
	op := sampleV07Op()
	prefund := RequiredPrefundV07(op)

	total := new(big.Int).Add(op.VerificationGasLimit, op.CallGasLimit)
	total.Add(total, op.PreVerificationGas)
	total.Mul(total, op.MaxFeePerGas)
	assert.Equal(t, 0, total.Cmp(prefund))
}

func TestRequiredPrefundV07WithPaymaster(t *testing.T) {
	op := sampleV07Op()
	paymaster := common.HexToAddress("0x0000000000325602a77416A16136FDafd04b299f")
	op.Paymaster = &paymaster
	op.PaymasterVerificationGasLimit = big.NewInt(50_000)
	op.PaymasterPostOpGasLimit = big.NewInt(10_000)

	withPaymaster := RequiredPrefundV07(op)
	op.Paymaster = nil
	without := RequiredPrefundV07(op)

	assert.Equal(t, 1, withPaymaster.Cmp(without))
}

func TestRequiredPrefundV06TriplesVerificationWithPaymaster(t *testing.T) {
	base := &UserOperationV06{
		VerificationGasLimit: big.NewInt(100_000),
		CallGasLimit:         big.NewInt(50_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(1),
	}
	withoutPaymaster := RequiredPrefundV06(base)

	withPaymaster := &UserOperationV06{
		VerificationGasLimit: big.NewInt(100_000),
		CallGasLimit:         big.NewInt(50_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(1),
		PaymasterAndData:     []byte{0x01},
	}
	withIt := RequiredPrefundV06(withPaymaster)

	expectedWithout := new(big.Int).Add(big.NewInt(100_000), big.NewInt(50_000))
	expectedWithout.Add(expectedWithout, big.NewInt(21_000))
	assert.Equal(t, 0, expectedWithout.Cmp(withoutPaymaster))

	expectedWith := new(big.Int).Add(big.NewInt(300_000), big.NewInt(50_000))
	expectedWith.Add(expectedWith, big.NewInt(21_000))
	assert.Equal(t, 0, expectedWith.Cmp(withIt))
}
