package erc4337

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTripNoFactoryNoPaymaster(t *testing.T) {
	uo := &UserOperationV07{
		Sender:               common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Nonce:                big.NewInt(42),
		CallData:             []byte{0xde, 0xad, 0xbe, 0xef},
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(50_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(20_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		Signature:            []byte{0x01, 0x02, 0x03},
	}

	packed := PackUserOp(uo)
	unpacked := UnpackUserOp(packed)

	assert.Equal(t, uo.Sender, unpacked.Sender)
	assert.Equal(t, 0, uo.Nonce.Cmp(unpacked.Nonce))
	assert.Equal(t, uo.CallData, unpacked.CallData)
	assert.Equal(t, 0, uo.CallGasLimit.Cmp(unpacked.CallGasLimit))
	assert.Equal(t, 0, uo.VerificationGasLimit.Cmp(unpacked.VerificationGasLimit))
	assert.Equal(t, 0, uo.PreVerificationGas.Cmp(unpacked.PreVerificationGas))
	assert.Equal(t, 0, uo.MaxFeePerGas.Cmp(unpacked.MaxFeePerGas))
	assert.Equal(t, 0, uo.MaxPriorityFeePerGas.Cmp(unpacked.MaxPriorityFeePerGas))
	assert.Equal(t, uo.Signature, unpacked.Signature)
	assert.Nil(t, unpacked.Factory)
	assert.Nil(t, unpacked.Paymaster)
}

func TestPackUnpackRoundTripWithFactoryAndPaymaster(t *testing.T) {
	factory := common.HexToAddress("0x2222222222222222222222222222222222222222")
	paymaster := common.HexToAddress("0x3333333333333333333333333333333333333333")

	uo := &UserOperationV07{
		Sender:                        common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Nonce:                         big.NewInt(0),
		Factory:                       &factory,
		FactoryData:                   []byte{0xaa, 0xbb, 0xcc},
		CallData:                      []byte{},
		CallGasLimit:                  big.NewInt(1),
		VerificationGasLimit:          big.NewInt(2),
		PreVerificationGas:            big.NewInt(3),
		MaxFeePerGas:                  big.NewInt(4),
		MaxPriorityFeePerGas:          big.NewInt(5),
		Paymaster:                     &paymaster,
		PaymasterVerificationGasLimit: big.NewInt(6),
		PaymasterPostOpGasLimit:       big.NewInt(7),
		PaymasterData:                 []byte{0xdd},
		Signature:                     []byte{},
	}

	packed := PackUserOp(uo)
	assert.True(t, len(packed.InitCode) >= 20)
	assert.True(t, len(packed.PaymasterAndData) >= 52)

	unpacked := UnpackUserOp(packed)
	require.NotNil(t, unpacked.Factory)
	assert.Equal(t, factory, *unpacked.Factory)
	assert.Equal(t, uo.FactoryData, unpacked.FactoryData)

	require.NotNil(t, unpacked.Paymaster)
	assert.Equal(t, paymaster, *unpacked.Paymaster)
	assert.Equal(t, 0, uo.PaymasterVerificationGasLimit.Cmp(unpacked.PaymasterVerificationGasLimit))
	assert.Equal(t, 0, uo.PaymasterPostOpGasLimit.Cmp(unpacked.PaymasterPostOpGasLimit))
	assert.Equal(t, uo.PaymasterData, unpacked.PaymasterData)
}

func TestUint128PairPackingSplitsHiLo(t *testing.T) {
	packed := packUint128Pair(big.NewInt(1), big.NewInt(2))
	hi, lo := unpackUint128Pair(packed)
	assert.Equal(t, 0, big.NewInt(1).Cmp(hi))
	assert.Equal(t, 0, big.NewInt(2).Cmp(lo))
}
