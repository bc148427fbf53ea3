package erc4337

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserOperationV07WireRoundTrip(t *testing.T) {
	factory := common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	uo := &UserOperationV07{
		Sender:               common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Nonce:                big.NewInt(0),
		Factory:              &factory,
		FactoryData:          []byte{0x5f, 0xbf, 0xb9, 0xcf},
		CallData:             []byte{0xb6, 0x1d, 0x27, 0xf6},
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(100_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(20_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		Signature:            []byte{0x01, 0x02},
	}

	data, err := json.Marshal(uo)
	require.NoError(t, err)

	var roundTripped UserOperationV07
	require.NoError(t, json.Unmarshal(data, &roundTripped))

	assert.Equal(t, uo.Sender, roundTripped.Sender)
	assert.Equal(t, 0, uo.Nonce.Cmp(roundTripped.Nonce))
	require.NotNil(t, roundTripped.Factory)
	assert.Equal(t, *uo.Factory, *roundTripped.Factory)
	assert.Equal(t, uo.FactoryData, []byte(roundTripped.FactoryData))
	assert.Equal(t, uo.CallData, []byte(roundTripped.CallData))
	assert.Equal(t, 0, uo.CallGasLimit.Cmp(roundTripped.CallGasLimit))
	assert.Equal(t, 0, uo.MaxFeePerGas.Cmp(roundTripped.MaxFeePerGas))
	assert.Equal(t, uo.Signature, []byte(roundTripped.Signature))
	assert.Nil(t, roundTripped.Paymaster)
}

func TestUserOperationV07WireOmitsPaymasterFieldsWhenAbsent(t *testing.T) {
	uo := &UserOperationV07{
		Sender:               common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Nonce:                big.NewInt(0),
		CallData:             []byte{},
		CallGasLimit:         big.NewInt(0),
		VerificationGasLimit: big.NewInt(0),
		PreVerificationGas:   big.NewInt(0),
		MaxFeePerGas:         big.NewInt(0),
		MaxPriorityFeePerGas: big.NewInt(0),
		Signature:            []byte{},
	}
	data, err := json.Marshal(uo)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	_, hasPaymaster := raw["paymaster"]
	assert.False(t, hasPaymaster)
	_, hasFactory := raw["factory"]
	assert.False(t, hasFactory)
}

func TestUserOperationV07WireNonceHasNoLeadingZeros(t *testing.T) {
	uo := sampleV07Op()
	uo.Nonce = big.NewInt(1)
	data, err := json.Marshal(uo)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "0x1", raw["nonce"])
}

func TestUserOperationV06WireRoundTrip(t *testing.T) {
	uo := &UserOperationV06{
		Sender:               common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Nonce:                big.NewInt(7),
		InitCode:             []byte{},
		CallData:             []byte{0xb6, 0x1d, 0x27, 0xf6},
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(100_000),
		PreVerificationGas:   big.NewInt(21_000),
		MaxFeePerGas:         big.NewInt(20_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		PaymasterAndData:     []byte{},
		Signature:            []byte{0x01},
	}

	data, err := json.Marshal(uo)
	require.NoError(t, err)

	var roundTripped UserOperationV06
	require.NoError(t, json.Unmarshal(data, &roundTripped))

	assert.Equal(t, uo.Sender, roundTripped.Sender)
	assert.Equal(t, 0, uo.Nonce.Cmp(roundTripped.Nonce))
	assert.Equal(t, uo.CallData, []byte(roundTripped.CallData))
	assert.Equal(t, uo.Signature, []byte(roundTripped.Signature))
}

func TestHasFactoryAndHasPaymaster(t *testing.T) {
	uo := &UserOperationV07{}
	assert.False(t, uo.HasFactory())
	assert.False(t, uo.HasPaymaster())

	factory := common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	uo.Factory = &factory
	uo.FactoryData = []byte{0x01}
	assert.True(t, uo.HasFactory())

	paymaster := common.HexToAddress("0x0000000000325602a77416A16136FDafd04b299f")
	uo.Paymaster = &paymaster
	assert.True(t, uo.HasPaymaster())
}
