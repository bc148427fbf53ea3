package erc4337

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeNonceRoundTrip(t *testing.T) {
	cases := []struct {
		key      *big.Int
		sequence uint64
	}{
		{big.NewInt(0), 0},
		{big.NewInt(1), 1},
		{new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 192), big.NewInt(1)), 0},
		{big.NewInt(0), ^uint64(0)},
	}
	for _, c := range cases {
		encoded := EncodeNonce(c.key, c.sequence)
		key, sequence := DecodeNonce(encoded)
		assert.Equal(t, 0, c.key.Cmp(key))
		assert.Equal(t, c.sequence, sequence)
	}
}

func TestDecodeNonceNil(t *testing.T) {
	key, sequence := DecodeNonce(nil)
	assert.Equal(t, 0, big.NewInt(0).Cmp(key))
	assert.Equal(t, uint64(0), sequence)
}

func TestGasMultiplierApplyIdentity(t *testing.T) {
	none := GasMultiplier{Percent: 100}
	result := none.Apply(big.NewInt(12345))
	assert.Equal(t, big.NewInt(12345), result)
}

func TestGasMultiplierApplyRoundsUp(t *testing.T) {
	m := GasMultiplier{Percent: 130}
	// 77 * 130 / 100 = 100.1 -> rounds up to 101
	assert.Equal(t, big.NewInt(101), m.Apply(big.NewInt(77)))
	// 100000 * 130 / 100 = 130000 exactly, no rounding needed
	assert.Equal(t, big.NewInt(130_000), m.Apply(big.NewInt(100_000)))
}

func TestGasMultiplierApplyNilEstimate(t *testing.T) {
	m := GasMultiplier{Percent: 130}
	assert.Equal(t, big.NewInt(0), m.Apply(nil))
}

func TestWithMultipliersSumsComponents(t *testing.T) {
	uo := &UserOperationV07{
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(50_000),
		PreVerificationGas:   big.NewInt(21_000),
	}
	WithMultipliers(uo, DefaultGasMultipliers)

	total := new(big.Int).Add(uo.CallGasLimit, uo.VerificationGasLimit)
	total.Add(total, uo.PreVerificationGas)
	assert.Equal(t, big.NewInt(222_300), total)
}
