package enc

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexFromUintRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		n       int64
		byteLen int
	}{
		{0, 1}, {1, 1}, {255, 1}, {256, 2}, {65535, 2}, {1 << 20, 4},
	} {
		n := big.NewInt(tc.n)
		h, err := HexFromUint(n, tc.byteLen)
		require.NoError(t, err)
		assert.Len(t, StripPrefix(h), tc.byteLen*2)

		got, err := HexToUint(h)
		require.NoError(t, err)
		assert.Equal(t, 0, n.Cmp(got))
	}
}

func TestHexFromUintOverflow(t *testing.T) {
	_, err := HexFromUint(big.NewInt(256), 1)
	assert.Error(t, err)
}

func TestFunctionSelectors(t *testing.T) {
	cases := map[string]string{
		"approve(address,uint256)":  "0x095ea7b3",
		"transfer(address,uint256)": "0xa9059cbb",
		"balanceOf(address)":        "0x70a08231",
	}
	for sig, want := range cases {
		assert.Equal(t, want, MustSelectorHex(sig))
	}
}

func TestEncodeBytesPadding(t *testing.T) {
	out := EncodeBytes([]byte{1, 2, 3})
	require.Len(t, out, 64) // 32 length word + 32 padded data word
	assert.Equal(t, big.NewInt(3), new(big.Int).SetBytes(out[:32]))
	assert.Equal(t, []byte{1, 2, 3}, out[32:35])
	for _, b := range out[35:64] {
		assert.Equal(t, byte(0), b)
	}
}

func TestEncodeWithDynamicsOffsets(t *testing.T) {
	parts := []Part{
		{IsStatic: true, Static: EncodeUint256(big.NewInt(42))},
		{IsStatic: false, Dynamic: EncodeBytes([]byte("hello"))},
		{IsStatic: true, Static: EncodeUint256(big.NewInt(7))},
	}
	out := EncodeWithDynamics(parts)
	// head is 3 words = 96 bytes; dynamic tail starts right after.
	offset := new(big.Int).SetBytes(out[32:64])
	assert.Equal(t, int64(96), offset.Int64())
	assert.Equal(t, 0, offset.Int64()%32)
}

func TestPadLeftRight(t *testing.T) {
	l, err := PadLeft("0x1234", 4)
	require.NoError(t, err)
	assert.Equal(t, "0x00001234", l)

	r, err := PadRight("0x1234", 4)
	require.NoError(t, err)
	assert.Equal(t, "0x12340000", r)
}
