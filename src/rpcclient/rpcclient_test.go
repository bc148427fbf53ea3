package rpcclient

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethaccount/aa4337/src/testutil"
)

func TestUrlForUnsupportedChain(t *testing.T) {
	c := New(Config{SepoliaRPCURL: "https://example.invalid"})
	_, err := c.urlFor(999)
	assert.Error(t, err)
}

func TestUrlForKnownChains(t *testing.T) {
	c := New(Config{
		SepoliaRPCURL:         "sepolia",
		ArbitrumSepoliaRPCURL: "arb",
		BaseSepoliaRPCURL:     "base",
		OptimismSepoliaRPCURL: "op",
		PolygonAmoyRPCURL:     "amoy",
	})

	for chainID, expected := range map[int64]string{
		chainIDSepolia:         "sepolia",
		chainIDArbitrumSepolia: "arb",
		chainIDBaseSepolia:     "base",
		chainIDOptimismSepolia: "op",
		chainIDPolygonAmoy:     "amoy",
	} {
		url, err := c.urlFor(chainID)
		require.NoError(t, err)
		assert.Equal(t, expected, url)
	}
}

func TestDecodeSenderAddressResult(t *testing.T) {
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	payload := append(append([]byte{}, senderAddressResultSelector[:]...), make([]byte, 12)...)
	payload = append(payload, addr.Bytes()...)

	decoded, err := decodeSenderAddressResult(payload)
	require.NoError(t, err)
	assert.Equal(t, addr, decoded)
}

func TestDecodeSenderAddressResultRejectsWrongSelector(t *testing.T) {
	payload := append([]byte{0xde, 0xad, 0xbe, 0xef}, make([]byte, 32)...)
	_, err := decodeSenderAddressResult(payload)
	assert.Error(t, err)
}

func TestDecodeSenderAddressResultRejectsShortPayload(t *testing.T) {
	_, err := decodeSenderAddressResult([]byte{0x01, 0x02})
	assert.Error(t, err)
}

// TestDialAndSuggestFeesLive exercises a real Sepolia RPC endpoint when
// SEPOLIA_RPC_URL is set (e.g. via .env); skipped otherwise.
func TestDialAndSuggestFeesLive(t *testing.T) {
	url := testutil.GetEnv("SEPOLIA_RPC_URL")
	if url == "" {
		t.Skip("SEPOLIA_RPC_URL not set, skipping live RPC test")
	}

	c := New(Config{SepoliaRPCURL: url})
	cc := c.ForChain(chainIDSepolia)

	maxFeePerGas, priorityFee, err := cc.SuggestFees(context.Background())
	require.NoError(t, err)
	assert.True(t, maxFeePerGas.Sign() > 0)
	assert.True(t, priorityFee.Sign() >= 0)
}
