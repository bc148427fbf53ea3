package erc7579

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/enc"
)

func TestSelectors(t *testing.T) {
	assert.Equal(t, SelectorExecute, enc.MustSelectorHex("execute(bytes32,bytes)"))
	assert.Equal(t, SelectorInstallModule, enc.MustSelectorHex("installModule(uint256,address,bytes)"))
	assert.Equal(t, SelectorUninstallModule, enc.MustSelectorHex("uninstallModule(uint256,address,bytes)"))
}

func TestExecutionModeLayout(t *testing.T) {
	mode := DefaultMode(CallKindBatch)
	encoded := mode.Encode()
	assert.Equal(t, byte(0x01), encoded[0])
	assert.Equal(t, byte(0x00), encoded[1])

	decoded := DecodeExecutionMode(encoded)
	assert.Equal(t, CallKindBatch, decoded.CallKind)
	assert.True(t, decoded.RevertOnError)
}

func TestExecutionModeTryMode(t *testing.T) {
	mode := ExecutionMode{CallKind: CallKindSingle, RevertOnError: false}
	encoded := mode.Encode()
	assert.Equal(t, byte(0x01), encoded[1])
}

func TestSingleCallRoundTrip(t *testing.T) {
	call := erc4337.Call{
		To:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Value: big.NewInt(0),
		Data:  []byte{},
	}
	payload := EncodeSingle(call)
	decoded, err := DecodeSingle(payload)
	require.NoError(t, err)
	assert.Equal(t, call.To, decoded.To)
	assert.Equal(t, 0, call.Value.Cmp(decoded.Value))
}

func TestBatchOfTwoRoundTrip(t *testing.T) {
	calls := []erc4337.Call{
		{To: common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), Value: big.NewInt(0), Data: []byte{}},
		{To: common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), Value: big.NewInt(100), Data: []byte{0xaa, 0xbb}},
	}

	execData, err := EncodeCalls(calls)
	require.NoError(t, err)

	mode, decoded, err := DecodeExecute(execData)
	require.NoError(t, err)
	assert.Equal(t, CallKindBatch, mode.CallKind)
	require.Len(t, decoded, 2)
	assert.Equal(t, calls[0].To, decoded[0].To)
	assert.Equal(t, calls[1].Data, decoded[1].Data)
	assert.Equal(t, 0, calls[1].Value.Cmp(decoded[1].Value))
	assert.Equal(t, byte(0x01), execData[4])
}

func TestSingleCallOptimization(t *testing.T) {
	calls := []erc4337.Call{
		{To: common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"), Value: big.NewInt(0), Data: []byte{0x01}},
	}
	execData, err := EncodeCalls(calls)
	require.NoError(t, err)

	mode, decoded, err := DecodeExecute(execData)
	require.NoError(t, err)
	assert.Equal(t, CallKindSingle, mode.CallKind)
	require.Len(t, decoded, 1)
	assert.Equal(t, calls[0].To, decoded[0].To)
}

func TestEncodeCallsEmptyIsBadInput(t *testing.T) {
	_, err := EncodeCalls(nil)
	require.Error(t, err)
}

func TestKernelV03NonceKey(t *testing.T) {
	validator := common.HexToAddress("0x845AbDA219b4cE6FA16E32Ff13d41C0c2fd6CE57")
	key := NonceKeyForValidator(validator)

	nonce := erc4337.EncodeNonce(key, 0)
	gotKey, gotSeq := erc4337.DecodeNonce(nonce)
	assert.Equal(t, 0, key.Cmp(gotKey))
	assert.Equal(t, uint64(0), gotSeq)

	keyBytes := key.Bytes()
	// left-pad to 24 bytes (192 bits) and check the structured layout.
	padded := make([]byte, 24)
	copy(padded[24-len(keyBytes):], keyBytes)
	assert.Equal(t, byte(0x00), padded[0])
	assert.Equal(t, byte(0x00), padded[1])
	assert.Equal(t, validator.Bytes(), padded[2:22])
	assert.Equal(t, byte(0x00), padded[22])
	assert.Equal(t, byte(0x00), padded[23])
}

func TestNonceRoundTrip(t *testing.T) {
	key := big.NewInt(12345)
	nonce := erc4337.EncodeNonce(key, 42)
	gotKey, gotSeq := erc4337.DecodeNonce(nonce)
	assert.Equal(t, 0, key.Cmp(gotKey))
	assert.Equal(t, uint64(42), gotSeq)
}

func TestDecodeExecuteRejectsBadSelector(t *testing.T) {
	_, _, err := DecodeExecute([]byte{0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)
}
