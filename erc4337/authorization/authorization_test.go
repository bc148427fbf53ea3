package authorization

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)

	contract := common.HexToAddress("0x9999999999999999999999999999999999999999")
	auth, err := Sign(big.NewInt(1), contract, 0, key)
	require.NoError(t, err)

	assert.LessOrEqual(t, auth.V, uint8(1))

	recovered, err := RecoverAuthority(auth)
	require.NoError(t, err)
	assert.Equal(t, owner, recovered)
}

func TestSignIsChainAndNonceSensitive(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	contract := common.HexToAddress("0x1111111111111111111111111111111111111111")

	a1, err := Sign(big.NewInt(1), contract, 5, key)
	require.NoError(t, err)
	a2, err := Sign(big.NewInt(1), contract, 6, key)
	require.NoError(t, err)
	assert.NotEqual(t, a1.R, a2.R)

	a3, err := Sign(big.NewInt(10), contract, 5, key)
	require.NoError(t, err)
	assert.NotEqual(t, a1.R, a3.R)
}

func TestRecoverAuthorityRejectsTamperedNonce(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := crypto.PubkeyToAddress(key.PublicKey)
	contract := common.HexToAddress("0x2222222222222222222222222222222222222222")

	auth, err := Sign(big.NewInt(1), contract, 0, key)
	require.NoError(t, err)

	auth.Nonce = 1
	recovered, err := RecoverAuthority(auth)
	require.NoError(t, err)
	assert.NotEqual(t, owner, recovered)
}
