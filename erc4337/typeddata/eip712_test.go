package typeddata

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPersonalMessageVector(t *testing.T) {
	h := HashPersonalMessage([]byte("Hello, World!"))
	assert.Equal(t, "0xc8ee0d506e864589b799a645ddb88b08f5d39e8049f9f702b3b61fa15e55fc73", h.Hex())
}

func ptr[T any](v T) *T { return &v }

func TestEIP712Determinism(t *testing.T) {
	types := TypeSet{
		"Mail": {
			{Name: "from", Type: "address"},
			{Name: "to", Type: "address"},
			{Name: "contents", Type: "string"},
		},
	}
	domain := Domain{
		Name:              ptr("Test"),
		Version:           ptr("1"),
		ChainId:           big.NewInt(1),
		VerifyingContract: addrPtr("0x0000000000000000000000000000000000000001"),
	}
	message := map[string]Value{
		"from":     Addr(common.HexToAddress("0x1111111111111111111111111111111111111111")),
		"to":       Addr(common.HexToAddress("0x2222222222222222222222222222222222222222")),
		"contents": Str("hello"),
	}

	h1, err := Hash(domain, types, "Mail", message)
	require.NoError(t, err)
	h2, err := Hash(domain, types, "Mail", message)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// Adding a field to the primary type changes the hash.
	typesChanged := TypeSet{
		"Mail": {
			{Name: "from", Type: "address"},
			{Name: "to", Type: "address"},
			{Name: "contents", Type: "string"},
			{Name: "extra", Type: "uint256"},
		},
	}
	messageChanged := map[string]Value{
		"from":     message["from"],
		"to":       message["to"],
		"contents": message["contents"],
		"extra":    Uint(big.NewInt(1)),
	}
	h3, err := Hash(domain, typesChanged, "Mail", messageChanged)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestEIP712ReorderingNonPrimaryTypesNoChange(t *testing.T) {
	// Reordering non-primary types' *definitions* in the map must not
	// change the hash: EncodeType sorts referenced types alphabetically
	// regardless of TypeSet map iteration/declaration order.
	types1 := TypeSet{
		"Mail":   {{Name: "person", Type: "Person"}},
		"Person": {{Name: "name", Type: "string"}, {Name: "wallet", Type: "address"}},
	}
	types2 := TypeSet{
		"Person": {{Name: "name", Type: "string"}, {Name: "wallet", Type: "address"}},
		"Mail":   {{Name: "person", Type: "Person"}},
	}

	enc1, err := EncodeType("Mail", types1)
	require.NoError(t, err)
	enc2, err := EncodeType("Mail", types2)
	require.NoError(t, err)
	assert.Equal(t, enc1, enc2)
}

func TestDomainSeparatorOnlyPresentFields(t *testing.T) {
	d1 := Domain{Name: ptr("App"), ChainId: big.NewInt(1)}
	d2 := Domain{Name: ptr("App"), Version: ptr("1"), ChainId: big.NewInt(1)}

	s1, err := DomainSeparator(d1)
	require.NoError(t, err)
	s2, err := DomainSeparator(d2)
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}

func addrPtr(hex string) *common.Address {
	a := common.HexToAddress(hex)
	return &a
}
