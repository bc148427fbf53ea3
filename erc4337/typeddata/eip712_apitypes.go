package typeddata

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// APITypesDomain mirrors Domain but in go-ethereum's own apitypes.TypedDataDomain
// shape, for callers that already hold or receive typed data in that form
// (e.g. JSON-RPC payloads from wallets/bundlers).
type APITypesDomain = apitypes.TypedDataDomain

// HashViaAPITypes computes the EIP-712 digest using go-ethereum's
// signer/core/apitypes package directly (apitypes.TypedData, HashStruct,
// domain Map). Prefer the Hash/Value-builder path above for
// account-internal signing; use this one when interoperating with
// externally supplied apitypes.TypedData (e.g. eth_signTypedData_v4
// payloads forwarded from a frontend).
func HashViaAPITypes(domain apitypes.TypedDataDomain, types apitypes.Types, primaryType string, message apitypes.TypedDataMessage) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       types,
		PrimaryType: primaryType,
		Domain:      domain,
		Message:     message,
	}

	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, err
	}
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, err
	}

	raw := []byte{0x19, 0x01}
	raw = append(raw, domainSeparator...)
	raw = append(raw, structHash...)
	return crypto.Keccak256(raw), nil
}

// ChainIDHex converts a chain ID into the HexOrDecimal256 wrapper
// apitypes.TypedDataDomain expects.
func ChainIDHex(chainID *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(chainID)
}
