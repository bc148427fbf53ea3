package accounts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/enc"
)

var (
	legacyAddressType, _     = abi.NewType("address", "", nil)
	legacyUint256Type, _     = abi.NewType("uint256", "", nil)
	legacyBytesType, _       = abi.NewType("bytes", "", nil)
	legacyAddressArrType, _  = abi.NewType("address[]", "", nil)
	legacyUint256ArrType, _  = abi.NewType("uint256[]", "", nil)
	legacyBytesArrType, _    = abi.NewType("bytes[]", "", nil)
	executeArgs              = abi.Arguments{{Type: legacyAddressType}, {Type: legacyUint256Type}, {Type: legacyBytesType}}
	executeBatchArgs         = abi.Arguments{{Type: legacyAddressArrType}, {Type: legacyUint256ArrType}, {Type: legacyBytesArrType}}
)

// executeSelector / executeBatchSelector are the selectors of
// execute(address,uint256,bytes) / executeBatch(address[],uint256[],bytes[]).
// Simple, Thirdweb, and Trust/Barz encode through them; LightAccount
// uses the same two selector values written as hex literals.
var (
	executeSelector      = enc.FunctionSelector("execute(address,uint256,bytes)")
	executeBatchSelector = enc.FunctionSelector("executeBatch(address[],uint256[],bytes[])")
)

func valueOr0(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// encodeLegacyExecute builds execute(address,uint256,bytes) calldata.
func encodeLegacyExecute(call erc4337.Call) ([]byte, error) {
	packed, err := executeArgs.Pack(call.To, valueOr0(call.Value), call.Data)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, executeSelector[:]...), packed...), nil
}

// encodeLegacyExecuteBatch builds executeBatch(address[],uint256[],bytes[]) calldata.
func encodeLegacyExecuteBatch(calls []erc4337.Call) ([]byte, error) {
	tos := make([]common.Address, len(calls))
	values := make([]*big.Int, len(calls))
	datas := make([][]byte, len(calls))
	for i, c := range calls {
		tos[i] = c.To
		values[i] = valueOr0(c.Value)
		datas[i] = c.Data
	}
	packed, err := executeBatchArgs.Pack(tos, values, datas)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, executeBatchSelector[:]...), packed...), nil
}

// encodeLegacyCalls dispatches to execute or executeBatch, the shape
// every "legacy" (non-ERC-7579) family shares.
func encodeLegacyCalls(calls []erc4337.Call) ([]byte, error) {
	if len(calls) == 0 {
		return nil, callsEmptyErr()
	}
	if len(calls) == 1 {
		return encodeLegacyExecute(calls[0])
	}
	return encodeLegacyExecuteBatch(calls)
}
