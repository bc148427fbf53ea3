package accounts

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/ethaccount/aa4337/erc4337/enc"
)

func hexSel(hexStr string) ([]byte, error) {
	return enc.HexDecode(hexStr)
}

var metaFactoryArgs = func() abi.Arguments {
	bytesT, _ := abi.NewType("bytes", "", nil)
	bytes32T, _ := abi.NewType("bytes32", "", nil)
	return abi.Arguments{{Type: legacyAddressType}, {Type: bytesT}, {Type: bytes32T}}
}()

func executeArgsForMetaFactory() abi.Arguments {
	return metaFactoryArgs
}
