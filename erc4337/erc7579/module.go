package erc7579

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337/enc"
)

// ModuleType identifies an ERC-7579 module category per the standard's
// uint256 type codes.
type ModuleType int64

const (
	ModuleTypeValidator ModuleType = 1
	ModuleTypeExecutor  ModuleType = 2
	ModuleTypeFallback  ModuleType = 3
	ModuleTypeHook      ModuleType = 4
)

func encodeModuleCall(selectorHex string, moduleType ModuleType, module common.Address, initData []byte) []byte {
	parts := []enc.Part{
		{IsStatic: true, Static: enc.EncodeUint256(big.NewInt(int64(moduleType)))},
		{IsStatic: true, Static: enc.EncodeAddress(module)},
		{IsStatic: false, Dynamic: enc.EncodeBytes(initData)},
	}
	body := enc.EncodeWithDynamics(parts)
	sel := mustSelectorBytes(selectorHex)
	out := make([]byte, 0, len(sel)+len(body))
	out = append(out, sel...)
	out = append(out, body...)
	return out
}

// EncodeInstallModule builds installModule(uint256 moduleType, address module, bytes initData).
func EncodeInstallModule(moduleType ModuleType, module common.Address, initData []byte) []byte {
	return encodeModuleCall(SelectorInstallModule, moduleType, module, initData)
}

// EncodeUninstallModule builds uninstallModule(uint256 moduleType, address module, bytes deInitData).
func EncodeUninstallModule(moduleType ModuleType, module common.Address, deInitData []byte) []byte {
	return encodeModuleCall(SelectorUninstallModule, moduleType, module, deInitData)
}

// EncodeIsModuleInstalled builds isModuleInstalled(uint256 moduleType, address module, bytes additionalContext).
func EncodeIsModuleInstalled(moduleType ModuleType, module common.Address, additionalContext []byte) []byte {
	return encodeModuleCall(SelectorIsModuleInstalled, moduleType, module, additionalContext)
}

// EncodeSupportsModule builds supportsModule(uint256 moduleType).
func EncodeSupportsModule(moduleType ModuleType) []byte {
	sel := mustSelectorBytes(SelectorSupportsModule)
	out := append([]byte{}, sel...)
	out = append(out, enc.EncodeUint256(big.NewInt(int64(moduleType)))...)
	return out
}

// EncodeAccountId builds accountId().
func EncodeAccountId() []byte {
	return mustSelectorBytes(SelectorAccountId)
}

// EncodeSupportsExecutionMode builds supportsExecutionMode(bytes32 mode).
func EncodeSupportsExecutionMode(mode ExecutionMode) []byte {
	sel := mustSelectorBytes(SelectorSupportsExecutionMode)
	modeBytes := mode.Encode()
	out := append([]byte{}, sel...)
	out = append(out, modeBytes[:]...)
	return out
}

// NonceKeyForValidator builds the [0x00, 0x00] || validator || [0x00, 0x00]
// structured nonce key used by Kernel v0.3, Nexus, and EIP-7702 Kernel
// accounts: the 192-bit key space places the 20-byte validator address in
// the middle, leaving 2 zero bytes on each side.
func NonceKeyForValidator(validator common.Address) *big.Int {
	var key [24]byte // 192 bits
	copy(key[2:22], validator.Bytes())
	return new(big.Int).SetBytes(key[:])
}
