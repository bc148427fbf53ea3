// Package erc4337 implements the ERC-4337 UserOperation data model: the
// v0.6 (unpacked) and v0.7 (unpacked + packed) representations, v0.7
// packing/unpacking, and userOpHash computation for both EntryPoint
// versions.
package erc4337

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EntryPoint addresses are identical across all EVM chains.
var (
	EntryPointV06 = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	EntryPointV07 = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	EntryPointV08 = common.HexToAddress("0x4337084d9e255ff0702461cf8895ce9e3b5ff108")
)

// ZeroAddress is the reserved all-zero address.
var ZeroAddress common.Address

// Call is a single low-level contract call, the unit accounts encode
// into execute/executeBatch call data.
type Call struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// valueOrZero returns c.Value, defaulting to zero when nil.
func (c Call) valueOrZero() *big.Int {
	if c.Value == nil {
		return big.NewInt(0)
	}
	return c.Value
}
