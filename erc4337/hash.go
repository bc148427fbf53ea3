package erc4337

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)
)

func finalHash(innerHash common.Hash, entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	args := abi.Arguments{{Type: bytes32Type}, {Type: addressType}, {Type: uint256Type}}
	encoded, err := args.Pack(innerHash, entryPoint, chainID)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

// UserOpHashV07 computes the EntryPoint v0.7 userOpHash:
//
//	inner = keccak(abi.encode(sender, nonce, keccak(initCode), keccak(callData),
//	               accountGasLimits, preVerificationGas, gasFees, keccak(paymasterAndData)))
//	final = keccak(abi.encode(inner, entryPoint, chainId))
//
// accountGasLimits and gasFees are embedded as raw 32-byte values.
func UserOpHashV07(uo *UserOperationV07, entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	packed := PackUserOp(uo)

	args := abi.Arguments{
		{Type: addressType}, // sender
		{Type: uint256Type}, // nonce
		{Type: bytes32Type}, // keccak(initCode)
		{Type: bytes32Type}, // keccak(callData)
		{Type: bytes32Type}, // accountGasLimits
		{Type: uint256Type}, // preVerificationGas
		{Type: bytes32Type}, // gasFees
		{Type: bytes32Type}, // keccak(paymasterAndData)
	}

	encoded, err := args.Pack(
		packed.Sender,
		packed.Nonce,
		crypto.Keccak256Hash(packed.InitCode),
		crypto.Keccak256Hash(packed.CallData),
		packed.AccountGasLimits,
		packed.PreVerificationGas,
		packed.GasFees,
		crypto.Keccak256Hash(packed.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, err
	}

	inner := crypto.Keccak256Hash(encoded)
	return finalHash(inner, entryPoint, chainID)
}

// UserOpHashFromPacked computes the same v0.7 hash directly from an
// already-packed operation, so callers that received a PackedUserOperation
// over the wire don't need to round-trip through UnpackUserOp first.
func UserOpHashFromPacked(packed *PackedUserOperation, entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	args := abi.Arguments{
		{Type: addressType},
		{Type: uint256Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
		{Type: uint256Type},
		{Type: bytes32Type},
		{Type: bytes32Type},
	}
	encoded, err := args.Pack(
		packed.Sender,
		packed.Nonce,
		crypto.Keccak256Hash(packed.InitCode),
		crypto.Keccak256Hash(packed.CallData),
		packed.AccountGasLimits,
		packed.PreVerificationGas,
		packed.GasFees,
		crypto.Keccak256Hash(packed.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, err
	}
	inner := crypto.Keccak256Hash(encoded)
	return finalHash(inner, entryPoint, chainID)
}

// UserOpHashV06 computes the EntryPoint v0.6 userOpHash.
func UserOpHashV06(uo *UserOperationV06, entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	nonce := uo.Nonce
	if nonce == nil {
		nonce = big.NewInt(0)
	}
	callGasLimit := zeroIfNil(uo.CallGasLimit)
	verificationGasLimit := zeroIfNil(uo.VerificationGasLimit)
	preVerificationGas := zeroIfNil(uo.PreVerificationGas)
	maxFeePerGas := zeroIfNil(uo.MaxFeePerGas)
	maxPriorityFeePerGas := zeroIfNil(uo.MaxPriorityFeePerGas)

	args := abi.Arguments{
		{Type: addressType}, // sender
		{Type: uint256Type}, // nonce
		{Type: bytes32Type}, // keccak(initCode)
		{Type: bytes32Type}, // keccak(callData)
		{Type: uint256Type}, // callGasLimit
		{Type: uint256Type}, // verificationGasLimit
		{Type: uint256Type}, // preVerificationGas
		{Type: uint256Type}, // maxFeePerGas
		{Type: uint256Type}, // maxPriorityFeePerGas
		{Type: bytes32Type}, // keccak(paymasterAndData)
	}

	encoded, err := args.Pack(
		uo.Sender,
		nonce,
		crypto.Keccak256Hash(uo.InitCode),
		crypto.Keccak256Hash(uo.CallData),
		callGasLimit,
		verificationGasLimit,
		preVerificationGas,
		maxFeePerGas,
		maxPriorityFeePerGas,
		crypto.Keccak256Hash(uo.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, err
	}

	inner := crypto.Keccak256Hash(encoded)
	return finalHash(inner, entryPoint, chainID)
}

func zeroIfNil(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return n
}

// RequiredPrefundV07 computes the minimum balance the sender (or paymaster
// deposit) must cover before the EntryPoint will accept the operation.
func RequiredPrefundV07(uo *UserOperationV07) *big.Int {
	total := new(big.Int).Add(zeroIfNil(uo.VerificationGasLimit), zeroIfNil(uo.CallGasLimit))
	total.Add(total, zeroIfNil(uo.PreVerificationGas))
	if uo.HasPaymaster() {
		total.Add(total, zeroIfNil(uo.PaymasterVerificationGasLimit))
		total.Add(total, zeroIfNil(uo.PaymasterPostOpGasLimit))
	}
	return total.Mul(total, zeroIfNil(uo.MaxFeePerGas))
}

// RequiredPrefundV06 multiplies verificationGasLimit by 3 when
// paymasterAndData is non-empty, per the v0.6 EntryPoint's extra
// postOp-gas reservation.
func RequiredPrefundV06(uo *UserOperationV06) *big.Int {
	verification := zeroIfNil(uo.VerificationGasLimit)
	if len(uo.PaymasterAndData) > 0 {
		verification = new(big.Int).Mul(verification, big.NewInt(3))
	}
	total := new(big.Int).Add(verification, zeroIfNil(uo.CallGasLimit))
	total.Add(total, zeroIfNil(uo.PreVerificationGas))
	return total.Mul(total, zeroIfNil(uo.MaxFeePerGas))
}
