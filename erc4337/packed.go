package erc4337

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PackedUserOperation is the EntryPoint v0.7 wire/on-chain form.
type PackedUserOperation struct {
	Sender             common.Address
	Nonce              *big.Int
	InitCode           []byte
	CallData           []byte
	AccountGasLimits   [32]byte
	PreVerificationGas *big.Int
	GasFees            [32]byte
	PaymasterAndData   []byte
	Signature          []byte
}

func packUint128Pair(hi, lo *big.Int) [32]byte {
	var out [32]byte
	if hi != nil {
		b := hi.Bytes()
		copy(out[16-len(b):16], b)
	}
	if lo != nil {
		b := lo.Bytes()
		copy(out[32-len(b):32], b)
	}
	return out
}

func unpackUint128Pair(packed [32]byte) (hi, lo *big.Int) {
	hi = new(big.Int).SetBytes(packed[0:16])
	lo = new(big.Int).SetBytes(packed[16:32])
	return hi, lo
}

// PackUserOp packs a v0.7 UserOperation into its wire form:
//   - initCode = factory || factoryData (or empty)
//   - accountGasLimits = verificationGasLimit:16B || callGasLimit:16B
//   - gasFees = maxPriorityFeePerGas:16B || maxFeePerGas:16B
//   - paymasterAndData = paymaster || pmVerificationGasLimit:16B ||
//     pmPostOpGasLimit:16B || paymasterData (or empty)
func PackUserOp(uo *UserOperationV07) *PackedUserOperation {
	var initCode []byte
	if uo.HasFactory() {
		initCode = append(initCode, uo.Factory.Bytes()...)
		initCode = append(initCode, uo.FactoryData...)
	}

	var paymasterAndData []byte
	if uo.HasPaymaster() {
		paymasterAndData = append(paymasterAndData, uo.Paymaster.Bytes()...)
		limits := packUint128Pair(uo.PaymasterVerificationGasLimit, uo.PaymasterPostOpGasLimit)
		paymasterAndData = append(paymasterAndData, limits[:]...)
		paymasterAndData = append(paymasterAndData, uo.PaymasterData...)
	}

	nonce := uo.Nonce
	if nonce == nil {
		nonce = big.NewInt(0)
	}
	preVerificationGas := uo.PreVerificationGas
	if preVerificationGas == nil {
		preVerificationGas = big.NewInt(0)
	}

	return &PackedUserOperation{
		Sender:             uo.Sender,
		Nonce:              nonce,
		InitCode:           initCode,
		CallData:           uo.CallData,
		AccountGasLimits:   packUint128Pair(uo.VerificationGasLimit, uo.CallGasLimit),
		PreVerificationGas: preVerificationGas,
		GasFees:            packUint128Pair(uo.MaxPriorityFeePerGas, uo.MaxFeePerGas),
		PaymasterAndData:   paymasterAndData,
		Signature:          uo.Signature,
	}
}

// UnpackUserOp is the inverse of PackUserOp.
func UnpackUserOp(p *PackedUserOperation) *UserOperationV07 {
	verificationGasLimit, callGasLimit := unpackUint128Pair(p.AccountGasLimits)
	maxPriorityFeePerGas, maxFeePerGas := unpackUint128Pair(p.GasFees)

	uo := &UserOperationV07{
		Sender:               p.Sender,
		Nonce:                p.Nonce,
		CallData:             p.CallData,
		CallGasLimit:         callGasLimit,
		VerificationGasLimit: verificationGasLimit,
		PreVerificationGas:   p.PreVerificationGas,
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		Signature:            p.Signature,
	}

	if len(p.InitCode) >= 20 {
		factory := common.BytesToAddress(p.InitCode[:20])
		uo.Factory = &factory
		uo.FactoryData = append([]byte{}, p.InitCode[20:]...)
	}

	if len(p.PaymasterAndData) >= 52 {
		paymaster := common.BytesToAddress(p.PaymasterAndData[:20])
		uo.Paymaster = &paymaster
		pvgl := new(big.Int).SetBytes(p.PaymasterAndData[20:36])
		ppogl := new(big.Int).SetBytes(p.PaymasterAndData[36:52])
		uo.PaymasterVerificationGasLimit = pvgl
		uo.PaymasterPostOpGasLimit = ppogl
		uo.PaymasterData = append([]byte{}, p.PaymasterAndData[52:]...)
	}

	return uo
}
