package erc4337

import "math/big"

// EntryPoint nonces are a single uint256 split into a 192-bit key (the
// high bits) and a 64-bit sequence number (the low bits): the EntryPoint
// tracks a separate sequence per key, letting a sender have many
// independent, parallel nonce channels.
const sequenceBits = 64

var sequenceMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), sequenceBits), big.NewInt(1))

// EncodeNonce packs a 192-bit key and a 64-bit sequence number into the
// single uint256 nonce value the EntryPoint expects.
func EncodeNonce(key *big.Int, sequence uint64) *big.Int {
	if key == nil {
		key = new(big.Int)
	}
	n := new(big.Int).Lsh(key, sequenceBits)
	n.Or(n, new(big.Int).SetUint64(sequence))
	return n
}

// DecodeNonce splits a uint256 nonce back into its key and sequence parts.
func DecodeNonce(n *big.Int) (key *big.Int, sequence uint64) {
	if n == nil {
		return new(big.Int), 0
	}
	key = new(big.Int).Rsh(n, sequenceBits)
	sequence = new(big.Int).And(n, sequenceMask).Uint64()
	return key, sequence
}

// GasMultiplier scales an estimated gas value by a percentage, rounding
// up, the way bundlers pad their own estimates before submission.
type GasMultiplier struct {
	// Percent is the multiplier expressed as a percentage; 100 means no
	// change, 130 adds 30%.
	Percent int64
}

// Apply scales estimate by m.Percent/100, rounding up.
func (m GasMultiplier) Apply(estimate *big.Int) *big.Int {
	if estimate == nil {
		return big.NewInt(0)
	}
	if m.Percent <= 0 {
		return new(big.Int).Set(estimate)
	}
	scaled := new(big.Int).Mul(estimate, big.NewInt(m.Percent))
	result, rem := new(big.Int).QuoRem(scaled, big.NewInt(100), new(big.Int))
	if rem.Sign() != 0 {
		result.Add(result, big.NewInt(1))
	}
	return result
}

// GasMultipliers holds per-field overestimation factors applied to a
// bundler's eth_estimateUserOperationGas response before it is folded
// back into a UserOperation.
type GasMultipliers struct {
	CallGasLimit         GasMultiplier
	VerificationGasLimit GasMultiplier
	PreVerificationGas   GasMultiplier
}

// DefaultGasMultipliers pads every gas-limit field by 30%, a common
// bundler-agnostic safety margin against state changes between
// estimation and inclusion.
var DefaultGasMultipliers = GasMultipliers{
	CallGasLimit:         GasMultiplier{Percent: 130},
	VerificationGasLimit: GasMultiplier{Percent: 130},
	PreVerificationGas:   GasMultiplier{Percent: 130},
}

// WithMultipliers applies m to a v0.7 UserOperation's three estimated gas
// fields in place and returns it for chaining.
func WithMultipliers(uo *UserOperationV07, m GasMultipliers) *UserOperationV07 {
	uo.CallGasLimit = m.CallGasLimit.Apply(uo.CallGasLimit)
	uo.VerificationGasLimit = m.VerificationGasLimit.Apply(uo.VerificationGasLimit)
	uo.PreVerificationGas = m.PreVerificationGas.Apply(uo.PreVerificationGas)
	return uo
}

// WithMultipliersV06 is the v0.6 equivalent of WithMultipliers.
func WithMultipliersV06(uo *UserOperationV06, m GasMultipliers) *UserOperationV06 {
	uo.CallGasLimit = m.CallGasLimit.Apply(uo.CallGasLimit)
	uo.VerificationGasLimit = m.VerificationGasLimit.Apply(uo.VerificationGasLimit)
	uo.PreVerificationGas = m.PreVerificationGas.Apply(uo.PreVerificationGas)
	return uo
}
