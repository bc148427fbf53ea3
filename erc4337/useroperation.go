package erc4337

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UserOperationV06 is the EntryPoint v0.6 unpacked UserOperation.
// Invariant: InitCode and PaymasterAndData are either empty or begin
// with a 20-byte address.
type UserOperationV06 struct {
	Sender               common.Address `json:"sender"`
	Nonce                *big.Int       `json:"nonce"`
	InitCode             []byte         `json:"initCode"`
	CallData             []byte         `json:"callData"`
	CallGasLimit         *big.Int       `json:"callGasLimit"`
	VerificationGasLimit *big.Int       `json:"verificationGasLimit"`
	PreVerificationGas   *big.Int       `json:"preVerificationGas"`
	MaxFeePerGas         *big.Int       `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *big.Int       `json:"maxPriorityFeePerGas"`
	PaymasterAndData     []byte         `json:"paymasterAndData"`
	Signature            []byte         `json:"signature"`
}

// UserOperationV07 is the EntryPoint v0.7 unpacked UserOperation.
// Invariant: Factory is present iff FactoryData is present; Paymaster is
// present iff the three paymaster data fields are present.
type UserOperationV07 struct {
	Sender                        common.Address  `json:"sender"`
	Nonce                         *big.Int        `json:"nonce"`
	Factory                       *common.Address `json:"factory,omitempty"`
	FactoryData                   []byte          `json:"factoryData,omitempty"`
	CallData                      []byte          `json:"callData"`
	CallGasLimit                  *big.Int        `json:"callGasLimit"`
	VerificationGasLimit          *big.Int        `json:"verificationGasLimit"`
	PreVerificationGas            *big.Int        `json:"preVerificationGas"`
	MaxFeePerGas                  *big.Int        `json:"maxFeePerGas"`
	MaxPriorityFeePerGas          *big.Int        `json:"maxPriorityFeePerGas"`
	Paymaster                     *common.Address `json:"paymaster,omitempty"`
	PaymasterVerificationGasLimit *big.Int        `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *big.Int        `json:"paymasterPostOpGasLimit,omitempty"`
	PaymasterData                 []byte          `json:"paymasterData,omitempty"`
	Signature                     []byte          `json:"signature"`
}

// HasFactory reports whether this operation deploys its sender.
func (uo *UserOperationV07) HasFactory() bool {
	return uo.Factory != nil && len(uo.FactoryData) > 0
}

// HasPaymaster reports whether this operation is gas-sponsored.
func (uo *UserOperationV07) HasPaymaster() bool {
	return uo.Paymaster != nil
}

// wireUserOperationV07 is the bundler-facing JSON shape: every integer
// field as a "0x"-prefixed hex string without leading zeros, addresses
// lowercase, bytes fields "0x"-prefixed, optional paymaster/factory
// fields included only when present. v0.6 uses wireUserOperationV06.
type wireUserOperationV07 struct {
	Sender                        common.Address  `json:"sender"`
	Nonce                         string          `json:"nonce"`
	Factory                       *common.Address `json:"factory,omitempty"`
	FactoryData                   hexutil.Bytes   `json:"factoryData,omitempty"`
	CallData                      hexutil.Bytes   `json:"callData"`
	CallGasLimit                  string          `json:"callGasLimit"`
	VerificationGasLimit          string          `json:"verificationGasLimit"`
	PreVerificationGas            string          `json:"preVerificationGas"`
	MaxFeePerGas                  string          `json:"maxFeePerGas"`
	MaxPriorityFeePerGas          string          `json:"maxPriorityFeePerGas"`
	Paymaster                     *common.Address `json:"paymaster,omitempty"`
	PaymasterVerificationGasLimit string          `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       string          `json:"paymasterPostOpGasLimit,omitempty"`
	PaymasterData                 hexutil.Bytes   `json:"paymasterData,omitempty"`
	Signature                     hexutil.Bytes   `json:"signature"`
}

func bigToHex(n *big.Int) string {
	if n == nil {
		return "0x0"
	}
	return fmt.Sprintf("0x%x", n)
}

func hexToBig(s string) (*big.Int, error) {
	if s == "" || s == "0x" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(trimHexPrefix(s), 16)
	if !ok {
		return nil, fmt.Errorf("erc4337: invalid hex integer %q", s)
	}
	return n, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}

// MarshalJSON implements the bundler wire format.
func (uo *UserOperationV07) MarshalJSON() ([]byte, error) {
	w := wireUserOperationV07{
		Sender:                        uo.Sender,
		Nonce:                         bigToHex(uo.Nonce),
		Factory:                       uo.Factory,
		FactoryData:                   uo.FactoryData,
		CallData:                      uo.CallData,
		CallGasLimit:                  bigToHex(uo.CallGasLimit),
		VerificationGasLimit:          bigToHex(uo.VerificationGasLimit),
		PreVerificationGas:            bigToHex(uo.PreVerificationGas),
		MaxFeePerGas:                  bigToHex(uo.MaxFeePerGas),
		MaxPriorityFeePerGas:          bigToHex(uo.MaxPriorityFeePerGas),
		Paymaster:                     uo.Paymaster,
		PaymasterData:                 uo.PaymasterData,
		Signature:                     uo.Signature,
	}
	if uo.Paymaster != nil {
		w.PaymasterVerificationGasLimit = bigToHex(uo.PaymasterVerificationGasLimit)
		w.PaymasterPostOpGasLimit = bigToHex(uo.PaymasterPostOpGasLimit)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements the bundler wire format.
func (uo *UserOperationV07) UnmarshalJSON(data []byte) error {
	var w wireUserOperationV07
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	nonce, err := hexToBig(w.Nonce)
	if err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	callGasLimit, err := hexToBig(w.CallGasLimit)
	if err != nil {
		return fmt.Errorf("callGasLimit: %w", err)
	}
	verificationGasLimit, err := hexToBig(w.VerificationGasLimit)
	if err != nil {
		return fmt.Errorf("verificationGasLimit: %w", err)
	}
	preVerificationGas, err := hexToBig(w.PreVerificationGas)
	if err != nil {
		return fmt.Errorf("preVerificationGas: %w", err)
	}
	maxFeePerGas, err := hexToBig(w.MaxFeePerGas)
	if err != nil {
		return fmt.Errorf("maxFeePerGas: %w", err)
	}
	maxPriorityFeePerGas, err := hexToBig(w.MaxPriorityFeePerGas)
	if err != nil {
		return fmt.Errorf("maxPriorityFeePerGas: %w", err)
	}

	*uo = UserOperationV07{
		Sender:               w.Sender,
		Nonce:                nonce,
		Factory:              w.Factory,
		FactoryData:          w.FactoryData,
		CallData:             w.CallData,
		CallGasLimit:         callGasLimit,
		VerificationGasLimit: verificationGasLimit,
		PreVerificationGas:   preVerificationGas,
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		Paymaster:            w.Paymaster,
		PaymasterData:        w.PaymasterData,
		Signature:            w.Signature,
	}

	if w.Paymaster != nil {
		pvgl, err := hexToBig(w.PaymasterVerificationGasLimit)
		if err != nil {
			return fmt.Errorf("paymasterVerificationGasLimit: %w", err)
		}
		ppogl, err := hexToBig(w.PaymasterPostOpGasLimit)
		if err != nil {
			return fmt.Errorf("paymasterPostOpGasLimit: %w", err)
		}
		uo.PaymasterVerificationGasLimit = pvgl
		uo.PaymasterPostOpGasLimit = ppogl
	}

	return nil
}

// wireUserOperationV06 is the EntryPoint v0.6 bundler wire format.
type wireUserOperationV06 struct {
	Sender               common.Address `json:"sender"`
	Nonce                string         `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         string         `json:"callGasLimit"`
	VerificationGasLimit string         `json:"verificationGasLimit"`
	PreVerificationGas   string         `json:"preVerificationGas"`
	MaxFeePerGas         string         `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string         `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

func (uo *UserOperationV06) MarshalJSON() ([]byte, error) {
	w := wireUserOperationV06{
		Sender:               uo.Sender,
		Nonce:                bigToHex(uo.Nonce),
		InitCode:             uo.InitCode,
		CallData:             uo.CallData,
		CallGasLimit:         bigToHex(uo.CallGasLimit),
		VerificationGasLimit: bigToHex(uo.VerificationGasLimit),
		PreVerificationGas:   bigToHex(uo.PreVerificationGas),
		MaxFeePerGas:         bigToHex(uo.MaxFeePerGas),
		MaxPriorityFeePerGas: bigToHex(uo.MaxPriorityFeePerGas),
		PaymasterAndData:     uo.PaymasterAndData,
		Signature:            uo.Signature,
	}
	return json.Marshal(w)
}

func (uo *UserOperationV06) UnmarshalJSON(data []byte) error {
	var w wireUserOperationV06
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	nonce, err := hexToBig(w.Nonce)
	if err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	callGasLimit, err := hexToBig(w.CallGasLimit)
	if err != nil {
		return fmt.Errorf("callGasLimit: %w", err)
	}
	verificationGasLimit, err := hexToBig(w.VerificationGasLimit)
	if err != nil {
		return fmt.Errorf("verificationGasLimit: %w", err)
	}
	preVerificationGas, err := hexToBig(w.PreVerificationGas)
	if err != nil {
		return fmt.Errorf("preVerificationGas: %w", err)
	}
	maxFeePerGas, err := hexToBig(w.MaxFeePerGas)
	if err != nil {
		return fmt.Errorf("maxFeePerGas: %w", err)
	}
	maxPriorityFeePerGas, err := hexToBig(w.MaxPriorityFeePerGas)
	if err != nil {
		return fmt.Errorf("maxPriorityFeePerGas: %w", err)
	}

	*uo = UserOperationV06{
		Sender:               w.Sender,
		Nonce:                nonce,
		InitCode:             w.InitCode,
		CallData:             w.CallData,
		CallGasLimit:         callGasLimit,
		VerificationGasLimit: verificationGasLimit,
		PreVerificationGas:   preVerificationGas,
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		PaymasterAndData:     w.PaymasterAndData,
		Signature:            w.Signature,
	}
	return nil
}
