package erc7579

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/aaerrors"
)

// EncodeSingle packs a single call as the ERC-7579 execution payload:
// to:20 || value:32 || data (packed, not ABI head/tail encoded).
func EncodeSingle(call erc4337.Call) []byte {
	out := make([]byte, 0, 20+32+len(call.Data))
	out = append(out, call.To.Bytes()...)
	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}
	var valueBytes [32]byte
	value.FillBytes(valueBytes[:])
	out = append(out, valueBytes[:]...)
	out = append(out, call.Data...)
	return out
}

// DecodeSingle is the inverse of EncodeSingle.
func DecodeSingle(payload []byte) (erc4337.Call, error) {
	if len(payload) < 52 {
		return erc4337.Call{}, aaerrors.Validationf("", "single-call payload too short: %d bytes", len(payload))
	}
	to := common.BytesToAddress(payload[0:20])
	value := new(big.Int).SetBytes(payload[20:52])
	data := append([]byte{}, payload[52:]...)
	return erc4337.Call{To: to, Value: value, Data: data}, nil
}

var (
	bytesType        abi.Type
	executionsArrTyp abi.Type
)

func init() {
	var err error
	bytesType, err = abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}
	executionsArrTyp, err = abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "target", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "callData", Type: "bytes"},
	})
	if err != nil {
		panic(err)
	}
}

type executionTuple struct {
	Target   common.Address
	Value    *big.Int
	CallData []byte
}

// EncodeBatch packs calls as the standard ABI encoding of Execution[]
// used as the ERC-7579 batch execution payload: a top-level offset
// pointer, the array length, per-element offsets, then element bodies.
func EncodeBatch(calls []erc4337.Call) ([]byte, error) {
	tuples := make([]executionTuple, len(calls))
	for i, c := range calls {
		value := c.Value
		if value == nil {
			value = big.NewInt(0)
		}
		tuples[i] = executionTuple{Target: c.To, Value: value, CallData: c.Data}
	}
	args := abi.Arguments{{Type: executionsArrTyp}}
	return args.Pack(tuples)
}

// DecodeBatch is the inverse of EncodeBatch. It walks the ABI layout by
// hand rather than unpacking through reflection, since go-ethereum's abi
// package materializes an unexported anonymous struct type for tuple
// slices that can't be named at the call site.
func DecodeBatch(payload []byte) ([]erc4337.Call, error) {
	readWord := func(offset uint64) (*big.Int, error) {
		if offset+32 > uint64(len(payload)) {
			return nil, aaerrors.Validationf("", "execution batch payload truncated at offset %d", offset)
		}
		return new(big.Int).SetBytes(payload[offset : offset+32]), nil
	}

	headOffsetBig, err := readWord(0)
	if err != nil {
		return nil, err
	}
	headOffset := headOffsetBig.Uint64()

	lengthBig, err := readWord(headOffset)
	if err != nil {
		return nil, err
	}
	n := lengthBig.Uint64()
	elementsStart := headOffset + 32

	calls := make([]erc4337.Call, n)
	for i := uint64(0); i < n; i++ {
		relOffsetBig, err := readWord(elementsStart + i*32)
		if err != nil {
			return nil, err
		}
		elemStart := elementsStart + relOffsetBig.Uint64()

		toWord, err := readWord(elemStart)
		if err != nil {
			return nil, err
		}
		valueWord, err := readWord(elemStart + 32)
		if err != nil {
			return nil, err
		}
		dataOffsetBig, err := readWord(elemStart + 64)
		if err != nil {
			return nil, err
		}
		dataStart := elemStart + dataOffsetBig.Uint64()
		dataLenBig, err := readWord(dataStart)
		if err != nil {
			return nil, err
		}
		dataLen := dataLenBig.Uint64()
		dataEnd := dataStart + 32 + dataLen
		if dataEnd > uint64(len(payload)) {
			return nil, aaerrors.Validationf("", "execution batch element %d callData out of bounds", i)
		}

		var to common.Address
		to.SetBytes(toWord.Bytes())
		calls[i] = erc4337.Call{
			To:    to,
			Value: valueWord,
			Data:  append([]byte{}, payload[dataStart+32:dataEnd]...),
		}
	}

	return calls, nil
}

// EncodeExecute builds the execute(bytes32 mode, bytes data) call data:
// selector || mode || offset=64 || encode_bytes(executionPayload).
func EncodeExecute(mode ExecutionMode, executionPayload []byte) []byte {
	modeBytes := mode.Encode()
	args := abi.Arguments{{Type: abi.Type{T: abi.FixedBytesTy, Size: 32}}, {Type: bytesType}}
	packed, err := args.Pack(modeBytes, executionPayload)
	if err != nil {
		panic(err)
	}
	out := make([]byte, 0, 4+len(packed))
	out = append(out, mustSelectorBytes(SelectorExecute)...)
	out = append(out, packed...)
	return out
}

// EncodeCall builds a single-call execute transaction, the default path
// for an ERC-7579 account executing one call.
func EncodeCall(call erc4337.Call) []byte {
	mode := DefaultMode(CallKindSingle)
	return EncodeExecute(mode, EncodeSingle(call))
}

// EncodeCalls builds the execute transaction for one or more calls. A
// slice of length one is optimized to a Single-kind execute, matching
// how accounts avoid the overhead of batch encoding for a single call.
func EncodeCalls(calls []erc4337.Call) ([]byte, error) {
	if len(calls) == 0 {
		return nil, aaerrors.BadInputf("encode_calls requires at least one call")
	}
	if len(calls) == 1 {
		return EncodeCall(calls[0]), nil
	}
	payload, err := EncodeBatch(calls)
	if err != nil {
		return nil, err
	}
	mode := DefaultMode(CallKindBatch)
	return EncodeExecute(mode, payload), nil
}

// DecodeExecute parses an execute(bytes32,bytes) call and returns the
// mode and calls it encodes, rejecting unknown call kinds.
func DecodeExecute(data []byte) (ExecutionMode, []erc4337.Call, error) {
	if err := ValidateExecuteSelector(data); err != nil {
		return ExecutionMode{}, nil, err
	}
	args := abi.Arguments{{Type: abi.Type{T: abi.FixedBytesTy, Size: 32}}, {Type: bytesType}}
	values, err := args.Unpack(data[4:])
	if err != nil {
		return ExecutionMode{}, nil, aaerrors.Wrap(aaerrors.Validation, "decode execute call", err)
	}
	var modeBytes [32]byte
	modeArr := values[0].([32]byte)
	copy(modeBytes[:], modeArr[:])
	payload := values[1].([]byte)

	mode := DecodeExecutionMode(modeBytes)
	switch mode.CallKind {
	case CallKindSingle:
		call, err := DecodeSingle(payload)
		if err != nil {
			return mode, nil, err
		}
		return mode, []erc4337.Call{call}, nil
	case CallKindBatch:
		calls, err := DecodeBatch(payload)
		if err != nil {
			return mode, nil, err
		}
		return mode, calls, nil
	default:
		return mode, nil, aaerrors.Validationf(SelectorExecute, "unsupported call kind 0x%x", byte(mode.CallKind))
	}
}
