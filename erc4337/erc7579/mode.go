// Package erc7579 implements the ERC-7579 modular execution codec:
// execute-mode encoding, single/batch call payloads, the execute call
// data builder, module management selectors, and nonce-key packing.
package erc7579

import (
	"github.com/ethaccount/aa4337/erc4337/aaerrors"
	"github.com/ethaccount/aa4337/erc4337/enc"
)

// CallKind is the execution kind encoded in byte 0 of an ExecutionMode.
type CallKind byte

const (
	CallKindSingle   CallKind = 0x00
	CallKindBatch    CallKind = 0x01
	CallKindDelegate CallKind = 0xff
)

// ExecutionMode is the ERC-7579 32-byte execution mode:
// [callKind(1) | execType(1) | 4 zero bytes | selector(4) | context(22)].
type ExecutionMode struct {
	CallKind      CallKind
	RevertOnError bool
	Selector      [4]byte
	Context       [22]byte
}

// Encode serializes an ExecutionMode to its 32-byte wire form.
func (m ExecutionMode) Encode() [32]byte {
	var out [32]byte
	out[0] = byte(m.CallKind)
	if !m.RevertOnError {
		out[1] = 0x01
	}
	// bytes 2-5 stay zero
	copy(out[6:10], m.Selector[:])
	copy(out[10:32], m.Context[:])
	return out
}

// DecodeExecutionMode is the inverse of Encode.
func DecodeExecutionMode(b [32]byte) ExecutionMode {
	var m ExecutionMode
	m.CallKind = CallKind(b[0])
	m.RevertOnError = b[1] == 0x00
	copy(m.Selector[:], b[6:10])
	copy(m.Context[:], b[10:32])
	return m
}

// DefaultMode is the execute mode used when a caller doesn't need a
// custom selector/context: revert-on-error, no hook selector.
func DefaultMode(kind CallKind) ExecutionMode {
	return ExecutionMode{CallKind: kind, RevertOnError: true}
}

const (
	// SelectorExecute is execute(bytes32,bytes).
	SelectorExecute = "0xe9ae5c53"
	// SelectorInstallModule is installModule(uint256,address,bytes).
	SelectorInstallModule = "0x9517e29f"
	// SelectorUninstallModule is uninstallModule(uint256,address,bytes).
	SelectorUninstallModule = "0xa4d6f1d2"
	// SelectorIsModuleInstalled is isModuleInstalled(uint256,address,bytes).
	SelectorIsModuleInstalled = "0x6d61fe70"
	// SelectorSupportsModule is supportsModule(uint256).
	SelectorSupportsModule = "0x12d79da3"
	// SelectorAccountId is accountId().
	SelectorAccountId = "0x7b60424a"
	// SelectorSupportsExecutionMode is supportsExecutionMode(bytes32).
	SelectorSupportsExecutionMode = "0xd03c7914"
)

func mustSelectorBytes(hex string) []byte {
	b, err := enc.HexDecode(hex)
	if err != nil {
		panic(err)
	}
	return b
}

// ValidateExecuteSelector returns an error unless data begins with the
// execute(bytes32,bytes) selector.
func ValidateExecuteSelector(data []byte) error {
	sel := mustSelectorBytes(SelectorExecute)
	if len(data) < 4 {
		return aaerrors.Validationf(SelectorExecute, "calldata too short: %d bytes", len(data))
	}
	for i := range sel {
		if data[i] != sel[i] {
			return aaerrors.Validationf(SelectorExecute, "unexpected selector %x", data[:4])
		}
	}
	return nil
}
