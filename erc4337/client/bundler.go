// Package client implements the orchestration collaborators a caller
// wires an Account to: a Bundler, an optional Paymaster, and an optional
// public chain client, plus the prepare/sign/send pipeline that drives
// them.
package client

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ethaccount/aa4337/erc4337/aaerrors"
)

// GasEstimates is the response shape of eth_estimateUserOperationGas.
type GasEstimates struct {
	PreVerificationGas            *hexutil.Big `json:"preVerificationGas"`
	VerificationGasLimit          *hexutil.Big `json:"verificationGasLimit"`
	CallGasLimit                  *hexutil.Big `json:"callGasLimit"`
	PaymasterVerificationGasLimit *hexutil.Big `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *hexutil.Big `json:"paymasterPostOpGasLimit,omitempty"`
}

// UserOperationReceipt mirrors eth_getUserOperationReceipt's response.
type UserOperationReceipt struct {
	UserOpHash    common.Hash    `json:"userOpHash"`
	Sender        common.Address `json:"sender"`
	Paymaster     common.Address `json:"paymaster"`
	Nonce         string         `json:"nonce"`
	Success       bool           `json:"success"`
	ActualGasCost string         `json:"actualGasCost"`
	ActualGasUsed string         `json:"actualGasUsed"`
	TransactionHash common.Hash  `json:"transactionHash,omitempty"`
}

// Bundler is the off-chain RPC surface the core consumes.
type Bundler interface {
	ChainId(ctx context.Context) (*big.Int, error)
	SupportedEntryPoints(ctx context.Context) ([]common.Address, error)
	EstimateUserOperationGas(ctx context.Context, op any, entryPoint common.Address) (*GasEstimates, error)
	SendUserOperation(ctx context.Context, op any, entryPoint common.Address) (common.Hash, error)
	GetUserOperationReceipt(ctx context.Context, userOpHash common.Hash) (*UserOperationReceipt, error)
}

// BundlerClient is the rpc.Client-backed Bundler implementation.
type BundlerClient struct {
	client *rpc.Client
}

// DialBundler dials rawurl and wraps the resulting client as a Bundler.
func DialBundler(ctx context.Context, rawurl string) (Bundler, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return NewBundlerClient(c), nil
}

// NewBundlerClient wraps an already-dialed rpc.Client as a Bundler.
func NewBundlerClient(c *rpc.Client) Bundler {
	return &BundlerClient{client: c}
}

// handleRPCError wraps a raw RPC failure into the bundler_rpc error kind,
// extracting whatever structured error data the bundler returned.
func handleRPCError(operation string, err error) error {
	if err == nil {
		return nil
	}
	code := 0
	if coded, ok := err.(rpc.Error); ok {
		code = coded.ErrorCode()
	}
	if dataErr, ok := err.(rpc.DataError); ok {
		return aaerrors.NewBundlerRPCError(operation, code, dataErr.Error(), dataErr.ErrorData())
	}
	return aaerrors.Wrap(aaerrors.BundlerRPC, operation, err)
}

func (b *BundlerClient) ChainId(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := b.client.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return nil, handleRPCError("eth_chainId", err)
	}
	return (*big.Int)(&result), nil
}

func (b *BundlerClient) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	var result []common.Address
	if err := b.client.CallContext(ctx, &result, "eth_supportedEntryPoints"); err != nil {
		return nil, handleRPCError("eth_supportedEntryPoints", err)
	}
	return result, nil
}

func (b *BundlerClient) EstimateUserOperationGas(ctx context.Context, op any, entryPoint common.Address) (*GasEstimates, error) {
	var result GasEstimates
	if err := b.client.CallContext(ctx, &result, "eth_estimateUserOperationGas", op, entryPoint); err != nil {
		return nil, handleRPCError("eth_estimateUserOperationGas", err)
	}
	return &result, nil
}

func (b *BundlerClient) SendUserOperation(ctx context.Context, op any, entryPoint common.Address) (common.Hash, error) {
	var result common.Hash
	if err := b.client.CallContext(ctx, &result, "eth_sendUserOperation", op, entryPoint); err != nil {
		return result, handleRPCError("eth_sendUserOperation", err)
	}
	return result, nil
}

func (b *BundlerClient) GetUserOperationReceipt(ctx context.Context, userOpHash common.Hash) (*UserOperationReceipt, error) {
	var receipt UserOperationReceipt
	if err := b.client.CallContext(ctx, &receipt, "eth_getUserOperationReceipt", userOpHash); err != nil {
		return nil, handleRPCError("eth_getUserOperationReceipt", err)
	}
	if receipt.UserOpHash == (common.Hash{}) {
		return nil, nil
	}
	return &receipt, nil
}

// WaitForReceipt polls GetUserOperationReceipt until it's non-nil or
// maxAttempts is exhausted, sleeping pollInterval between attempts.
func WaitForReceipt(ctx context.Context, b Bundler, userOpHash common.Hash, maxAttempts int, pollInterval time.Duration) (*UserOperationReceipt, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		receipt, err := b.GetUserOperationReceipt(ctx, userOpHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return nil, aaerrors.Wrap(aaerrors.BundlerRPC, "getUserOperationReceipt",
		aaerrors.BadInputf("no receipt for %s after %d attempts", userOpHash, maxAttempts))
}
