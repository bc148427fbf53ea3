package client

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// PaymasterStubResponse is pm_getPaymasterStubData's response shape. A
// true IsFinal means the stub fields are already the final ones and
// pm_getPaymasterData must not be called.
type PaymasterStubResponse struct {
	Paymaster                     common.Address `json:"paymaster"`
	PaymasterData                 hexutil.Bytes  `json:"paymasterData"`
	PaymasterVerificationGasLimit *hexutil.Big   `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *hexutil.Big   `json:"paymasterPostOpGasLimit,omitempty"`
	IsFinal                       bool           `json:"isFinal,omitempty"`
}

// PaymasterDataResponse is pm_getPaymasterData's response shape (no
// IsFinal — it's always final).
type PaymasterDataResponse struct {
	Paymaster                     common.Address `json:"paymaster"`
	PaymasterData                 hexutil.Bytes  `json:"paymasterData"`
	PaymasterVerificationGasLimit *hexutil.Big   `json:"paymasterVerificationGasLimit,omitempty"`
	PaymasterPostOpGasLimit       *hexutil.Big   `json:"paymasterPostOpGasLimit,omitempty"`
}

// Paymaster is the gas-sponsorship RPC surface the core consumes:
// pm_getPaymasterStubData for a cheap estimate-time placeholder, then
// pm_getPaymasterData once gas limits are final.
type Paymaster interface {
	GetPaymasterStubData(ctx context.Context, op any, entryPoint common.Address, chainID *big.Int, pmContext any) (*PaymasterStubResponse, error)
	GetPaymasterData(ctx context.Context, op any, entryPoint common.Address, chainID *big.Int, pmContext any) (*PaymasterDataResponse, error)
}

// PaymasterClient is the rpc.Client-backed Paymaster implementation,
// built the same way BundlerClient wraps eth_* calls.
type PaymasterClient struct {
	client *rpc.Client
}

// DialPaymaster dials rawurl and wraps the resulting client as a Paymaster.
func DialPaymaster(ctx context.Context, rawurl string) (Paymaster, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return NewPaymasterClient(c), nil
}

// NewPaymasterClient wraps an already-dialed rpc.Client as a Paymaster.
func NewPaymasterClient(c *rpc.Client) Paymaster {
	return &PaymasterClient{client: c}
}

func (p *PaymasterClient) GetPaymasterStubData(ctx context.Context, op any, entryPoint common.Address, chainID *big.Int, pmContext any) (*PaymasterStubResponse, error) {
	var result PaymasterStubResponse
	args := []any{op, entryPoint, (*hexutil.Big)(chainID)}
	if pmContext != nil {
		args = append(args, pmContext)
	}
	if err := p.client.CallContext(ctx, &result, "pm_getPaymasterStubData", args...); err != nil {
		return nil, handleRPCError("pm_getPaymasterStubData", err)
	}
	return &result, nil
}

func (p *PaymasterClient) GetPaymasterData(ctx context.Context, op any, entryPoint common.Address, chainID *big.Int, pmContext any) (*PaymasterDataResponse, error) {
	var result PaymasterDataResponse
	args := []any{op, entryPoint, (*hexutil.Big)(chainID)}
	if pmContext != nil {
		args = append(args, pmContext)
	}
	if err := p.client.CallContext(ctx, &result, "pm_getPaymasterData", args...); err != nil {
		return nil, handleRPCError("pm_getPaymasterData", err)
	}
	return &result, nil
}
