// Package rpcclient implements the public-chain collaborator an
// orchestration Client can use to resolve counterfactual addresses and
// check deployment state: a thin multi-chain wrapper over
// go-ethereum's ethclient, dialed by chain ID.
package rpcclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	"github.com/ethaccount/aa4337/erc4337/aaerrors"
	"github.com/ethaccount/aa4337/erc4337/enc"
)

// Config maps chain IDs to their RPC endpoints.
type Config struct {
	SepoliaRPCURL         string
	ArbitrumSepoliaRPCURL string
	BaseSepoliaRPCURL     string
	OptimismSepoliaRPCURL string
	PolygonAmoyRPCURL     string
}

const (
	chainIDSepolia         = 11155111
	chainIDArbitrumSepolia = 421614
	chainIDBaseSepolia     = 84532
	chainIDOptimismSepolia = 11155420
	chainIDPolygonAmoy     = 80002
)

// Client implements accounts.PublicClient across the chains listed in
// Config, dialing lazily and caching connections per chain ID.
type Client struct {
	cfg     Config
	clients map[int64]*ethclient.Client
}

// New constructs a Client. No connections are made until first use.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, clients: make(map[int64]*ethclient.Client)}
}

func (c *Client) urlFor(chainID int64) (string, error) {
	switch chainID {
	case chainIDSepolia:
		return c.cfg.SepoliaRPCURL, nil
	case chainIDArbitrumSepolia:
		return c.cfg.ArbitrumSepoliaRPCURL, nil
	case chainIDBaseSepolia:
		return c.cfg.BaseSepoliaRPCURL, nil
	case chainIDOptimismSepolia:
		return c.cfg.OptimismSepoliaRPCURL, nil
	case chainIDPolygonAmoy:
		return c.cfg.PolygonAmoyRPCURL, nil
	default:
		return "", fmt.Errorf("unsupported chain id: %d", chainID)
	}
}

// Dial returns a cached ethclient.Client for chainID, dialing one if
// none exists yet.
func (c *Client) Dial(ctx context.Context, chainID int64) (*ethclient.Client, error) {
	if existing, ok := c.clients[chainID]; ok {
		return existing, nil
	}
	url, err := c.urlFor(chainID)
	if err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	c.clients[chainID] = client
	return client, nil
}

// ChainClient binds a Client to one chain ID, the shape
// accounts.PublicClient expects (one resolver per account, one chain
// per resolver).
type ChainClient struct {
	parent  *Client
	chainID int64
	log     zerolog.Logger
}

// ForChain returns a ChainClient scoped to chainID.
func (c *Client) ForChain(chainID int64) *ChainClient {
	return &ChainClient{parent: c, chainID: chainID, log: zerolog.Nop()}
}

// WithLogger attaches a logger at construction time, since this client
// has no per-call request context to pull one from.
func (cc *ChainClient) WithLogger(logger zerolog.Logger) *ChainClient {
	cc.log = logger.With().Str("component", "rpcclient").Logger()
	return cc
}

var senderAddressResultSelector = enc.FunctionSelector("SenderAddressResult(address)")

var getSenderAddressArgs = abi.Arguments{{Type: mustBytesType()}}

func mustBytesType() abi.Type {
	t, _ := abi.NewType("bytes", "", nil)
	return t
}

// GetSenderAddress simulates EntryPoint.getSenderAddress(initCode),
// which always reverts with SenderAddressResult(address) by design
// (EIP-4337's way of returning pure computed data from a state-changing
// signature without actually changing state), and decodes the address
// out of the revert payload.
func (cc *ChainClient) GetSenderAddress(ctx context.Context, entryPoint common.Address, initCode []byte) (common.Address, error) {
	client, err := cc.parent.Dial(ctx, cc.chainID)
	if err != nil {
		return common.Address{}, aaerrors.Wrap(aaerrors.PublicRPC, "dial", err)
	}

	selector := enc.FunctionSelector("getSenderAddress(bytes)")
	body, err := getSenderAddressArgs.Pack(initCode)
	if err != nil {
		return common.Address{}, err
	}
	calldata := append(append([]byte{}, selector[:]...), body...)

	_, err = client.CallContract(ctx, ethereum.CallMsg{To: &entryPoint, Data: calldata}, nil)
	if err == nil {
		// getSenderAddress always reverts with SenderAddressResult; a clean
		// return means there's no revert payload to decode the address from.
		return common.Address{}, aaerrors.Wrap(aaerrors.PublicRPC, "getSenderAddress",
			fmt.Errorf("call unexpectedly succeeded without reverting"))
	}

	revertData, ok := extractRevertData(err)
	if !ok {
		return common.Address{}, aaerrors.NewPublicRPCError("getSenderAddress", 0, err.Error(), nil)
	}
	return decodeSenderAddressResult(revertData)
}

// CodeAt returns the deployed code at addr, or nil if undeployed.
func (cc *ChainClient) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	client, err := cc.parent.Dial(ctx, cc.chainID)
	if err != nil {
		return nil, aaerrors.Wrap(aaerrors.PublicRPC, "dial", err)
	}
	code, err := client.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, aaerrors.NewPublicRPCError("getCode", 0, err.Error(), nil)
	}
	return code, nil
}

// SuggestFees returns (maxFeePerGas, maxPriorityFeePerGas) for chainID,
// computed as maxFeePerGas = baseFee*150/100 + the node's suggested
// priority fee, giving headroom across a couple of blocks without a
// separate fee-history walk.
func (cc *ChainClient) SuggestFees(ctx context.Context) (*big.Int, *big.Int, error) {
	client, err := cc.parent.Dial(ctx, cc.chainID)
	if err != nil {
		return nil, nil, aaerrors.Wrap(aaerrors.PublicRPC, "dial", err)
	}
	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, aaerrors.NewPublicRPCError("eth_getBlockByNumber", 0, err.Error(), nil)
	}
	if header.BaseFee == nil {
		return nil, nil, aaerrors.Wrap(aaerrors.PublicRPC, "suggestFees", fmt.Errorf("chain %d has no base fee (pre-EIP-1559?)", cc.chainID))
	}
	priorityFee, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, aaerrors.NewPublicRPCError("eth_maxPriorityFeePerGas", 0, err.Error(), nil)
	}

	maxFeePerGas := new(big.Int).Mul(header.BaseFee, big.NewInt(150))
	maxFeePerGas.Div(maxFeePerGas, big.NewInt(100))
	maxFeePerGas.Add(maxFeePerGas, priorityFee)

	return maxFeePerGas, priorityFee, nil
}

// extractRevertData pulls the raw revert payload out of a go-ethereum
// JSON-RPC DataError, the shape eth_call reverts surface as.
func extractRevertData(err error) ([]byte, bool) {
	dataErr, ok := err.(rpc.DataError)
	if !ok {
		return nil, false
	}
	data := dataErr.ErrorData()
	switch v := data.(type) {
	case string:
		b, decErr := enc.HexDecode(v)
		if decErr != nil {
			return nil, false
		}
		return b, true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}

func decodeSenderAddressResult(revertData []byte) (common.Address, error) {
	if len(revertData) < 4+32 {
		return common.Address{}, aaerrors.Wrap(aaerrors.PublicRPC, "getSenderAddress",
			fmt.Errorf("revert payload too short: %d bytes", len(revertData)))
	}
	if [4]byte(revertData[:4]) != senderAddressResultSelector {
		return common.Address{}, aaerrors.Wrap(aaerrors.PublicRPC, "getSenderAddress",
			fmt.Errorf("unexpected revert selector %x", revertData[:4]))
	}
	return common.BytesToAddress(revertData[4+12 : 4+32]), nil
}
