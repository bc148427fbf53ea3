package main

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/accounts"
	"github.com/ethaccount/aa4337/erc4337/client"
	"github.com/ethaccount/aa4337/src/app"
	"github.com/ethaccount/aa4337/src/rpcclient"
)

// simpleAccountFactorySepolia is the well-known SimpleAccountFactory
// deployment address shared across EVM testnets.
var simpleAccountFactorySepolia = common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")

const chainIDSepolia = 11155111

func main() {
	_ = godotenv.Load()
	config := app.NewAppConfig()

	logLevel := "debug"
	if config.LogLevel != nil {
		logLevel = *config.LogLevel
	}
	logger := app.InitLogger(logLevel)
	log.Logger = logger

	ctx := context.Background()
	if err := run(ctx, config, logger); err != nil {
		logger.Fatal().Err(err).Msg("run failed")
	}
}

// run drives the self-ping scenario: a Simple account v0.7 sends a
// zero-value call to itself, routed through prepare → sign → send.
func run(ctx context.Context, config *app.AppConfig, logger zerolog.Logger) error {
	if config.BundlerRPCURL == nil || *config.BundlerRPCURL == "" {
		return fmt.Errorf("BUNDLER_RPC_URL is required to send user operations")
	}

	privateKeyHex := strings.TrimPrefix(*config.PrivateKey, "0x")
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}
	owner := accounts.NewPrivateKeyOwner(privateKey)
	senderHint := crypto.PubkeyToAddress(privateKey.PublicKey)

	logger.Info().Str("owner", senderHint.Hex()).Msg("loaded signer")

	entryPoint := erc4337.EntryPointV07
	if config.EntryPointOverride != nil && *config.EntryPointOverride != "" {
		entryPoint = common.HexToAddress(*config.EntryPointOverride)
	}

	account := accounts.NewSimpleAccount(owner, simpleAccountFactorySepolia, big.NewInt(0), entryPoint, nil)

	bundler, err := client.DialBundler(ctx, *config.BundlerRPCURL)
	if err != nil {
		return fmt.Errorf("failed to dial bundler: %w", err)
	}

	public := rpcclient.New(rpcclient.Config{
		SepoliaRPCURL:         valueOr(config.SepoliaRPCURL, ""),
		ArbitrumSepoliaRPCURL: valueOr(config.ArbitrumSepoliaRPCURL, ""),
		BaseSepoliaRPCURL:     valueOr(config.BaseSepoliaRPCURL, ""),
		OptimismSepoliaRPCURL: valueOr(config.OptimismSepoliaRPCURL, ""),
		PolygonAmoyRPCURL:     valueOr(config.PolygonAmoyRPCURL, ""),
	}).ForChain(chainIDSepolia).WithLogger(logger)

	c := client.NewClient(account, bundler, entryPoint, big.NewInt(chainIDSepolia))
	c.Public = public
	if config.PaymasterRPCURL != nil && *config.PaymasterRPCURL != "" {
		pm, err := client.DialPaymaster(ctx, *config.PaymasterRPCURL)
		if err != nil {
			return fmt.Errorf("failed to dial paymaster: %w", err)
		}
		c.Paymaster = pm
	}

	sender, err := account.Address(ctx, public)
	if err != nil {
		return fmt.Errorf("failed to resolve sender address: %w", err)
	}
	logger.Info().Str("sender", sender.Hex()).Msg("resolved account address")

	maxFeePerGas, maxPriorityFeePerGas, err := public.SuggestFees(ctx)
	if err != nil {
		return fmt.Errorf("failed to suggest gas fees: %w", err)
	}

	calls := []erc4337.Call{{To: sender, Value: big.NewInt(0), Data: nil}}
	uo, err := c.Prepare(ctx, calls, maxFeePerGas, maxPriorityFeePerGas)
	if err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}

	if err := c.Sign(uo); err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}

	userOpHash, err := c.Send(ctx, uo)
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	logger.Info().Str("user_op_hash", userOpHash.Hex()).Msg("user operation submitted")

	receipt, err := client.WaitForReceipt(ctx, bundler, userOpHash, 30, 2*time.Second)
	if err != nil {
		return fmt.Errorf("waiting for receipt failed: %w", err)
	}
	logger.Info().Bool("success", receipt.Success).Msg("user operation mined")

	return nil
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
