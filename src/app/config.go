package app

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds the configuration the example program in cmd/erc4337
// needs: a signing key, the RPC URLs it dials, and how much to log.
// There is no HTTP server, database, or queue here — the core library
// this repo implements is a pure client, not a service.
type AppConfig struct {
	// =========================== REQUIRED ===========================

	// Private key for signing user operations (required).
	PrivateKey *string

	// =========================== OPTIONAL ===========================

	// Logging configuration.
	LogLevel *string

	// Bundler and paymaster RPC endpoints (no public default — these are
	// provider-specific and must be supplied).
	BundlerRPCURL   *string
	PaymasterRPCURL *string

	// Public chain RPC URLs (all have defaults).
	SepoliaRPCURL         *string
	ArbitrumSepoliaRPCURL *string
	BaseSepoliaRPCURL     *string
	OptimismSepoliaRPCURL *string
	PolygonAmoyRPCURL     *string

	// EntryPoint override, for pointing at a non-standard deployment
	// during testing.
	EntryPointOverride *string
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{}
	loadRequiredConfig(config)
	loadOptionalConfig(config)
	return config
}

// loadRequiredConfig loads all required configuration values and fails fast if any are missing.
func loadRequiredConfig(config *AppConfig) {
	privateKey := os.Getenv("PRIVATE_KEY")
	if privateKey == "" {
		log.Fatalf("REQUIRED: PRIVATE_KEY not set in environment")
	}
	privateKey = strings.TrimPrefix(privateKey, "0x")
	config.PrivateKey = &privateKey
}

// loadOptionalConfig loads all optional configuration values with sensible defaults.
func loadOptionalConfig(config *AppConfig) {
	logLevel := getEnvWithDefault("LOG_LEVEL", "debug")
	config.LogLevel = &logLevel

	bundlerURL := os.Getenv("BUNDLER_RPC_URL")
	config.BundlerRPCURL = &bundlerURL

	paymasterURL := os.Getenv("PAYMASTER_RPC_URL")
	config.PaymasterRPCURL = &paymasterURL

	entryPointOverride := os.Getenv("ENTRY_POINT_OVERRIDE")
	config.EntryPointOverride = &entryPointOverride

	loadRPCConfig(config)
}

// loadRPCConfig loads public chain RPC URLs with public node defaults.
func loadRPCConfig(config *AppConfig) {
	sepoliaRPCURL := getEnvWithDefault("SEPOLIA_RPC_URL", "https://ethereum-sepolia-rpc.publicnode.com")
	config.SepoliaRPCURL = &sepoliaRPCURL

	arbitrumSepoliaRPCURL := getEnvWithDefault("ARBITRUM_SEPOLIA_RPC_URL", "https://arbitrum-sepolia-rpc.publicnode.com")
	config.ArbitrumSepoliaRPCURL = &arbitrumSepoliaRPCURL

	baseSepoliaRPCURL := getEnvWithDefault("BASE_SEPOLIA_RPC_URL", "https://base-sepolia-rpc.publicnode.com")
	config.BaseSepoliaRPCURL = &baseSepoliaRPCURL

	optimismSepoliaRPCURL := getEnvWithDefault("OPTIMISM_SEPOLIA_RPC_URL", "https://optimism-sepolia-rpc.publicnode.com")
	config.OptimismSepoliaRPCURL = &optimismSepoliaRPCURL

	polygonAmoyRPCURL := getEnvWithDefault("POLYGON_AMOY_RPC_URL", "https://polygon-amoy-rpc.publicnode.com")
	config.PolygonAmoyRPCURL = &polygonAmoyRPCURL
}

// getEnvWithDefault returns environment variable value or default if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParsePollingInterval parses a polling-interval override from the
// environment, falling back to defaultSeconds.
func ParsePollingInterval(defaultSeconds int) int {
	pollingIntervalStr := os.Getenv("POLLING_INTERVAL")
	if pollingIntervalStr == "" {
		return defaultSeconds
	}
	if parsed, err := strconv.Atoi(pollingIntervalStr); err == nil {
		return parsed
	}
	log.Printf("Warning: invalid POLLING_INTERVAL value %q, using default %d seconds", pollingIntervalStr, defaultSeconds)
	return defaultSeconds
}
