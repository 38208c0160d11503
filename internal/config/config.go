package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Public base URL used when building storage links
	BaseURL string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Auth configuration
	AuthJWTSecret string

	// Storage configuration
	StorageRoot      string
	StorageURLSecret string
	DownloadTTL      int // seconds a signed download URL stays valid

	// Algorand configuration
	AlgodURL        string
	AlgodToken      string
	MerchantAddress string
	AlgoRate        decimal.Decimal // fixed USD -> ALGO conversion rate
	ConfirmRounds   uint64

	// Payment lifecycle configuration
	PendingTxTTLMinutes   int
	ReconcileSweepMinutes int

	// Demo payment rate limiting
	DemoRateLimitMinutes int

	// Brevo email configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string

	// Wallet providers considered installed, comma separated
	// (pera, defly, exodus, kibisis). A dev signing mnemonic may be
	// attached to one of them via WALLET_DEV_MNEMONIC.
	WalletProviders   []string
	WalletDevProvider string
	WalletDevMnemonic string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:                  getEnv("PORT", "8080"),
		Mode:                  getEnv("GIN_MODE", "debug"),
		BaseURL:               getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AuthJWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
		StorageRoot:           getEnv("STORAGE_ROOT", "./storage"),
		StorageURLSecret:      getEnv("STORAGE_URL_SECRET", ""),
		DownloadTTL:           getEnvInt("DOWNLOAD_TTL_SECONDS", 3600),
		AlgodURL:              getEnv("ALGOD_URL", "https://testnet-api.algonode.cloud"),
		AlgodToken:            getEnv("ALGOD_TOKEN", ""),
		MerchantAddress:       getEnv("MERCHANT_ADDRESS", ""),
		AlgoRate:              getEnvDecimal("ALGO_RATE", "0.15"),
		ConfirmRounds:         uint64(getEnvInt("CONFIRM_ROUNDS", 4)),
		PendingTxTTLMinutes:   getEnvInt("PENDING_TX_TTL_MINUTES", 30),
		ReconcileSweepMinutes: getEnvInt("RECONCILE_SWEEP_MINUTES", 5),
		DemoRateLimitMinutes:  getEnvInt("DEMO_RATE_LIMIT_MINUTES", 1),
		BrevoAPIKey:           getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:        getEnv("BREVO_FROM_EMAIL", ""),
		BrevoFromName:         getEnv("BREVO_FROM_NAME", "Lumi Hub"),
		WalletProviders:       getEnvList("WALLET_PROVIDERS", "pera,defly,exodus,kibisis"),
		WalletDevProvider:     getEnv("WALLET_DEV_PROVIDER", ""),
		WalletDevMnemonic:     getEnv("WALLET_DEV_MNEMONIC", ""),
	}

	return AppConfig.Validate()
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.AuthJWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	if c.StorageURLSecret == "" {
		return fmt.Errorf("STORAGE_URL_SECRET is required")
	}

	if c.MerchantAddress != "" {
		if _, err := types.DecodeAddress(c.MerchantAddress); err != nil {
			return fmt.Errorf("invalid MERCHANT_ADDRESS format: %w", err)
		}
	}

	if c.AlgoRate.Sign() <= 0 {
		return fmt.Errorf("ALGO_RATE must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}

func getEnvList(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
