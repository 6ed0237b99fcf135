package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// Mode selects the price source and persistence wiring: "live" uses the
	// external price feed and PostgreSQL, "dry" runs on static prices with an
	// in-memory journal.
	Mode string

	// Assets is the ordered list of approved collateral denoms.
	Assets []string

	// DebtDenom is the denom of the unit-of-account debt token.
	DebtDenom string

	// CustodyAccount holds pledged collateral and in-flight debt tokens.
	CustodyAccount string

	// WebPort is the port the HTTP status server listens on.
	WebPort int
)

// Live-mode price feed configuration.
var (
	// PriceFeedURL is the base URL of the external quote API.
	PriceFeedURL string
	// PriceFeedAPIKey authenticates against the quote API.
	PriceFeedAPIKey string
	// AssetSymbols maps each approved denom to its quote API symbol.
	AssetSymbols map[string]string
)

// Dry-mode price configuration.
var (
	// StaticPrices maps each approved denom to a fixed feed-precision price.
	StaticPrices map[string]int64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	Mode, err = getEnv("SCE_MODE")
	if err != nil {
		return err
	}
	if Mode != "live" && Mode != "dry" {
		return errors.New("SCE_MODE must be 'live' or 'dry', got: " + Mode)
	}

	assetsRaw, err := getEnv("SCE_ASSETS")
	if err != nil {
		return err
	}
	Assets = splitList(assetsRaw)
	if len(Assets) == 0 {
		return errors.New("SCE_ASSETS must list at least one collateral denom")
	}

	DebtDenom, err = getEnv("SCE_DEBT_DENOM")
	if err != nil {
		return err
	}

	CustodyAccount, err = getEnv("SCE_CUSTODY_ACCOUNT")
	if err != nil {
		return err
	}

	WebPort, err = getEnvAsInt("WEB_PORT")
	if err != nil {
		return err
	}

	if Mode == "live" {
		if err := loadLiveConfig(); err != nil {
			return err
		}
	} else {
		if err := loadDryConfig(); err != nil {
			return err
		}
	}

	log.Debug().
		Str("Mode", Mode).
		Strs("Assets", Assets).
		Str("DebtDenom", DebtDenom).
		Msg("Configuration loaded successfully.")

	return nil
}

func loadLiveConfig() error {
	var err error

	PriceFeedURL, err = getEnv("PRICE_FEED_URL")
	if err != nil {
		return err
	}
	PriceFeedAPIKey, err = getEnv("PRICE_FEED_API_KEY")
	if err != nil {
		return err
	}

	symbolsRaw, err := getEnv("SCE_ASSET_SYMBOLS")
	if err != nil {
		return err
	}
	AssetSymbols = make(map[string]string)
	for _, pair := range splitList(symbolsRaw) {
		denom, symbol, ok := strings.Cut(pair, "=")
		if !ok || denom == "" || symbol == "" {
			return errors.New("SCE_ASSET_SYMBOLS entries must be denom=SYMBOL, got: " + pair)
		}
		AssetSymbols[denom] = symbol
	}
	for _, asset := range Assets {
		if _, ok := AssetSymbols[asset]; !ok {
			return errors.New("SCE_ASSET_SYMBOLS is missing an entry for asset " + asset)
		}
	}

	return loadDBConfig()
}

func loadDryConfig() error {
	pricesRaw, err := getEnv("SCE_STATIC_PRICES")
	if err != nil {
		return err
	}
	StaticPrices = make(map[string]int64)
	for _, pair := range splitList(pricesRaw) {
		denom, priceStr, ok := strings.Cut(pair, "=")
		if !ok || denom == "" {
			return errors.New("SCE_STATIC_PRICES entries must be denom=price, got: " + pair)
		}
		price, err := strconv.ParseInt(priceStr, 10, 64)
		if err != nil {
			return errors.New("SCE_STATIC_PRICES price for " + denom + " must be a valid int64, got: " + priceStr)
		}
		StaticPrices[denom] = price
	}
	for _, asset := range Assets {
		if _, ok := StaticPrices[asset]; !ok {
			return errors.New("SCE_STATIC_PRICES is missing an entry for asset " + asset)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}
