package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/stablecore/sce/internal/bank"
	"github.com/stablecore/sce/internal/config"
	"github.com/stablecore/sce/internal/engine"
	"github.com/stablecore/sce/internal/logger"
	"github.com/stablecore/sce/internal/oracle"
	"github.com/stablecore/sce/internal/registry"
	"github.com/stablecore/sce/internal/state"
	"github.com/stablecore/sce/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main is the entry point for the SCE service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("SCE Core Starting...")

	// --- 2. Price Source and Journal Wiring (with Safety Switch) ---
	var (
		priceSource oracle.PriceOracle
		eventSink   engine.EventSink
		eventReader web.EventReader
	)

	switch config.Mode {
	case "live":
		log.Warn().Msg("Initializing SCE in LIVE mode. External price feed and database will be used.")

		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: config.DBPort,
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}

		feed, err := oracle.NewFeedClient(config.PriceFeedURL, config.PriceFeedAPIKey, config.AssetSymbols)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize price feed client")
		}
		priceSource = feed

		journal := state.NewJournal()
		eventSink = journal
		eventReader = journal

	case "dry":
		log.Info().Msg("Initializing SCE in DRY mode. Static prices, in-memory journal.")
		priceSource = oracle.NewStatic(config.StaticPrices)
		journal := state.NewMemoryJournal()
		eventSink = journal
		eventReader = journal

	default:
		log.Fatal().Str("mode", config.Mode).Msg("SCE_MODE must be 'live' or 'dry'. Halting to prevent accidental execution.")
	}

	// --- 3. Registry and Engine Creation with Dependency Injection ---
	sources := make([]oracle.PriceOracle, len(config.Assets))
	for i := range config.Assets {
		sources[i] = priceSource
	}
	reg, err := registry.New(config.Assets, sources)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create asset registry")
	}

	book := bank.NewBank(config.DebtDenom)

	engineConfig := engine.Config{
		Registry:       reg,
		DebtToken:      bank.NewDebtTokenView(book, config.CustodyAccount),
		AssetTransfer:  bank.NewAssetTransferView(book, config.CustodyAccount),
		EventSink:      eventSink,
		CustodyAccount: config.CustodyAccount,
	}

	eng, err := engine.New(engineConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create collateral engine")
	}

	log.Info().Msg("Collateral engine created successfully")

	// --- 4. Start Web Server ---
	webPort := strconv.Itoa(config.WebPort)

	webServer := web.NewWebServer(webPort, eng, eventReader)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting SCE status server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Wait for Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received, stopping SCE")
}
