package main

import (
	"context"
	"crypto/ecdsa"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	configtypes "github.com/daszybak/polyterm/internal/config"
	"github.com/daszybak/polyterm/internal/platform"
	"github.com/daszybak/polyterm/internal/polymarket"
	"github.com/daszybak/polyterm/internal/polymarket/clob"
	"github.com/daszybak/polyterm/internal/state"
	"github.com/daszybak/polyterm/internal/ui"
	"github.com/daszybak/polyterm/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/dashboard/config.yaml", "path to config file")
	flag.Parse()

	// Optional; the wallet key may come from the environment.
	_ = godotenv.Load()

	cfg, err := readConfig(configPath)
	if err != nil {
		log.Fatalf("Couldn't read config: %v", err)
	}

	// The terminal belongs to the UI, so logs go to a rotating file.
	logger := slog.New(slog.NewTextHandler(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    20, // MB
		MaxBackups: 3,
	}, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appState := state.New()
	reader := state.NewSnapshotReader(appState, cfg.UI.DisplayCount)

	var feed platform.Platform = polymarket.New(polymarket.Config{
		WebsocketURL:    cfg.Platforms.PolyMarket.WebsocketURL,
		GammaURL:        cfg.Platforms.PolyMarket.GammaURL,
		RefreshEvery:    cfg.Platforms.PolyMarket.RefreshEvery,
		NewMarketsLimit: cfg.Platforms.PolyMarket.NewMarketsLimit,
	}, appState, logger)

	// A feed failure stops ingestion but not the dashboard; it keeps
	// rendering the last snapshot.
	go func() {
		if err := feed.Start(ctx); err != nil {
			logger.Error("ingestion stopped", "error", err)
		}
	}()

	walletClient, walletKey := setupWallet(cfg, logger)

	dashboard := ui.New(
		ui.Config{Tick: cfg.UI.Tick.Duration()},
		reader,
		clob.New(cfg.Platforms.PolyMarket.ClobURL),
		walletClient,
		walletKey,
		logger,
	)

	if err := dashboard.Run(ctx); err != nil {
		log.Fatalf("Couldn't run dashboard: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := feed.Stop(stopCtx); err != nil {
		logger.Warn("couldn't stop feed cleanly", "error", err)
	}
}

// setupWallet returns a nil client and key when no private key is
// configured; the wallet page then stays informational.
func setupWallet(cfg *config, logger *slog.Logger) (*wallet.Client, *ecdsa.PrivateKey) {
	key := cfg.Wallet.PrivateKey.PrivateKey
	if key == nil {
		if encoded := os.Getenv("POLYMARKET_PRIVATE_KEY"); encoded != "" {
			parsed, err := configtypes.ParseECDSAPrivateKey(encoded)
			if err != nil {
				logger.Warn("couldn't parse POLYMARKET_PRIVATE_KEY", "error", err)
			} else {
				key = parsed
			}
		}
	}
	if key == nil {
		return nil, nil
	}

	client, err := wallet.New(cfg.Wallet.RPCURL, logger)
	if err != nil {
		logger.Warn("couldn't create wallet client", "error", err)
		return nil, nil
	}
	return client, key
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
