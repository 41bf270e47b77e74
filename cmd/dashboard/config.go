package main

import (
	"fmt"
	"os"
	"time"

	configtypes "github.com/daszybak/polyterm/internal/config"
	"github.com/daszybak/polyterm/internal/wallet"
	"go.yaml.in/yaml/v4"
)

type config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	LogFile  string `yaml:"log_file"`

	Platforms struct {
		PolyMarket struct {
			WebsocketURL    string `yaml:"websocket_url"`
			GammaURL        string `yaml:"gamma_url"`
			ClobURL         string `yaml:"clob_url"`
			RefreshEvery    int    `yaml:"refresh_every"`
			NewMarketsLimit int    `yaml:"new_markets_limit"`
		} `yaml:"polymarket"`
	} `yaml:"platforms"`

	UI struct {
		Tick         configtypes.Duration `yaml:"tick"`
		DisplayCount int                  `yaml:"display_count"`
	} `yaml:"ui"`

	Wallet struct {
		RPCURL     string                      `yaml:"rpc_url"`
		PrivateKey configtypes.ECDSAPrivateKey `yaml:"private_key"`
	} `yaml:"wallet"`
}

func readConfig(configPath *string) (*config, error) {
	rawConfig, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read file %s: %w", *configPath, err)
	}

	cfg := &config{}
	if err = yaml.Unmarshal(rawConfig, cfg); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %w", err)
	}

	applyDefaults(cfg)

	err = validateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't validate config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "polyterm.log"
	}
	if cfg.UI.Tick.Duration() == 0 {
		cfg.UI.Tick = configtypes.Duration(100 * time.Millisecond)
	}
	if cfg.UI.DisplayCount == 0 {
		cfg.UI.DisplayCount = 50
	}
	if cfg.Wallet.RPCURL == "" {
		cfg.Wallet.RPCURL = wallet.DefaultRPCURL
	}
}

func validateConfig(cfg *config) error {
	// Polymarket
	if cfg.Platforms.PolyMarket.WebsocketURL == "" {
		return fmt.Errorf("platforms.polymarket.websocket_url is required")
	}
	if cfg.Platforms.PolyMarket.GammaURL == "" {
		return fmt.Errorf("platforms.polymarket.gamma_url is required")
	}
	if cfg.Platforms.PolyMarket.ClobURL == "" {
		return fmt.Errorf("platforms.polymarket.clob_url is required")
	}
	if cfg.Platforms.PolyMarket.RefreshEvery < 0 {
		return fmt.Errorf("platforms.polymarket.refresh_every must not be negative")
	}

	// UI
	if cfg.UI.DisplayCount < 0 {
		return fmt.Errorf("ui.display_count must not be negative")
	}
	if cfg.UI.Tick.Duration() < 10*time.Millisecond {
		return fmt.Errorf("ui.tick must be at least 10ms")
	}

	return nil
}
