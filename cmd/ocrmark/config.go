// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pdiddy/ocrmark/pkg/types"
)

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("input_dir", "pdfs_to_process")
	viper.SetDefault("output_dir", "ocr_output")
	viper.SetDefault("done_dir", "pdfs-done")
	viper.SetDefault("failed_dir", "pdfs-failed")
	viper.SetDefault("max_chunk_bytes", types.DefaultMaxChunkBytes)
	viper.SetDefault("min_chunk_bytes", types.DefaultMinChunkBytes)
	viper.SetDefault("model", types.DefaultModel)
	viper.SetDefault("signed_url_expiry", 1)
	viper.SetDefault("base_url", "https://api.mistral.ai/v1/")
	viper.SetDefault("timeout", "5m")
	viper.SetDefault("max_retries", types.DefaultMaxRetries)
}

// conversionConfig assembles the run configuration from flags, environment,
// config file and defaults, in that order of precedence.
func conversionConfig() types.ConversionConfig {
	cfg := types.ConversionConfig{
		HTTPConfig: types.HTTPConfig{
			BaseURL:    viper.GetString("base_url"),
			APIKey:     viper.GetString("api_key"),
			Timeout:    viper.GetDuration("timeout"),
			MaxRetries: viper.GetInt("max_retries"),
		},
		InputDir:        viper.GetString("input_dir"),
		OutputDir:       viper.GetString("output_dir"),
		DoneDir:         viper.GetString("done_dir"),
		FailedDir:       viper.GetString("failed_dir"),
		TempDir:         viper.GetString("temp_dir"),
		MaxChunkBytes:   viper.GetInt64("max_chunk_bytes"),
		MinChunkBytes:   viper.GetInt64("min_chunk_bytes"),
		Model:           viper.GetString("model"),
		SignedURLExpiry: viper.GetInt("signed_url_expiry"),
		LedgerPath:      viper.GetString("ledger"),
	}
	cfg = cfg.WithDefaults()
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = filepath.Join(cfg.OutputDir, "ledger.db")
	}
	return cfg
}

// setupLogging configures the shared logger. Logs go to stderr so stdout
// carries only command results.
func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	logger.SetOutput(os.Stderr)

	switch format {
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported log format %q: use text or json", format)
	}
	return nil
}
