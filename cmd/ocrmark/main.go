// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ocrmark CLI, which turns scanned
// PDFs into Markdown with extracted images using the Mistral OCR API.
package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is shared by every subcommand; its level and format are set from
// configuration before any command runs.
var logger = logrus.New()

// rootCmd is the base command for the ocrmark CLI.
var rootCmd = &cobra.Command{
	Use:   "ocrmark",
	Short: "Convert PDFs to Markdown with Mistral OCR",
	Long: `ocrmark sends PDFs through the Mistral OCR service and writes one
Markdown file per document, with every embedded image saved next to it and
referenced by a wikilink.

Documents larger than the service's size limit are split into page ranges,
processed chunk by chunk and reassembled. OCR responses are cached per chunk
so an interrupted run resumes without repeating paid calls.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logger.WithField("file", f).Info("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ocrmark.yaml or ~/.config/ocrmark/ocrmark.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("output-dir", "", "root directory for per-document output (default ocr_output)")
	pf.String("ledger", "", "run ledger database (default <output-dir>/ledger.db)")

	bindFlags(pf, map[string]string{
		"log_level":  "log-level",
		"log_format": "log-format",
		"output_dir": "output-dir",
		"ledger":     "ledger",
	})
	setDefaults()
}

// bindFlags binds viper keys to the named flags.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	// .env may carry OCRMARK_* settings and MISTRAL_API_KEY.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.WithError(err).Warn("could not load .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ocrmark")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ocrmark"))
		}
	}

	viper.SetEnvPrefix("OCRMARK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			logger.WithError(err).Warn("could not read config file")
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
