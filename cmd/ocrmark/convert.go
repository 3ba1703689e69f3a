// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ocrmark/internal/ledger"
	"github.com/pdiddy/ocrmark/internal/ocr/mistral"
	"github.com/pdiddy/ocrmark/internal/pipeline"
	"github.com/pdiddy/ocrmark/internal/secrets"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdf...]",
	Short: "OCR PDFs into Markdown with extracted images",
	Long: `Convert processes every PDF in the input directory (or the files given
as arguments) through Mistral OCR. Each document gets a folder under the
output directory holding {name}.md, an images/ folder and the cached OCR
responses.

Inbox files are consumed: converted ones are copied to the done directory
and removed, abandoned ones are moved to the failed directory. Files given
as arguments are left in place.`,
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.String("input-dir", "", "inbox scanned for PDFs (default pdfs_to_process)")
	f.String("done-dir", "", "directory receiving copies of converted PDFs (default pdfs-done)")
	f.String("failed-dir", "", "directory receiving abandoned PDFs (default pdfs-failed)")
	f.String("temp-dir", "", "directory for temporary split files (default OS temp)")
	f.Int64("max-chunk-bytes", 0, "size above which a PDF is split (default 50 MiB)")
	f.Int64("min-chunk-bytes", 0, "split chunks smaller than this are skipped (default 1 MiB)")
	f.String("model", "", "OCR model (default mistral-ocr-latest)")
	f.String("api-key", "", "Mistral API key (default $MISTRAL_API_KEY or .secrets/mistral-api-key)")
	f.String("base-url", "", "Mistral API base URL")
	f.Duration("timeout", 0, "HTTP request timeout (default 5m)")
	f.Int("max-retries", 0, "retries on rate limits and transient errors, 0 disables (default 3)")
	f.Bool("skip-validate", false, "skip the API key check before the batch")
	f.Bool("no-ledger", false, "do not record results in the run ledger")

	bindFlags(f, map[string]string{
		"input_dir":       "input-dir",
		"done_dir":        "done-dir",
		"failed_dir":      "failed-dir",
		"temp_dir":        "temp-dir",
		"max_chunk_bytes": "max-chunk-bytes",
		"min_chunk_bytes": "min-chunk-bytes",
		"model":           "model",
		"api_key":         "api-key",
		"base_url":        "base-url",
		"timeout":         "timeout",
		"max_retries":     "max-retries",
	})

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig()

	key, source, err := secrets.ResolveAPIKey(cfg.APIKey, secrets.DefaultDir, logger)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("no API key: use --api-key, OCRMARK_API_KEY, %s or %s/%s",
			secrets.MistralKeyEnv, secrets.DefaultDir, secrets.MistralKeyFile)
	}
	cfg.APIKey = key
	logger.WithField("source", source).Debug("API key resolved")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mistral.New(
		mistral.WithClient(&http.Client{Timeout: cfg.Timeout}),
		mistral.WithURL(cfg.BaseURL),
		mistral.WithToken(cfg.APIKey),
		mistral.WithModel(cfg.Model),
		mistral.WithExpiry(cfg.SignedURLExpiry),
		mistral.WithMaxRetries(cfg.MaxRetries),
		mistral.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if skip, _ := cmd.Flags().GetBool("skip-validate"); !skip {
		if err := client.Validate(ctx); err != nil {
			return fmt.Errorf("validating API key: %w", err)
		}
		logger.Info("API key validated")
	}

	options := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithOutput(cmd.OutOrStdout()),
	}
	if noLedger, _ := cmd.Flags().GetBool("no-ledger"); !noLedger {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()
		options = append(options, pipeline.WithRecorder(store))
	}

	driver := pipeline.New(client, cfg, options...)

	var result pipeline.BatchResult
	if len(args) > 0 {
		result, err = driver.ProcessFiles(ctx, args)
	} else {
		result, err = driver.ProcessInbox(ctx)
	}
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}
