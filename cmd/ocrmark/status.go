// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ocrmark/internal/ledger"
	"github.com/pdiddy/ocrmark/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded conversion outcomes",
	Long: `Status lists the latest outcome of every document recorded in the run
ledger: its state, chunk counts, pages, images and the error that abandoned
it, if any.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("format", "table", "output format: table, yaml, or json")
	statusCmd.Flags().String("state", "", "only documents in this state (finalized or abandoned)")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	state, _ := cmd.Flags().GetString("state")
	w := cmd.OutOrStdout()

	switch format {
	case "table", "yaml", "json":
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml or json", format)
	}

	cfg := conversionConfig()
	var entries []ledger.Entry
	if _, err := os.Stat(cfg.LedgerPath); err == nil {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err = store.List(context.Background(), types.DocumentState(state))
		if err != nil {
			return err
		}
	}

	switch format {
	case "yaml":
		return ledger.WriteYAML(w, entries)
	case "json":
		return ledger.WriteJSON(w, entries)
	default:
		return ledger.WriteTable(w, entries)
	}
}
