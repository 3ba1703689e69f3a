// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ocrmark/internal/pipeline"
	"github.com/pdiddy/ocrmark/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split <pdf>",
	Short: "Split a PDF into parts that fit the OCR size limit",
	Long: `Split partitions a PDF into page ranges whose serialized size stays
under the byte budget and writes them as {name}_part_{i}.pdf. A single page
larger than the budget becomes a part on its own.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().String("out", "", "directory for the parts (default: next to the input)")
	splitCmd.Flags().Int64("max-bytes", 0, "byte budget per part (default: max_chunk_bytes)")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	path := args[0]
	budget, _ := cmd.Flags().GetInt64("max-bytes")
	if budget <= 0 {
		budget = conversionConfig().MaxChunkBytes
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Dir(path)
	}

	doc, err := split.OpenPDF(path)
	if err != nil {
		return err
	}
	chunks, err := split.Split(doc, budget)
	if err != nil {
		return err
	}
	paths, err := split.WriteChunks(doc, chunks, out, pipeline.Stem(path))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d pages, budget %.2f MB\n", path, doc.PageCount(), megabytes(budget))
	for i, c := range chunks {
		fmt.Fprintf(w, "part %d: pages %d-%d (%.2f MB) -> %s\n",
			c.Index, c.FirstPage, c.LastPage, megabytes(c.Size), paths[i])
	}
	fmt.Fprintf(w, "\nSplit into %d parts\n", len(chunks))
	return nil
}

func megabytes(n int64) float64 {
	return float64(n) / 1024 / 1024
}
