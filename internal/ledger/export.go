// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// WriteYAML writes entries as a YAML sequence.
func WriteYAML(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nonNil(entries)); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nonNil(entries)); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// WriteTable writes entries as a fixed-width table followed by a count.
func WriteTable(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No documents recorded.")
		return err
	}

	fmt.Fprintf(w, "%-30s  %-10s  %-7s  %-5s  %-6s  %-20s  %s\n",
		"Document", "State", "Chunks", "Pages", "Images", "Updated", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, e := range entries {
		fmt.Fprintf(w, "%-30s  %-10s  %-7s  %-5d  %-6d  %-20s  %s\n",
			truncate(e.Stem, 30), e.State,
			fmt.Sprintf("%d/%d", e.ChunksSucceeded, e.ChunksTotal),
			e.Pages, e.Images, e.UpdatedAt.Format("2006-01-02 15:04:05"),
			truncate(e.Error, 40))
	}

	_, err := fmt.Fprintf(w, "\n%d documents\n", len(entries))
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func nonNil(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	return entries
}
