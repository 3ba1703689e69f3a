// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ocrmark/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

func finalized(stem string) types.DocumentResult {
	return types.DocumentResult{
		Stem:            stem,
		Source:          "pdfs_to_process/" + stem + ".pdf",
		State:           types.StateFinalized,
		Size:            2048,
		Split:           true,
		ChunksTotal:     3,
		ChunksSucceeded: 2,
		ChunksFailed:    1,
		Pages:           12,
		Images:          4,
		MarkdownPath:    "ocr_output/" + stem + "/" + stem + ".md",
	}
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, finalized("beta")))
	require.NoError(t, s.Record(ctx, types.DocumentResult{
		Stem:   "alpha",
		Source: "pdfs_to_process/alpha.pdf",
		State:  types.StateAbandoned,
		Error:  "no chunk produced any markdown",
	}))

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "alpha", entries[0].Stem)
	assert.Equal(t, "abandoned", entries[0].State)
	assert.Equal(t, "no chunk produced any markdown", entries[0].Error)
	assert.Empty(t, entries[0].MarkdownPath)

	b := entries[1]
	assert.Equal(t, "beta", b.Stem)
	assert.True(t, b.Split)
	assert.Equal(t, int64(2048), b.Size)
	assert.Equal(t, 3, b.ChunksTotal)
	assert.Equal(t, 2, b.ChunksSucceeded)
	assert.Equal(t, 1, b.ChunksFailed)
	assert.Equal(t, 12, b.Pages)
	assert.Equal(t, 4, b.Images)
	assert.Equal(t, 1, b.Attempts)
	assert.True(t, fixedNow.Equal(b.UpdatedAt))
}

func TestRecord_UpdatesLatestOutcome(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, types.DocumentResult{Stem: "doc", Source: "doc.pdf", State: types.StateAbandoned, Error: "boom"}))
	require.NoError(t, s.Record(ctx, finalized("doc")))

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "finalized", entries[0].State)
	assert.Empty(t, entries[0].Error)
	assert.Equal(t, 2, entries[0].Attempts)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM attempts WHERE stem = 'doc'`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestListByStateAndCounts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, finalized("a")))
	require.NoError(t, s.Record(ctx, finalized("b")))
	require.NoError(t, s.Record(ctx, types.DocumentResult{Stem: "c", Source: "c.pdf", State: types.StateAbandoned}))

	entries, err := s.List(ctx, types.StateAbandoned)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].Stem)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"finalized": 2, "abandoned": 1}, counts)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), finalized("doc")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFormats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, finalized("report")))
	entries, err := s.List(ctx, "")
	require.NoError(t, err)

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteYAML(&buf, entries))
		var got []Entry
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "report", got[0].Stem)
		assert.Contains(t, buf.String(), "chunks_succeeded: 2")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, entries))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "finalized", got[0]["state"])
		assert.NotContains(t, got[0], "error")
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteTable(&buf, entries))
		out := buf.String()
		assert.Contains(t, out, "Document")
		assert.Contains(t, out, "report")
		assert.Contains(t, out, "2/3")
		assert.Contains(t, out, "2026-03-01 12:30:00")
		assert.Contains(t, out, "1 documents")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteTable(&buf, nil))
		assert.Equal(t, "No documents recorded.\n", buf.String())

		buf.Reset()
		require.NoError(t, WriteJSON(&buf, nil))
		assert.Equal(t, "[]\n", buf.String())
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
