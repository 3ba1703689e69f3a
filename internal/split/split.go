// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split partitions a PDF into page-contiguous chunks that each fit
// under a byte budget, measuring size by serializing the accumulated pages
// as a standalone document.
package split

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/ocrmark/pkg/types"
)

// ErrNoPages is wrapped in a SplitError when a document has no pages.
var ErrNoPages = errors.New("document has no pages")

// Document is a multi-page source that can serialize any contiguous page
// range as a standalone file.
type Document interface {
	// Name identifies the document in errors and logs (usually its path).
	Name() string

	// PageCount returns the number of pages.
	PageCount() int

	// Serialize writes pages first..last (1-based, inclusive) as a
	// standalone document and returns the bytes.
	Serialize(first, last int) ([]byte, error)
}

// Opener loads a Document from a file path.
type Opener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Document, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Document, error) {
	return f(path)
}

// Split greedily partitions doc into chunks whose serialized size does not
// exceed budget. After each page is added the accumulated range is
// serialized and measured; when it exceeds budget and holds more than one
// page, the last page is moved into a new chunk. A single page larger than
// budget becomes a chunk on its own: pages are never subdivided.
func Split(doc Document, budget int64) ([]types.Chunk, error) {
	n := doc.PageCount()
	if n <= 0 {
		return nil, &types.SplitError{Path: doc.Name(), Err: ErrNoPages}
	}

	var chunks []types.Chunk
	start := 1
	var size int64

	for page := 1; page <= n; page++ {
		measured, err := measure(doc, start, page)
		if err != nil {
			return nil, err
		}

		if measured > budget && page > start {
			chunks = append(chunks, types.Chunk{
				Index:     len(chunks) + 1,
				FirstPage: start,
				LastPage:  page - 1,
				Size:      size,
			})
			start = page
			if measured, err = measure(doc, start, page); err != nil {
				return nil, err
			}
		}
		size = measured
	}

	chunks = append(chunks, types.Chunk{
		Index:     len(chunks) + 1,
		FirstPage: start,
		LastPage:  n,
		Size:      size,
	})
	return chunks, nil
}

func measure(doc Document, first, last int) (int64, error) {
	data, err := doc.Serialize(first, last)
	if err != nil {
		return 0, &types.SplitError{
			Path: doc.Name(),
			Err:  fmt.Errorf("serializing pages %d-%d: %w", first, last, err),
		}
	}
	return int64(len(data)), nil
}

// ChunkFilename returns the temporary split file name for chunk index i.
func ChunkFilename(stem string, i int) string {
	return fmt.Sprintf("%s_part_%d.pdf", stem, i)
}

// WriteChunks serializes every chunk to dir as {stem}_part_{i}.pdf and
// returns the paths in chunk order.
func WriteChunks(doc Document, chunks []types.Chunk, dir, stem string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.PersistError{Path: dir, Err: err}
	}

	paths := make([]string, 0, len(chunks))
	for _, c := range chunks {
		data, err := doc.Serialize(c.FirstPage, c.LastPage)
		if err != nil {
			return paths, &types.SplitError{
				Path: doc.Name(),
				Err:  fmt.Errorf("serializing chunk %d: %w", c.Index, err),
			}
		}

		p := filepath.Join(dir, ChunkFilename(stem, c.Index))
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return paths, &types.PersistError{Path: p, Err: err}
		}
		paths = append(paths, p)
	}
	return paths, nil
}
