// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists OCR responses per chunk so repeated runs skip the
// network call. An entry lives at the chunk's designated output location
// and holds exactly the OCR response JSON.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/ocrmark/pkg/types"
)

const (
	directFile = "ocr_response.json"
)

// ErrMiss is returned by Load when no entry exists for the key.
var ErrMiss = errors.New("cache miss")

// Key returns the cache location for a document's response. The zero Chunk
// denotes the unsplit document. A split chunk's entry name carries its page
// range, so a rerun with a different budget never reuses an entry covering
// other pages.
func Key(docDir string, chunk types.Chunk) string {
	if chunk.Index <= 0 {
		return filepath.Join(docDir, directFile)
	}
	return filepath.Join(docDir, fmt.Sprintf("ocr_response_part_%d_pages_%d-%d.json",
		chunk.Index, chunk.FirstPage, chunk.LastPage))
}

// entry mirrors the on-disk schema. Pointer fields distinguish absent from
// empty so required fields can be enforced and defaults applied.
type entry struct {
	ID    *string     `json:"id"`
	Model *string     `json:"model"`
	Pages *[]pageJSON `json:"pages"`
}

type pageJSON struct {
	PageNumber *int         `json:"page_number"`
	Markdown   *string      `json:"markdown"`
	Images     *[]imageJSON `json:"images"`
}

type imageJSON struct {
	ID          *string `json:"id"`
	ImageBase64 *string `json:"image_base64"`
}

// Load reads the entry at key. It returns ErrMiss when the file does not
// exist and a *types.CacheCorruptError when the file exists but does not
// satisfy the schema; callers treat both as a miss.
func Load(key string) (*types.OCRResponse, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, &types.CacheCorruptError{Path: key, Err: err}
	}

	resp, err := decode(data)
	if err != nil {
		return nil, &types.CacheCorruptError{Path: key, Err: err}
	}
	return resp, nil
}

func decode(data []byte) (*types.OCRResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var e entry
	if err := dec.Decode(&e); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON document")
	}

	if e.Pages == nil {
		return nil, errors.New(`missing required field "pages"`)
	}

	resp := &types.OCRResponse{
		Pages: make([]types.OCRPage, 0, len(*e.Pages)),
	}
	if e.ID != nil {
		resp.ID = *e.ID
	}
	if e.Model != nil {
		resp.Model = *e.Model
	}

	for i, p := range *e.Pages {
		if p.Markdown == nil {
			return nil, fmt.Errorf(`page %d: missing required field "markdown"`, i+1)
		}

		page := types.OCRPage{
			PageNumber: i + 1,
			Markdown:   *p.Markdown,
			Images:     []types.OCRImage{},
		}
		if p.PageNumber != nil {
			if *p.PageNumber < 1 {
				return nil, fmt.Errorf("page %d: invalid page_number %d", i+1, *p.PageNumber)
			}
			page.PageNumber = *p.PageNumber
		}

		if p.Images != nil {
			for j, img := range *p.Images {
				// Present but empty values are accepted: Store writes them.
				if img.ID == nil {
					return nil, fmt.Errorf(`page %d image %d: missing required field "id"`, i+1, j+1)
				}
				if img.ImageBase64 == nil {
					return nil, fmt.Errorf(`page %d image %q: missing required field "image_base64"`, i+1, *img.ID)
				}
				page.Images = append(page.Images, types.OCRImage{
					ID:          *img.ID,
					ImageBase64: *img.ImageBase64,
				})
			}
		}

		resp.Pages = append(resp.Pages, page)
	}

	return resp, nil
}

// Store writes resp to key through a temporary file and rename, so readers
// never observe a partially written entry. Every field is written, which
// makes Store followed by Load lossless.
func Store(key string, resp *types.OCRResponse) error {
	data, err := encode(resp)
	if err != nil {
		return &types.PersistError{Path: key, Err: err}
	}

	dir := filepath.Dir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.PersistError{Path: key, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return &types.PersistError{Path: key, Err: err}
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return &types.PersistError{Path: key, Err: writeErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &types.PersistError{Path: key, Err: closeErr}
	}

	if err := os.Rename(tmpPath, key); err != nil {
		os.Remove(tmpPath)
		return &types.PersistError{Path: key, Err: err}
	}
	return nil
}

func encode(resp *types.OCRResponse) ([]byte, error) {
	// Normalize nil slices so the file always carries "pages" and "images".
	out := types.OCRResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Pages: make([]types.OCRPage, len(resp.Pages)),
	}
	for i, p := range resp.Pages {
		out.Pages[i] = p
		if out.Pages[i].PageNumber < 1 {
			out.Pages[i].PageNumber = i + 1
		}
		if out.Pages[i].Images == nil {
			out.Pages[i].Images = []types.OCRImage{}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return buf.Bytes(), nil
}
