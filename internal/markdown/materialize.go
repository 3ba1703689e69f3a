// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown turns OCR responses into note-ready Markdown: images are
// written to disk under sequential names and placeholder references are
// rewritten as embedded wikilinks; pages are then joined into one document.
package markdown

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/ocrmark/pkg/types"
)

const defaultImageExt = ".png"

// Materializer writes a document's images into ImagesDir as
// {Stem}_img_{n}{ext}. It holds no counter: callers thread the counter
// through every call so numbering continues across pages and chunks.
type Materializer struct {
	ImagesDir string
	Stem      string
}

// Filename returns the image filename for counter n and the image's OCR id.
func (m *Materializer) Filename(imageID string, n int) string {
	ext := filepath.Ext(imageID)
	if ext == "" {
		ext = defaultImageExt
	}
	return fmt.Sprintf("%s_img_%d%s", m.Stem, n, ext)
}

// Materialize decodes img and writes it under the name for counter. It
// returns the filename and counter+1.
func (m *Materializer) Materialize(img types.OCRImage, counter int) (string, int, error) {
	data, err := DecodeImage(img.ImageBase64)
	if err != nil {
		return "", counter, fmt.Errorf("decoding image %s: %w", img.ID, err)
	}

	name := m.Filename(img.ID, counter)
	path := filepath.Join(m.ImagesDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", counter, &types.PersistError{Path: path, Err: err}
	}
	return name, counter + 1, nil
}

// DecodeImage base64-decodes payload, first stripping a data-URI prefix
// such as "data:image/jpeg;base64," when present.
func DecodeImage(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		_, rest, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errors.New("malformed data URI: missing comma")
		}
		payload = rest
	}
	return base64.StdEncoding.DecodeString(payload)
}

// Placeholder returns the OCR service's in-text reference for an image id.
func Placeholder(imageID string) string {
	return "![" + imageID + "](" + imageID + ")"
}

// Wikilink returns the embedded-link reference for a materialized file.
func Wikilink(filename string) string {
	return "![[" + filename + "]]"
}

// RenderPage materializes every image of page in order and rewrites their
// placeholders. It returns the rewritten markdown, the images written and
// the next counter.
func (m *Materializer) RenderPage(page types.OCRPage, counter int) (string, []types.MaterializedImage, int, error) {
	text := page.Markdown
	images := make([]types.MaterializedImage, 0, len(page.Images))

	for _, img := range page.Images {
		n := counter
		name, next, err := m.Materialize(img, counter)
		if err != nil {
			return "", images, counter, err
		}
		counter = next

		text = strings.ReplaceAll(text, Placeholder(img.ID), Wikilink(name))
		images = append(images, types.MaterializedImage{ImageID: img.ID, Filename: name, Counter: n})
	}
	return text, images, counter, nil
}

// RenderResponse renders every page of resp starting at counter. The
// response is handled as a unit: on any failure the files it already wrote
// are removed and counter is returned unchanged, so numbering stays gapless
// for whatever is rendered next.
func (m *Materializer) RenderResponse(resp *types.OCRResponse, counter int) ([]string, []types.MaterializedImage, int, error) {
	if err := os.MkdirAll(m.ImagesDir, 0o755); err != nil {
		return nil, nil, counter, &types.PersistError{Path: m.ImagesDir, Err: err}
	}

	start := counter
	pages := make([]string, 0, len(resp.Pages))
	var written []types.MaterializedImage

	for _, p := range resp.Pages {
		text, images, next, err := m.RenderPage(p, counter)
		written = append(written, images...)
		if err != nil {
			m.remove(written)
			return nil, nil, start, fmt.Errorf("page %d: %w", p.PageNumber, err)
		}
		counter = next
		pages = append(pages, text)
	}
	return pages, written, counter, nil
}

func (m *Materializer) remove(images []types.MaterializedImage) {
	for _, img := range images {
		os.Remove(filepath.Join(m.ImagesDir, img.Filename))
	}
}
