// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives PDFs through OCR: size check, optional splitting
// into chunks, cached gateway calls per chunk, image materialization with a
// document-wide counter, assembly, and finalization of output artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/ocrmark/internal/cache"
	"github.com/pdiddy/ocrmark/internal/markdown"
	"github.com/pdiddy/ocrmark/internal/ocr"
	"github.com/pdiddy/ocrmark/internal/split"
	"github.com/pdiddy/ocrmark/pkg/types"
)

const imagesDir = "images"

var (
	// ErrNoChunks abandons a split document when no chunk produced markdown.
	ErrNoChunks = errors.New("no chunk produced any markdown")

	// ErrEmptyDocument abandons a document whose assembled markdown is empty.
	ErrEmptyDocument = errors.New("OCR produced no markdown")
)

// Recorder persists document outcomes (see internal/ledger).
type Recorder interface {
	Record(ctx context.Context, result types.DocumentResult) error
}

// Driver processes documents one at a time, and within a document one
// chunk at a time.
type Driver struct {
	gateway  ocr.Gateway
	opener   split.Opener
	recorder Recorder
	cfg      types.ConversionConfig
	log      logrus.FieldLogger
	out      io.Writer
}

type Option func(*Driver)

// WithOpener replaces the PDF opener used on the split path.
func WithOpener(o split.Opener) Option {
	return func(d *Driver) {
		d.opener = o
	}
}

func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		d.recorder = r
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Driver) {
		d.log = log
	}
}

// WithOutput sets where per-document status lines and the batch summary go.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.out = w
	}
}

// New returns a Driver for cfg. Unset options in cfg take their defaults.
func New(gateway ocr.Gateway, cfg types.ConversionConfig, options ...Option) *Driver {
	d := &Driver{
		gateway: gateway,
		opener:  split.PDFOpener,
		cfg:     cfg.WithDefaults(),
		log:     logrus.StandardLogger(),
		out:     io.Discard,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Stem returns the filename of path without its extension. It names the
// output folder, the markdown file and every image.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DocumentDir returns the output folder for a document stem.
func (d *Driver) DocumentDir(stem string) string {
	return filepath.Join(d.cfg.OutputDir, stem)
}

// ProcessDocument runs one source PDF to a terminal state. A non-nil error
// means the document was abandoned: no markdown and no archive copy exist.
// The source file itself is left in place.
func (d *Driver) ProcessDocument(ctx context.Context, path string) (types.DocumentResult, error) {
	stem := Stem(path)
	res := types.DocumentResult{Stem: stem, Source: path}
	log := d.log.WithField("document", stem)
	d.transition(&res, types.StateReceived, log)

	pages, err := d.process(ctx, path, &res, log)
	if err == nil {
		err = d.finalize(path, pages, &res, log)
	}

	if err != nil {
		res.Error = err.Error()
		res.MarkdownPath = ""
		d.transition(&res, types.StateAbandoned, log)
		log.WithError(err).Error("document abandoned")
		fmt.Fprintf(d.out, "failed:  %s (%v)\n", stem, err)
	} else {
		fmt.Fprintf(d.out, "converted: %s (%d pages, %d images)\n", stem, res.Pages, res.Images)
	}

	if d.recorder != nil {
		if recErr := d.recorder.Record(ctx, res); recErr != nil {
			log.WithError(recErr).Warn("could not record result in ledger")
		}
	}
	return res, err
}

func (d *Driver) transition(res *types.DocumentResult, state types.DocumentState, log logrus.FieldLogger) {
	res.State = state
	log.WithField("state", state).Debug("state change")
}

func (d *Driver) process(ctx context.Context, path string, res *types.DocumentResult, log logrus.FieldLogger) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	res.Size = info.Size()
	d.transition(res, types.StateSizeChecked, log)

	docDir := d.DocumentDir(res.Stem)
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return nil, &types.PersistError{Path: docDir, Err: err}
	}

	mat := &markdown.Materializer{
		ImagesDir: filepath.Join(docDir, imagesDir),
		Stem:      res.Stem,
	}

	if res.Size > d.cfg.MaxChunkBytes {
		return d.processSplit(ctx, path, docDir, mat, res, log)
	}
	return d.processDirect(ctx, path, docDir, mat, res, log)
}

func (d *Driver) processDirect(ctx context.Context, path, docDir string, mat *markdown.Materializer, res *types.DocumentResult, log logrus.FieldLogger) ([]string, error) {
	d.transition(res, types.StateDirect, log)
	res.ChunksTotal = 1
	log.WithField("size_mb", megabytes(res.Size)).Info("running OCR")

	resp, err := d.recognize(ctx, cache.Key(docDir, types.Chunk{}), filepath.Base(path), path, log)
	if err != nil {
		res.ChunksFailed = 1
		return nil, err
	}

	pages, images, _, err := mat.RenderResponse(resp, 1)
	if err != nil {
		res.ChunksFailed = 1
		return nil, fmt.Errorf("materializing images: %w", err)
	}

	res.ChunksSucceeded = 1
	res.Images = len(images)
	return pages, nil
}

func (d *Driver) processSplit(ctx context.Context, path, docDir string, mat *markdown.Materializer, res *types.DocumentResult, log logrus.FieldLogger) ([]string, error) {
	d.transition(res, types.StateSplit, log)
	res.Split = true
	log.WithField("size_mb", megabytes(res.Size)).Info("document exceeds size budget, processing in chunks")

	doc, err := d.opener.Open(path)
	if err != nil {
		return nil, err
	}

	chunks, err := split.Split(doc, d.cfg.MaxChunkBytes)
	if err != nil {
		return nil, err
	}
	res.ChunksTotal = len(chunks)
	log.WithFields(logrus.Fields{
		"chunks": len(chunks),
		"pages":  doc.PageCount(),
	}).Info("document split")

	tmp, err := d.tempDir(res.Stem)
	if err != nil {
		return nil, err
	}
	defer d.cleanup(tmp, log)

	paths, err := split.WriteChunks(doc, chunks, tmp, res.Stem)
	if err != nil {
		return nil, err
	}

	counter := 1
	var pages []string

	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		clog := log.WithFields(logrus.Fields{
			"chunk":   fmt.Sprintf("%d/%d", c.Index, len(chunks)),
			"pages":   fmt.Sprintf("%d-%d", c.FirstPage, c.LastPage),
			"size_mb": megabytes(c.Size),
		})
		clog.WithField("state", types.StateChunk).Info("processing chunk")

		if c.Size < d.cfg.MinChunkBytes {
			clog.WithField("min_mb", megabytes(d.cfg.MinChunkBytes)).Warn("chunk below minimum viable size, skipping")
			res.ChunksSkipped++
			continue
		}
		if c.Pages() == 1 && c.Size > d.cfg.MaxChunkBytes {
			clog.Warn("single page exceeds the size budget; submitting it unsplit")
		}

		resp, err := d.recognize(ctx, cache.Key(docDir, c), filepath.Base(paths[i]), paths[i], clog)
		if err != nil {
			clog.WithError(err).Error("chunk failed, continuing with next chunk")
			res.ChunksFailed++
			continue
		}

		chunkPages, images, next, err := mat.RenderResponse(resp, counter)
		if err != nil {
			clog.WithError(err).Error("materializing chunk images failed, continuing with next chunk")
			res.ChunksFailed++
			continue
		}

		counter = next
		pages = append(pages, chunkPages...)
		res.Images += len(images)
		res.ChunksSucceeded++
		clog.WithField("images", len(images)).Info("chunk complete")
	}

	if res.ChunksSucceeded == 0 {
		return nil, ErrNoChunks
	}

	log.Infof("%d of %d chunks processed successfully", res.ChunksSucceeded, len(chunks))
	return pages, nil
}

// recognize returns the OCR response for the file at path, from the cache
// entry at key when one is usable, otherwise from the gateway. A fresh
// response is cached on a best-effort basis.
func (d *Driver) recognize(ctx context.Context, key, name, path string, log logrus.FieldLogger) (*types.OCRResponse, error) {
	resp, err := cache.Load(key)
	switch {
	case err == nil:
		log.WithField("cache", key).Info("using cached OCR response")
		return resp, nil
	case errors.Is(err, cache.ErrMiss):
	default:
		log.WithError(err).Warn("ignoring unusable cache entry")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	resp, err = d.gateway.Process(ctx, ocr.File{Name: name, Content: content})
	if err != nil {
		var gwErr *types.GatewayError
		if !errors.As(err, &gwErr) {
			err = &types.GatewayError{Name: name, Err: err}
		}
		return nil, err
	}

	if err := cache.Store(key, resp); err != nil {
		log.WithError(err).Warn("could not cache OCR response")
	} else {
		log.WithField("cache", key).Debug("OCR response cached")
	}
	return resp, nil
}

// finalize writes the combined markdown and archives a copy of the source.
// Either both artifacts exist afterwards or neither does.
func (d *Driver) finalize(path string, pages []string, res *types.DocumentResult, log logrus.FieldLogger) error {
	d.transition(res, types.StateAssembled, log)

	content := markdown.Assemble(pages)
	if content == "" {
		return ErrEmptyDocument
	}

	mdPath := filepath.Join(d.DocumentDir(res.Stem), res.Stem+".md")
	if err := os.WriteFile(mdPath, []byte(content), 0o644); err != nil {
		return &types.PersistError{Path: mdPath, Err: err}
	}

	donePath := filepath.Join(d.cfg.DoneDir, filepath.Base(path))
	if err := copyFile(path, donePath); err != nil {
		os.Remove(mdPath)
		return &types.PersistError{Path: donePath, Err: err}
	}

	res.MarkdownPath = mdPath
	res.Pages = len(pages)
	d.transition(res, types.StateFinalized, log)
	log.WithFields(logrus.Fields{
		"markdown": mdPath,
		"pages":    res.Pages,
		"images":   res.Images,
	}).Info("markdown written")
	return nil
}

func (d *Driver) tempDir(stem string) (string, error) {
	if d.cfg.TempDir != "" {
		if err := os.MkdirAll(d.cfg.TempDir, 0o755); err != nil {
			return "", &types.PersistError{Path: d.cfg.TempDir, Err: err}
		}
	}
	dir, err := os.MkdirTemp(d.cfg.TempDir, "ocrmark-"+stem+"-")
	if err != nil {
		return "", &types.PersistError{Path: d.cfg.TempDir, Err: err}
	}
	return dir, nil
}

// cleanup removes temporary split files. Cached responses live in the
// document folder and are not touched.
func (d *Driver) cleanup(dir string, log logrus.FieldLogger) {
	if err := os.RemoveAll(dir); err != nil {
		log.WithError(err).Warn("could not remove temporary split files")
		return
	}
	log.WithField("dir", dir).Debug("temporary split files removed")
}

func megabytes(n int64) string {
	return fmt.Sprintf("%.2f", float64(n)/1024/1024)
}
