// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/ocrmark/pkg/types"
)

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted int
	Failed    int
	Results   []types.DocumentResult
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any document was abandoned.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(res types.DocumentResult) {
	r.Results = append(r.Results, res)
	if res.Finalized() {
		r.Converted++
	} else {
		r.Failed++
	}
}

// Discover lists the PDFs directly inside dir, sorted by name. The match on
// the .pdf extension is case-insensitive and subdirectories are ignored.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ProcessInbox converts every PDF in the configured input directory. A
// finalized source is removed from the inbox (its copy lives in the done
// directory); an abandoned source is moved to the failed directory. Sources
// interrupted by cancellation stay in the inbox for the next run.
func (d *Driver) ProcessInbox(ctx context.Context) (BatchResult, error) {
	if err := os.MkdirAll(d.cfg.InputDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating input directory: %w", err)
	}

	files, err := Discover(d.cfg.InputDir)
	if err != nil {
		return BatchResult{}, err
	}
	if len(files) == 0 {
		d.log.WithField("dir", d.cfg.InputDir).Info("no PDF files to process")
		return BatchResult{}, nil
	}

	d.log.WithField("count", len(files)).Info("found PDF files to process")
	result, err := d.run(ctx, files, d.consume)
	d.summarize(result)
	return result, err
}

// ProcessFiles converts the given PDFs. The sources are left where they are.
func (d *Driver) ProcessFiles(ctx context.Context, paths []string) (BatchResult, error) {
	result, err := d.run(ctx, paths, nil)
	d.summarize(result)
	return result, err
}

func (d *Driver) run(ctx context.Context, paths []string, after func(string, error)) (BatchResult, error) {
	var result BatchResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := d.ProcessDocument(ctx, path)
		result.add(res)
		if after != nil {
			after(path, err)
		}
	}
	return result, ctx.Err()
}

// consume removes a finalized source from the inbox or quarantines an
// abandoned one. Failures here are logged and never stop the batch.
func (d *Driver) consume(path string, procErr error) {
	log := d.log.WithFields(logrus.Fields{"document": Stem(path), "source": path})

	if procErr == nil {
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warn("could not remove processed source from inbox")
		}
		return
	}
	if errors.Is(procErr, context.Canceled) || errors.Is(procErr, context.DeadlineExceeded) {
		return
	}

	dest := filepath.Join(d.cfg.FailedDir, filepath.Base(path))
	if err := moveFile(path, dest); err != nil {
		log.WithError(err).Warn("could not move abandoned source to failed directory")
		return
	}
	log.WithField("dest", dest).Info("abandoned source moved to failed directory")
}

func (d *Driver) summarize(r BatchResult) {
	if r.Total() == 0 {
		return
	}
	fmt.Fprintf(d.out, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		r.Converted, r.Failed, r.Total())
}

// copyFile copies src to dst, creating dst's directory and preserving the
// modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// moveFile renames src to dst, falling back to copy and remove across
// filesystems.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
