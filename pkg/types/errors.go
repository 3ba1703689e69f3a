// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// SplitError reports that a document could not be parsed into pages or a
// page range could not be serialized. It aborts that document only.
type SplitError struct {
	Path string
	Err  error
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("splitting %s: %v", e.Path, e.Err)
}

func (e *SplitError) Unwrap() error { return e.Err }

// GatewayError reports a failed OCR service call for one chunk (or for the
// whole document on the direct path).
type GatewayError struct {
	// Name is the filename submitted to the service.
	Name string
	// Op is the failing step: upload, signed_url, ocr, models.
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("ocr gateway %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("ocr gateway %s (%s): %v", e.Name, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// CacheCorruptError reports a persisted response that exists but cannot be
// trusted. Callers treat it as a cache miss.
type CacheCorruptError struct {
	Path string
	Err  error
}

func (e *CacheCorruptError) Error() string {
	return fmt.Sprintf("corrupt cache entry %s: %v", e.Path, e.Err)
}

func (e *CacheCorruptError) Unwrap() error { return e.Err }

// PersistError reports a failure writing an artifact (markdown, image,
// cache entry, archive copy).
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
