// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_gateway.go -package=mocks github.com/pdiddy/ocrmark/internal/ocr Gateway

// Package ocr defines the OCR gateway contract: a document goes in, per-page
// Markdown with embedded images comes out.
package ocr

import (
	"context"

	"github.com/pdiddy/ocrmark/pkg/types"
)

// File is a document submitted for recognition.
type File struct {
	// Name is the filename reported to the service (e.g. "report_part_2.pdf").
	Name string

	// Content is the raw PDF bytes.
	Content []byte
}

// Gateway converts a document into per-page Markdown plus embedded images.
// Implementations return *types.GatewayError on failure.
type Gateway interface {
	Process(ctx context.Context, file File) (*types.OCRResponse, error)
}

// Validator is implemented by gateways that can check their credentials
// before a batch starts.
type Validator interface {
	Validate(ctx context.Context) error
}
