// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Chunk is a contiguous, non-overlapping page range of one document sized to
// fit under the OCR service's byte ceiling. Chunks of a document, taken in
// Index order, cover every page exactly once.
type Chunk struct {
	// Index is the 1-based position of the chunk in emission order.
	Index int `json:"index" yaml:"index"`

	// FirstPage is the 1-based first page of the range.
	FirstPage int `json:"first_page" yaml:"first_page"`

	// LastPage is the 1-based last page of the range, inclusive.
	LastPage int `json:"last_page" yaml:"last_page"`

	// Size is the serialized byte size of the range as a standalone PDF.
	Size int64 `json:"size" yaml:"size"`
}

// Pages returns the number of pages in the chunk.
func (c Chunk) Pages() int {
	return c.LastPage - c.FirstPage + 1
}

// MaterializedImage maps an OCR image to the file written for it.
type MaterializedImage struct {
	// ImageID is the identifier the OCR service assigned to the image.
	ImageID string `json:"image_id" yaml:"image_id"`

	// Filename is the generated name, {stem}_img_{counter}{ext}.
	Filename string `json:"filename" yaml:"filename"`

	// Counter is the document-wide sequence number embedded in Filename.
	Counter int `json:"counter" yaml:"counter"`
}

// DocumentState is a step of the per-document processing state machine.
type DocumentState string

const (
	StateReceived    DocumentState = "received"
	StateSizeChecked DocumentState = "size_checked"
	StateDirect      DocumentState = "direct"
	StateSplit       DocumentState = "split"
	StateChunk       DocumentState = "chunk"
	StateAssembled   DocumentState = "assembled"
	StateFinalized   DocumentState = "finalized"
	StateAbandoned   DocumentState = "abandoned"
)

// DocumentResult is the outcome of processing one source PDF.
type DocumentResult struct {
	// Stem is the source filename without extension; it names all outputs.
	Stem string `json:"stem" yaml:"stem"`

	// Source is the path the document was read from.
	Source string `json:"source" yaml:"source"`

	// State is the terminal state: finalized or abandoned.
	State DocumentState `json:"state" yaml:"state"`

	// Size is the source file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Split reports whether the document went through the split path.
	Split bool `json:"split" yaml:"split"`

	ChunksTotal     int `json:"chunks_total" yaml:"chunks_total"`
	ChunksSucceeded int `json:"chunks_succeeded" yaml:"chunks_succeeded"`
	ChunksSkipped   int `json:"chunks_skipped" yaml:"chunks_skipped"`
	ChunksFailed    int `json:"chunks_failed" yaml:"chunks_failed"`

	// Pages is the number of OCR pages in the assembled markdown.
	Pages int `json:"pages" yaml:"pages"`

	// Images is the number of images materialized.
	Images int `json:"images" yaml:"images"`

	// MarkdownPath is the combined markdown file, empty when abandoned.
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`

	// Error describes why the document was abandoned.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Finalized reports whether the document produced output.
func (r DocumentResult) Finalized() bool {
	return r.State == StateFinalized
}
