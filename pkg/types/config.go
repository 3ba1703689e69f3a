package types

import "time"

const (
	// DefaultMaxChunkBytes is the OCR service's document size ceiling (50 MiB).
	DefaultMaxChunkBytes int64 = 50 * 1024 * 1024

	// DefaultMinChunkBytes is the size below which a split chunk is treated
	// as implausible and skipped (1 MiB).
	DefaultMinChunkBytes int64 = 1024 * 1024

	// DefaultModel is the Mistral OCR model identifier.
	DefaultModel = "mistral-ocr-latest"

	// DefaultMaxRetries is the retry count used when none is configured.
	DefaultMaxRetries = 3
)

// HTTPConfig holds settings for the OCR gateway HTTP client.
type HTTPConfig struct {
	// BaseURL is the API root (e.g. "https://api.mistral.ai/v1/").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the bearer token for the OCR API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single HTTP request, including the OCR call itself.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retries on 429 and transient 5xx; 0 turns
	// retries off.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ConversionConfig holds every recognized option for a conversion run.
type ConversionConfig struct {
	HTTPConfig `yaml:",inline"`

	// InputDir is the inbox scanned (non-recursively) for PDFs.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir is the root for per-document output folders.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DoneDir receives a copy of every successfully converted source.
	DoneDir string `json:"done_dir" yaml:"done_dir"`

	// FailedDir receives abandoned sources so they are never silently lost.
	FailedDir string `json:"failed_dir" yaml:"failed_dir"`

	// TempDir holds temporary split files; empty means the OS default.
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`

	// MaxChunkBytes is the byte budget above which a document is split.
	MaxChunkBytes int64 `json:"max_chunk_bytes" yaml:"max_chunk_bytes"`

	// MinChunkBytes is the minimum viable chunk size; smaller chunks are skipped.
	MinChunkBytes int64 `json:"min_chunk_bytes" yaml:"min_chunk_bytes"`

	// Model is the OCR model identifier.
	Model string `json:"model" yaml:"model"`

	// SignedURLExpiry is the lifetime, in hours, of the document access link.
	SignedURLExpiry int `json:"signed_url_expiry" yaml:"signed_url_expiry"`

	// LedgerPath is the SQLite run ledger; empty disables the ledger.
	LedgerPath string `json:"ledger,omitempty" yaml:"ledger,omitempty"`
}

// WithDefaults returns a copy of c with zero-valued options filled in.
func (c ConversionConfig) WithDefaults() ConversionConfig {
	if c.InputDir == "" {
		c.InputDir = "pdfs_to_process"
	}
	if c.OutputDir == "" {
		c.OutputDir = "ocr_output"
	}
	if c.DoneDir == "" {
		c.DoneDir = "pdfs-done"
	}
	if c.FailedDir == "" {
		c.FailedDir = "pdfs-failed"
	}
	if c.MaxChunkBytes <= 0 {
		c.MaxChunkBytes = DefaultMaxChunkBytes
	}
	if c.MinChunkBytes < 0 {
		c.MinChunkBytes = 0
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.SignedURLExpiry <= 0 {
		c.SignedURLExpiry = 1
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.mistral.ai/v1/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}
