// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mistral implements the OCR gateway against the Mistral API:
// upload the document, obtain a short-lived signed URL, run OCR on it.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/ocrmark/internal/httputil"
	"github.com/pdiddy/ocrmark/internal/ocr"
	"github.com/pdiddy/ocrmark/pkg/types"
)

var (
	_ ocr.Gateway   = &Client{}
	_ ocr.Validator = &Client{}
)

// ErrMissingToken is returned by New when no API key is configured.
var ErrMissingToken = errors.New("mistral: missing API key")

type Client struct {
	client *http.Client
	log    logrus.FieldLogger

	url   string
	token string

	model      string
	expiry     int
	maxRetries int
}

func New(options ...Option) (*Client, error) {
	c := &Client{
		client: http.DefaultClient,
		log:    logrus.StandardLogger(),

		url: "https://api.mistral.ai/v1/",

		model:      types.DefaultModel,
		expiry:     1,
		maxRetries: types.DefaultMaxRetries,
	}

	for _, option := range options {
		option(c)
	}

	if c.token == "" {
		return nil, ErrMissingToken
	}

	return c, nil
}

// Process uploads file, requests a signed URL for it and runs OCR with
// embedded images included.
func (c *Client) Process(ctx context.Context, file ocr.File) (*types.OCRResponse, error) {
	log := c.log.WithField("file", file.Name)

	log.WithField("size_mb", fmt.Sprintf("%.2f", float64(len(file.Content))/1024/1024)).Info("uploading")
	uploaded, err := c.Upload(ctx, file)
	if err != nil {
		return nil, &types.GatewayError{Name: file.Name, Op: "upload", Err: err}
	}
	log.WithField("file_id", uploaded.ID).Debug("upload complete")

	signed, err := c.SignedURL(ctx, uploaded.ID)
	if err != nil {
		return nil, &types.GatewayError{Name: file.Name, Op: "signed_url", Err: err}
	}

	log.WithField("model", c.model).Info("running OCR")
	resp, err := c.OCR(ctx, signed)
	if err != nil {
		return nil, &types.GatewayError{Name: file.Name, Op: "ocr", Err: err}
	}
	log.WithField("pages", len(resp.Pages)).Info("OCR complete")

	return convertResult(resp), nil
}

// Upload sends the document with purpose "ocr".
func (c *Client) Upload(ctx context.Context, file ocr.File) (*FileResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("purpose", "ocr"); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("files"), bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result FileResponse
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, errors.New("upload response carries no file id")
	}
	return &result, nil
}

// SignedURL returns a temporary download link for an uploaded file.
func (c *Client) SignedURL(ctx context.Context, fileID string) (string, error) {
	u := c.endpoint("files/"+url.PathEscape(fileID)+"/url") + "?expiry=" + strconv.Itoa(c.expiry)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	var result SignedURLResponse
	if err := c.do(ctx, req, &result); err != nil {
		return "", err
	}
	if result.URL == "" {
		return "", errors.New("signed url response carries no url")
	}
	return result.URL, nil
}

// OCR runs recognition on the document at documentURL.
func (c *Client) OCR(ctx context.Context, documentURL string) (*Response, error) {
	body := OCRRequest{
		Model: c.model,

		Document: Document{
			Type:        "document_url",
			DocumentURL: documentURL,
		},

		IncludeImageBase64: true,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("ocr"), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result Response
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Validate checks the API key by listing models.
func (c *Client) Validate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("models"), nil)
	if err != nil {
		return err
	}

	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, req, &result); err != nil {
		return &types.GatewayError{Name: "api key", Op: "models", Err: err}
	}

	c.log.WithField("models", len(result.Data)).Debug("API key validated")
	return nil
}

func (c *Client) endpoint(p string) string {
	return strings.TrimRight(c.url, "/") + "/" + p
}

func (c *Client) do(ctx context.Context, req *http.Request, v any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries, c.log)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return convertError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func convertResult(response *Response) *types.OCRResponse {
	result := &types.OCRResponse{
		ID:    response.ID,
		Model: response.Model,
		Pages: make([]types.OCRPage, 0, len(response.Pages)),
	}

	for _, p := range response.Pages {
		page := types.OCRPage{
			PageNumber: p.Index + 1,
			Markdown:   p.Markdown,
			Images:     make([]types.OCRImage, 0, len(p.Images)),
		}

		for _, img := range p.Images {
			page.Images = append(page.Images, types.OCRImage{
				ID:          img.ID,
				ImageBase64: img.ImageBase64,
			})
		}

		result.Pages = append(result.Pages, page)
	}

	return result
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	if len(data) == 0 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
