// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OCRResponse is the OCR service output for one submitted document or chunk.
// It is also the exact shape persisted by the response cache.
type OCRResponse struct {
	// ID is the service-assigned response identifier, if any.
	ID string `json:"id"`

	// Model is the model that produced the response.
	Model string `json:"model"`

	// Pages holds one entry per page, in page order.
	Pages []OCRPage `json:"pages"`
}

// OCRPage is the recognized content of a single page.
type OCRPage struct {
	// PageNumber is the 1-based page position within the submitted document.
	PageNumber int `json:"page_number"`

	// Markdown is the page text. Images appear as ![id](id) placeholders.
	Markdown string `json:"markdown"`

	// Images lists the embedded images referenced from Markdown.
	Images []OCRImage `json:"images"`
}

// OCRImage is an image embedded in a page. ID is unique within its page only.
type OCRImage struct {
	ID          string `json:"id"`
	ImageBase64 string `json:"image_base64"`
}

// ImageCount returns the total number of images across all pages.
func (r *OCRResponse) ImageCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Images)
	}
	return n
}
