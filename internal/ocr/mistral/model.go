// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mistral

// FileResponse is returned by POST /files.
type FileResponse struct {
	ID       string `json:"id"`
	Object   string `json:"object"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
	Bytes    int64  `json:"bytes"`
}

// SignedURLResponse is returned by GET /files/{id}/url.
type SignedURLResponse struct {
	URL string `json:"url"`
}

type OCRRequest struct {
	Model    string   `json:"model"`
	Document Document `json:"document"`

	IncludeImageBase64 bool `json:"include_image_base64"`
}

type Document struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type Response struct {
	ID    string `json:"id,omitempty"`
	Model string `json:"model"`
	Pages []Page `json:"pages"`
}

type Page struct {
	Index      int         `json:"index"`
	Dimensions *Dimensions `json:"dimensions"`

	Markdown string  `json:"markdown"`
	Images   []Image `json:"images"`
}

type Image struct {
	ID          string `json:"id"`
	ImageBase64 string `json:"image_base64"`

	TopLeftX     int `json:"top_left_x"`
	TopLeftY     int `json:"top_left_y"`
	BottomRightX int `json:"bottom_right_x"`
	BottomRightY int `json:"bottom_right_y"`
}

type Dimensions struct {
	DPI int `json:"dpi"`

	Width  int `json:"width"`
	Height int `json:"height"`
}
