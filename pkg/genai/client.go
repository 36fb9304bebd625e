package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Supported image generation models.
const (
	ModelFlash = "gemini-2.5-flash-image"
	ModelPro   = "gemini-3-pro-image-preview"
)

var (
	// ErrMissingAPIKey indicates the client was built without an API key.
	ErrMissingAPIKey = errors.New("gemini API key not configured")
	// ErrNoImages indicates the model returned no image parts.
	ErrNoImages = errors.New("no images were generated")
)

var flashAspectRatios = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

var proAspectRatios = []string{
	"1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9",
}

var proResolutions = []string{"1K", "2K", "4K"}

// Reference image limits per model.
const (
	maxFlashReferences = 5
	maxProReferences   = 14
)

// Client calls the Gemini generateContent REST API for image generation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Gemini client with the given endpoint and key.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ReferenceImage is an inline image attached to a generation request.
type ReferenceImage struct {
	MIMEType string
	Data     []byte
}

// ImageRequest describes one image generation call.
type ImageRequest struct {
	Model           string
	Prompt          string
	References      []ReferenceImage
	AspectRatio     string
	Resolution      string // pro model only: 1K, 2K, 4K
	TextOutput      bool   // request a text part alongside the image
	UseGoogleSearch bool   // pro model only: ground on search results
}

// ImageResult holds the generated artifacts.
type ImageResult struct {
	Images [][]byte
	MIMEs  []string
	Text   string
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type toolSpec struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	Tools            []toolSpec       `json:"tools,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Validate checks model-specific request constraints before any network call.
func (req ImageRequest) Validate() error {
	switch req.Model {
	case ModelFlash:
		if req.AspectRatio != "" && !contains(flashAspectRatios, req.AspectRatio) {
			return fmt.Errorf("invalid aspect_ratio %q, must be one of %v", req.AspectRatio, flashAspectRatios)
		}
		if req.Resolution != "" {
			return fmt.Errorf("resolution is only supported by the pro model")
		}
		if len(req.References) > maxFlashReferences {
			return fmt.Errorf("maximum %d reference images allowed", maxFlashReferences)
		}
	case ModelPro:
		if req.AspectRatio != "" && !contains(proAspectRatios, req.AspectRatio) {
			return fmt.Errorf("invalid aspect_ratio %q, must be one of %v", req.AspectRatio, proAspectRatios)
		}
		if req.Resolution != "" && !contains(proResolutions, req.Resolution) {
			return fmt.Errorf("invalid resolution %q, must be one of %v", req.Resolution, proResolutions)
		}
		if len(req.References) > maxProReferences {
			return fmt.Errorf("maximum %d reference images allowed", maxProReferences)
		}
	default:
		return fmt.Errorf("unknown model %q", req.Model)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return errors.New("prompt must not be empty")
	}
	return nil
}

// GenerateImage runs one generateContent call and decodes inline image data.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (ImageResult, error) {
	if c.apiKey == "" {
		return ImageResult{}, ErrMissingAPIKey
	}
	if err := req.Validate(); err != nil {
		return ImageResult{}, err
	}

	parts := []part{{Text: req.Prompt}}
	for _, ref := range req.References {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: ref.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(ref.Data),
		}})
	}

	modalities := []string{"IMAGE"}
	if req.TextOutput {
		modalities = []string{"TEXT", "IMAGE"}
	}

	wireReq := generateContentRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			ResponseModalities: modalities,
			ImageConfig: &imageConfig{
				AspectRatio: req.AspectRatio,
				ImageSize:   req.Resolution,
			},
		},
	}
	if req.UseGoogleSearch {
		wireReq.Tools = []toolSpec{{GoogleSearch: &struct{}{}}}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return ImageResult{}, fmt.Errorf("marshal generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ImageResult{}, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ImageResult{}, fmt.Errorf("generate image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return ImageResult{}, fmt.Errorf("generate image failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var wireResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return ImageResult{}, fmt.Errorf("decode generate response: %w", err)
	}

	var out ImageResult
	for _, cand := range wireResp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" && out.Text == "" {
				out.Text = p.Text
			}
			if p.InlineData != nil {
				data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return ImageResult{}, fmt.Errorf("decode inline image data: %w", err)
				}
				out.Images = append(out.Images, data)
				out.MIMEs = append(out.MIMEs, p.InlineData.MIMEType)
			}
		}
	}

	if len(out.Images) == 0 {
		return ImageResult{}, ErrNoImages
	}

	return out, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
