package removebg

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
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrMissingAPIKey indicates the Freepik API key is not configured.
var ErrMissingAPIKey = errors.New("freepik API key not configured")

// Client removes image backgrounds via the Freepik API. The API only
// accepts public URLs, so images are first pushed to a throwaway host.
type Client struct {
	uploadURL   string
	fallbackURL string
	freepikBase string
	apiKey      string
	httpClient  *http.Client
}

// NewClient creates a background removal client.
func NewClient(uploadURL, fallbackURL, freepikBase, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		uploadURL:   uploadURL,
		fallbackURL: strings.TrimSuffix(fallbackURL, "/"),
		freepikBase: strings.TrimSuffix(freepikBase, "/"),
		apiKey:      apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether background removal can be attempted.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Remove uploads a PNG, runs Freepik background removal against the
// public URL, and downloads the transparent result.
func (c *Client) Remove(ctx context.Context, png []byte) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	publicURL, err := c.uploadImage(ctx, png)
	if err != nil {
		return nil, fmt.Errorf("publish image: %w", err)
	}

	transparentURL, err := c.removeBackground(ctx, publicURL)
	if err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}

	result, err := c.download(ctx, transparentURL)
	if err != nil {
		return nil, fmt.Errorf("download transparent image: %w", err)
	}

	return result, nil
}

type uguuResponse struct {
	Success bool `json:"success"`
	Files   []struct {
		URL string `json:"url"`
	} `json:"files"`
}

func (c *Client) uploadImage(ctx context.Context, png []byte) (string, error) {
	publicURL, primaryErr := c.uploadMultipart(ctx, c.uploadURL, "files[]", png)
	if primaryErr == nil && publicURL != "" {
		return publicURL, nil
	}

	publicURL, fallbackErr := c.uploadMultipart(ctx, c.fallbackURL, "file", png)
	if fallbackErr == nil && publicURL != "" {
		return publicURL, nil
	}

	return "", fmt.Errorf("all upload hosts failed: %v; %v", primaryErr, fallbackErr)
}

func (c *Client) uploadMultipart(ctx context.Context, endpoint, field string, png []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, uuid.NewString()+".png")
	if err != nil {
		return "", fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return "", fmt.Errorf("write multipart payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	// Uguu answers JSON, 0x0.st answers a bare URL.
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var parsed uguuResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", fmt.Errorf("decode upload response: %w", err)
		}
		if !parsed.Success || len(parsed.Files) == 0 {
			return "", errors.New("upload host reported failure")
		}
		return parsed.Files[0].URL, nil
	}
	return trimmed, nil
}

type freepikResponse struct {
	URL            string `json:"url"`
	HighResolution string `json:"high_resolution"`
}

func (c *Client) removeBackground(ctx context.Context, imageURL string) (string, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)

	endpoint := c.freepikBase + "/v1/ai/beta/remove-background"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create freepik request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("x-freepik-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call freepik: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("freepik failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed freepikResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode freepik response: %w", err)
	}

	transparentURL := parsed.URL
	if transparentURL == "" {
		transparentURL = parsed.HighResolution
	}
	if transparentURL == "" {
		return "", errors.New("freepik response missing result URL")
	}
	return transparentURL, nil
}

func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed (status %d)", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
