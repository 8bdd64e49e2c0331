package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/techgyan/techgyan-backend/internal/config"
)

// Descriptor is what the media store reports back for a stored asset.
type Descriptor struct {
	URL      string `json:"secure_url"`
	AssetID  string `json:"public_id"`
	Format   string `json:"format"`
	Provider string `json:"-"`
}

// Store is the external media service boundary. Implementations must
// honor the caller's context; every call is fallible and bounded.
type Store interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*Descriptor, error)
	Destroy(ctx context.Context, assetID string) error
}

// Client talks to a Cloudinary-compatible unsigned upload API.
type Client struct {
	http      *http.Client
	base      string
	cloudName string
	preset    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.MediaTimeout},
		base:      cfg.MediaAPIBase,
		cloudName: cfg.MediaCloudName,
		preset:    cfg.MediaUploadPreset,
	}
}

func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*Descriptor, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.base, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("media upload failed: status %d: %s", resp.StatusCode, string(b))
	}

	var desc Descriptor
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, fmt.Errorf("media upload: bad response: %w", err)
	}
	desc.Provider = "cloudinary"
	return &desc, nil
}

func (c *Client) Destroy(ctx context.Context, assetID string) error {
	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.base, c.cloudName)
	form := url.Values{"public_id": {assetID}, "upload_preset": {c.preset}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("media destroy failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media destroy failed: status %d", resp.StatusCode)
	}
	return nil
}
