package uploads

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/JulianoPassing/scc-tickets/internal/config"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

const imgurUploadURL = "https://api.imgur.com/3/image"

// AllowedMimeTypes whitelists what the image host accepts from us.
var AllowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// ImgurClient uploads images anonymously and returns the public URL.
type ImgurClient struct {
	httpClient *http.Client
	clientID   string
	maxSize    int64
	logger     *zap.Logger
}

// NewImgurClient builds the client with a bounded timeout.
func NewImgurClient(cfg config.ImgurConfig, logger *zap.Logger) *ImgurClient {
	return &ImgurClient{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		clientID:   cfg.ClientID,
		maxSize:    cfg.MaxUploadBytes,
		logger:     logger,
	}
}

type imgurResponse struct {
	Data struct {
		Link string `json:"link"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Upload validates the payload and sends it to Imgur, returning the hosted
// URL. Validation failures are 400s; host failures map to a generic upload
// error.
func (c *ImgurClient) Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewValidationError("no file sent", nil)
	}
	if _, ok := AllowedMimeTypes[mimeType]; !ok {
		return "", apperrors.NewValidationError("file type not allowed, only images are accepted", map[string]any{"mime_type": mimeType})
	}
	if c.maxSize > 0 && int64(len(data)) > c.maxSize {
		return "", apperrors.NewValidationError("file too large", map[string]any{"max_bytes": c.maxSize})
	}

	payload, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(data),
		"type":  "base64",
		"name":  filename,
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, imgurUploadURL, bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.clientID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("imgur upload failed", zap.Error(err))
		return "", apperrors.NewUpstreamError("image upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("imgur upload rejected", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", apperrors.NewUpstreamError("image upload failed", fmt.Errorf("imgur status %d", resp.StatusCode))
	}

	var parsed imgurResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.NewUpstreamError("image upload failed", err)
	}
	if parsed.Data.Link == "" {
		return "", apperrors.NewUpstreamError("image upload failed", fmt.Errorf("no link in imgur response"))
	}
	return parsed.Data.Link, nil
}
