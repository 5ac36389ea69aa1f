// Package upload implements domain.Uploader against a Cloudinary-style
// signed image upload API.
package upload

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mkarsten/campground-api/internal/domain"
	"github.com/mkarsten/campground-api/internal/observability"
)

// allowedExtensions is the image extension allow-list, checked before any
// network call so a non-image file never reaches the hosting service.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// AllowedExtension reports whether filename carries an accepted image
// extension (case-insensitive).
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Client uploads local image files to the hosting service and returns the
// durable https URL they are served from.
type Client struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates an upload client for the given hosting account.
func NewClient(cloudName, apiKey, apiSecret string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.cloudinary.com/v1_1",
		breaker: newBreaker("uploader", logger),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload sends the file at localPath to the hosting service and returns its
// public URL. The file must carry an allowed image extension. The caller
// owns localPath and is responsible for removing it afterwards.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	if !AllowedExtension(localPath) {
		return "", fmt.Errorf("%w: only image files are allowed", domain.ErrValidation)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.doUpload(ctx, localPath)
	})
	c.metrics.ExternalDuration.WithLabelValues("upload").Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.ExternalRequests.WithLabelValues("upload", "error").Inc()
		return "", err
	}

	c.metrics.ExternalRequests.WithLabelValues("upload", "success").Inc()
	return result.(string), nil
}

func (c *Client) doUpload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	body := &strings.Builder{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read upload file: %w", err)
	}
	fields := map[string]string{
		"api_key":   c.apiKey,
		"timestamp": timestamp,
		"signature": c.sign(timestamp),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("build multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}

	u := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body.String()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload API error: status %d: %s", resp.StatusCode, respBody)
	}

	var uploadResp response
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if uploadResp.SecureURL == "" {
		return "", fmt.Errorf("upload API returned no secure_url")
	}

	return uploadResp.SecureURL, nil
}

// sign produces the hex SHA-1 request signature over the signed parameters
// and the account secret, as the hosting API requires.
func (c *Client) sign(timestamp string) string {
	sum := sha1.Sum([]byte("timestamp=" + timestamp + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

// newBreaker builds the circuit breaker for the upload service. Tuning
// matches the geocoder: trip on a majority of failures across at least
// five calls, probe again after 30 seconds.
func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Hosting API response type.

type response struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}
