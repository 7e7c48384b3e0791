package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"go-hammy-upload/internal/models"
)

// Custom Error Types
var (
	// ErrUnauthorized is fatal for the whole run: every following upload
	// would fail the same way.
	ErrUnauthorized = errors.New("API request unauthorized (check API key)")
	// ErrRejected covers per-item service rejections (unsupported format,
	// size, quota).
	ErrRejected = errors.New("upload rejected by service")
	// ErrServerError covers 5xx responses.
	ErrServerError = errors.New("API server error")
)

const DefaultUploadURL = "https://hamster.is/api/1/upload"

// Client performs single upload calls against the hamster.is API.
// Failures are reported once, never retried; retry policy is the
// caller's concern and deliberately absent here.
type Client struct {
	ApiKey     string
	HttpClient *http.Client
	UploadURL  string
}

// NewClient creates a new API client.
func NewClient(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		ApiKey:     apiKey,
		HttpClient: httpClient,
		UploadURL:  DefaultUploadURL,
	}
}

// UploadFile uploads image bytes under the given filename hint and
// returns the parsed service response.
func (c *Client) UploadFile(filename string, data []byte) (models.UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("source", filename)
	if err != nil {
		return models.UploadResponse{}, fmt.Errorf("error building multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return models.UploadResponse{}, fmt.Errorf("error writing multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.UploadResponse{}, fmt.Errorf("error finalizing multipart body: %w", err)
	}

	req, err := http.NewRequest("POST", c.UploadURL, &body)
	if err != nil {
		return models.UploadResponse{}, fmt.Errorf("error creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	log.Debugf("Uploading %s (%d bytes) to %s", filename, len(data), c.UploadURL)
	return c.do(req)
}

// UploadURLSource asks the service to fetch and host a remote image
// itself, passing the URL as the upload source.
func (c *Client) UploadURLSource(sourceURL string) (models.UploadResponse, error) {
	form := url.Values{}
	form.Set("source", sourceURL)

	req, err := http.NewRequest("POST", c.UploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return models.UploadResponse{}, fmt.Errorf("error creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Debugf("Uploading remote source %s via %s", sourceURL, c.UploadURL)
	return c.do(req)
}

// do executes the request and maps the response onto the error taxonomy.
func (c *Client) do(req *http.Request) (models.UploadResponse, error) {
	if c.ApiKey != "" {
		req.Header.Set("X-API-Key", c.ApiKey)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return models.UploadResponse{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.UploadResponse{}, fmt.Errorf("error reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode below.
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.UploadResponse{}, fmt.Errorf("%w: %s", ErrUnauthorized, serviceMessage(body))
	case resp.StatusCode >= 500:
		return models.UploadResponse{}, fmt.Errorf("%w (status code %d)", ErrServerError, resp.StatusCode)
	default:
		return models.UploadResponse{}, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, serviceMessage(body))
	}

	var response models.UploadResponse
	if err := json.Unmarshal(body, &response); err != nil {
		log.Debugf("Response body causing unmarshal error: %s", string(body))
		return models.UploadResponse{}, fmt.Errorf("error unmarshalling response JSON: %w", err)
	}
	if response.Image.URL == "" {
		return models.UploadResponse{}, fmt.Errorf("%w: response carries no image URL", ErrRejected)
	}
	return response, nil
}

// serviceMessage extracts a human-readable message from an error payload,
// falling back to the raw body when it is not the documented JSON shape.
func serviceMessage(body []byte) string {
	var response models.UploadResponse
	if err := json.Unmarshal(body, &response); err == nil && response.Error != nil && response.Error.Message != "" {
		return response.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no error message"
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}
