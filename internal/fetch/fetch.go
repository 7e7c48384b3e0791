package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Custom Fetcher Errors
var (
	ErrHttpStatus  = errors.New("unexpected HTTP status code")
	ErrHttpRequest = errors.New("HTTP request creation/execution error")
)

// Some hosts refuse requests without a browser-looking agent.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Fetcher downloads remote images into memory so they can be resized or
// made unique before the upload.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a new Fetcher instance.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Fetcher{client: client}
}

// Fetch retrieves the image at url and returns its bytes.
func (f *Fetcher) Fetch(url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for %s: %v", ErrHttpRequest, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: performing request for %s: %v", ErrHttpRequest, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: received status %d from %s", ErrHttpStatus, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body from %s: %w", url, err)
	}

	log.Debugf("Fetched %d bytes from %s", len(data), url)
	return data, nil
}
