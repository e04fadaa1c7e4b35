package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikbrunner/bmc/internal/storage"
)

// DefaultClientTimeout bounds each client call.
const DefaultClientTimeout = 5 * time.Second

var (
	ErrServerUnavailable = errors.New("companion server unavailable")
	ErrRequest           = errors.New("companion request failed")
	ErrInvalidResponse   = errors.New("invalid companion response")
)

// Client talks to a companion server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AddToBrowser sends pasted text to the server and returns the normalized
// bookmarks it derived.
func (c *Client) AddToBrowser(ctx context.Context, urls, folderName string) (*AddToBrowserResponse, error) {
	var out AddToBrowserResponse
	if err := c.post(ctx, "/add-to-browser", BookmarkRequest{URLs: urls, FolderName: folderName}, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, ErrInvalidResponse
	}
	return &out, nil
}

// Convert asks the server for a downloadable HTML file.
func (c *Client) Convert(ctx context.Context, urls, folderName string) (*ConvertResponse, error) {
	var out ConvertResponse
	if err := c.post(ctx, "/convert", BookmarkRequest{URLs: urls, FolderName: folderName}, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.DownloadURL == "" {
		return nil, ErrInvalidResponse
	}
	return &out, nil
}

// Analytics fetches usage statistics.
func (c *Client) Analytics(ctx context.Context) (*storage.Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/analytics", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var out storage.Stats
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: status %d", ErrRequest, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
