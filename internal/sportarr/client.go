package sportarr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "schedarr/internal/log"
)

// Client talks to the Sportarr backend API. Read endpoints go through a
// disk-backed conditional-GET cache (ETag / Last-Modified) so a flapping
// backend degrades to stale data instead of an empty schedule.
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	cacheDir string
}

// cacheEntry holds HTTP cache metadata for a single request URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewClient creates a Client for the given backend.
//
// cacheDir is where per-URL cache subdirectories live, e.g.
// "/var/lib/schedarr/cache". Empty falls back to a relative directory so
// development runs without root permissions.
func NewClient(baseURL, apiKey, cacheDir string) *Client {
	if cacheDir == "" {
		cacheDir = "./cache/upstream"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir: cacheDir,
	}
}

// getCached performs a GET against path+query, honoring ETag and
// Last-Modified from the disk cache. The second return value reports whether
// the body came from cache.
func (c *Client) getCached(ctx context.Context, path string, query url.Values) ([]byte, bool, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	cachePath, err := c.cachePathForURL(reqURL)
	if err != nil {
		return nil, false, err
	}
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, false, err
	}

	meta, _ := c.loadCacheMeta(cachePath)
	cachedBody, _ := c.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, err
	}
	c.applyHeaders(req)

	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("upstream fetch start", "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		// Network error; fall back to the cached body if we have one.
		if len(cachedBody) > 0 {
			appLog.Error("upstream fetch failed, using cached body", err, "path", path)
			return cachedBody, true, nil
		}
		return nil, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, false, readErr
		}

		newMeta := cacheEntry{
			URL:          reqURL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := c.saveCache(cachePath, newMeta, body); err != nil {
			// Log but still return the freshly fetched body.
			appLog.Error("upstream cache save failed", err, "path", path)
		}

		appLog.Debug("upstream fetch success", "path", path, "bytes", len(body))
		return body, false, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, false, errors.New("sportarr: 304 Not Modified but no cached body available")
		}
		appLog.Debug("upstream not modified; using cache", "path", path)
		return cachedBody, true, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("upstream non-OK, using cached body", errors.New(resp.Status), "path", path, "status", resp.StatusCode)
			return cachedBody, true, nil
		}
		return nil, false, fmt.Errorf("sportarr: GET %s: %s", path, resp.Status)
	}
}

// TriggerCommand posts a named command ({"name": ...}) to the backend, e.g.
// "EventSearch" or "RefreshEvent". Commands are never cached.
func (c *Client) TriggerCommand(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("sportarr: command name is empty")
	}

	payload, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/command", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.applyHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sportarr: command %s: %s", name, resp.Status)
	}
	appLog.Info("upstream command accepted", "name", name)
	return nil
}

func (c *Client) applyHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) cachePathForURL(u string) (string, error) {
	if u == "" {
		return "", errors.New("empty url")
	}
	sum := sha256.Sum256([]byte(u))
	dir := hex.EncodeToString(sum[:8])
	return filepath.Join(c.cacheDir, dir), nil
}

func (c *Client) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (c *Client) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.json"))
}

func (c *Client) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
