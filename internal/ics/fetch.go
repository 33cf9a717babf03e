package ics

import (
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

	"github.com/cenkalti/backoff/v4"

	appLog "odincal/internal/log"
)

// FetchResult is the body of one ICS source.
type FetchResult struct {
	URL       string
	Body      []byte
	FromCache bool // true if the cached body was reused (304 or network failure)
}

// cacheEntry holds HTTP cache metadata for a single ICS URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads ICS feeds for import, honoring ETag / Last-Modified
// with a disk-backed cache so repeated imports of a feed are cheap.
type Fetcher struct {
	client   *http.Client
	cacheDir string

	// Network errors and 5xx responses are retried with exponential backoff.
	maxRetries    uint64
	retryInterval time.Duration
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir:      cacheDir,
		maxRetries:    2,
		retryInterval: 500 * time.Millisecond,
	}
}

// Read returns the ICS payload named by src: an http(s) URL is fetched,
// anything else is read from disk.
func (f *Fetcher) Read(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			return nil, err
		}
		return res.Body, nil
	}
	return os.ReadFile(src)
}

// FetchOne fetches a single ICS URL, honoring ETag and Last-Modified.
func (f *Fetcher) FetchOne(ctx context.Context, rawURL string) (FetchResult, error) {
	if rawURL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	cachePath := f.cachePathForURL(rawURL)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return FetchResult{}, err
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Info("ics fetch start", "url", redactURL(rawURL))

	resp, err := f.do(ctx, req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch network error, using cached body", err, "url", redactURL(rawURL))
			return FetchResult{URL: rawURL, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, readErr
		}

		newMeta := cacheEntry{
			URL:          rawURL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			appLog.Error("ics cache save failed", err, "url", redactURL(rawURL))
		}

		appLog.Info("ics fetch success", "url", redactURL(rawURL), "status", resp.StatusCode, "bytes", len(body))
		return FetchResult{URL: rawURL, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("ics fetch not modified; using cache", "url", redactURL(rawURL))
		return FetchResult{URL: rawURL, Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(rawURL), "status", resp.StatusCode)
			return FetchResult{URL: rawURL, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("fetch %s: %s", redactURL(rawURL), resp.Status)
	}
}

// do sends req, retrying transport failures and server errors.
func (f *Fetcher) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = f.retryInterval
	exp.Multiplier = 2
	exp.Reset()

	var resp *http.Response
	op := func() error {
		r, err := f.client.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			r.Body.Close()
			return fmt.Errorf("server error: %s", r.Status)
		}
		resp = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		appLog.Debug("ics fetch retry", "url", redactURL(req.URL.String()), "err", err.Error(), "wait", wait.String())
	}

	b := backoff.WithContext(backoff.WithMaxRetries(exp, f.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

func (f *Fetcher) cachePathForURL(u string) string {
	sum := sha256.Sum256([]byte(u))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
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

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.ics"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host; feed URLs often embed private tokens.
func redactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "ics://...(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host + "/...(redacted)"
}
