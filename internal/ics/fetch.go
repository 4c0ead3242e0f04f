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
	"sync"
	"time"

	appLog "mycal/internal/log"
)

const (
	fetchTimeout  = 15 * time.Second
	maxFeedBytes  = 16 << 20
	fetchWorkers  = 4
	userAgent     = "mycal-ics/1"
	cacheBodyName = "body.ics"
	cacheMetaName = "meta.json"
)

// Source is one subscribed feed.
type Source struct {
	ID  string
	URL string
}

// FetchResult is the body of one feed.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool // the body came from disk, after a 304 or a failed request
}

// validators are the conditional-request headers remembered per feed.
type validators struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads feeds with conditional requests and keeps the last good
// body of each on disk. An unreachable feed is served from that copy.
type Fetcher struct {
	client *http.Client
	cache  feedCache
}

// NewFetcher returns a Fetcher caching under cacheDir. An empty cacheDir
// selects mycal/ics under the user cache directory.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(base, "mycal", "ics")
		} else {
			cacheDir = filepath.Join(os.TempDir(), "mycal-ics")
		}
	}
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  feedCache{root: cacheDir},
	}
}

// FetchAll fetches every source with a small worker pool. Results keep the
// order of sources; failed sources are left out and reported in the error
// slice.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	type outcome struct {
		res FetchResult
		err error
	}
	outcomes := make([]outcome, len(sources))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(fetchWorkers, len(sources)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := f.FetchOne(ctx, sources[i])
				outcomes[i] = outcome{res, err}
			}
		}()
	}
	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	results := make([]FetchResult, 0, len(sources))
	var errs []error
	for i, o := range outcomes {
		if o.err != nil {
			appLog.Error("ics fetch failed", o.err, "id", sources[i].ID, "url", redactURL(sources[i].URL))
			errs = append(errs, o.err)
			continue
		}
		results = append(results, o.res)
	}
	return results, errs
}

// FetchOne fetches one source. webcal:// URLs are fetched over https.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, fmt.Errorf("ics: source %q has no URL", src.ID)
	}
	target := src.URL
	if rest, ok := strings.CutPrefix(target, "webcal://"); ok {
		target = "https://" + rest
	}

	entry := f.cache.entry(src.URL)
	meta, cached := entry.load()
	fallback := func(reason string, kv ...any) (FetchResult, bool) {
		if len(cached) == 0 {
			return FetchResult{}, false
		}
		appLog.Warn(reason, append([]any{"id", src.ID, "url", redactURL(src.URL)}, kv...)...)
		return FetchResult{Source: src, Body: cached, FromCache: true}, true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("ics: build request for %s: %w", redactURL(src.URL), err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/calendar, */*;q=0.5")
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("ics fetch start", "id", src.ID, "url", redactURL(src.URL))
	resp, err := f.client.Do(req)
	if err != nil {
		if res, ok := fallback("ics fetch failed, serving cached body", "err", err); ok {
			return res, nil
		}
		return FetchResult{}, fmt.Errorf("ics: fetch %s: %w", redactURL(src.URL), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
		if err != nil {
			return FetchResult{}, fmt.Errorf("ics: read %s: %w", redactURL(src.URL), err)
		}
		if len(body) > maxFeedBytes {
			return FetchResult{}, fmt.Errorf("ics: %s exceeds %d bytes", redactURL(src.URL), maxFeedBytes)
		}
		if err := entry.store(validators{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}, body); err != nil {
			appLog.Error("ics cache save failed", err, "id", src.ID)
		}
		appLog.Info("ics fetched", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if res, ok := fallback("ics feed not modified, using cache"); ok {
			return res, nil
		}
		return FetchResult{}, errors.New("ics: 304 Not Modified without a cached body")

	default:
		if res, ok := fallback("ics fetch non-OK, serving cached body", "status", resp.StatusCode); ok {
			return res, nil
		}
		return FetchResult{}, fmt.Errorf("ics: fetch %s: %s", redactURL(src.URL), resp.Status)
	}
}

// feedCache stores one directory per feed URL under root.
type feedCache struct {
	root string
}

type cacheEntry struct {
	dir string
}

func (c feedCache) entry(rawURL string) cacheEntry {
	sum := sha256.Sum256([]byte(rawURL))
	return cacheEntry{dir: filepath.Join(c.root, hex.EncodeToString(sum[:8]))}
}

// load returns the stored validators and body. A missing or unreadable
// entry yields zero values.
func (e cacheEntry) load() (validators, []byte) {
	var meta validators
	if data, err := os.ReadFile(filepath.Join(e.dir, cacheMetaName)); err == nil {
		if json.Unmarshal(data, &meta) != nil {
			meta = validators{}
		}
	}
	body, _ := os.ReadFile(filepath.Join(e.dir, cacheBodyName))
	return meta, body
}

// store writes the body before the validators so meta never refers to a
// body that is not on disk.
func (e cacheEntry) store(meta validators, body []byte) error {
	if err := os.MkdirAll(e.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(e.dir, cacheBodyName), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.dir, cacheMetaName), data, 0o600)
}

// redactURL keeps only the scheme and host of a feed URL for logging; private
// feed URLs carry secrets in their path or query.
func redactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "ics://...(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host + "/...(redacted)"
}
