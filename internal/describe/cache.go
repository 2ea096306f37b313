package describe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	cacheEnvVar        = "CAPTIONWIZARD_CACHE_DIR"
	cacheSubdir        = "captionwizard/sources"
	cacheTTL           = 24 * time.Hour
	defaultHTTPTimeout = 30 * time.Second
)

// remoteCache keeps downloaded description sources on disk so repeated launches with
// the same --describe-from URL skip the network while the copy is fresh.
type remoteCache struct {
	dir    string
	client *http.Client
}

type cachedSource struct {
	body    string
	meta    string
	partial string
}

type sourceMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

func newRemoteCache(client *http.Client) (*remoteCache, error) {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "captionwizard-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &remoteCache{dir: dir, client: client}, nil
}

// Fetch returns a local path holding the content at rawURL. A stale copy is revalidated
// with the stored validators and served as-is when the network fails.
func (c *remoteCache) Fetch(ctx context.Context, rawURL string) (string, error) {
	src := c.entryFor(rawURL)
	info, statErr := os.Stat(src.body)
	if statErr == nil && info.Size() > 0 && time.Since(info.ModTime()) < cacheTTL {
		return src.body, nil
	}

	meta, _ := loadMeta(src.meta)
	if statErr != nil || info.Size() == 0 {
		info = nil
	}
	err := c.download(ctx, rawURL, src, meta, info != nil)
	if err == nil {
		return src.body, nil
	}
	if info != nil {
		return src.body, nil
	}
	return "", err
}

func (c *remoteCache) download(ctx context.Context, rawURL string, src cachedSource, meta sourceMeta, haveCopy bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid source url: %w", err)
	}
	if haveCopy {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}
	var resumeFrom int64
	if info, err := os.Stat(src.partial); err == nil && info.Size() > 0 && meta.ETag != "" {
		resumeFrom = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
		req.Header.Set("If-Range", meta.ETag)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if !haveCopy {
			return fmt.Errorf("source %s answered 304 without a cached copy", rawURL)
		}
		meta.CachedAt = time.Now().UTC()
		now := time.Now()
		_ = os.Chtimes(src.body, now, now)
		return storeMeta(src.meta, meta)
	case http.StatusOK:
		return c.store(resp, src, false)
	case http.StatusPartialContent:
		return c.store(resp, src, resumeFrom > 0)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("source download failed: %s (%s)", resp.Status, strings.TrimSpace(string(snippet)))
	}
}

func (c *remoteCache) store(resp *http.Response, src cachedSource, appendPartial bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendPartial {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(src.partial, flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	if err := os.Rename(src.partial, src.body); err != nil {
		return err
	}

	meta := sourceMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		CachedAt:     time.Now().UTC(),
	}
	if info, err := os.Stat(src.body); err == nil {
		meta.Size = info.Size()
	}
	return storeMeta(src.meta, meta)
}

// entryFor names the cache files after a hash of the URL, keeping the URL's extension so
// the loader can still tell PDFs from text.
func (c *remoteCache) entryFor(rawURL string) cachedSource {
	sum := sha256.Sum256([]byte(rawURL))
	key := hex.EncodeToString(sum[:12]) + remoteExt(rawURL)
	base := filepath.Join(c.dir, key)
	return cachedSource{body: base, meta: base + ".meta", partial: base + ".part"}
}

func remoteExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}

func loadMeta(file string) (sourceMeta, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return sourceMeta{}, err
	}
	var meta sourceMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return sourceMeta{}, err
	}
	return meta, nil
}

func storeMeta(file string, meta sourceMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}
