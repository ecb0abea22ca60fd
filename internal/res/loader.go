// Package res loads input documents from local paths, http(s) URLs and
// data: URLs, with an in-memory cache keyed by the resolved location.
package res

import (
	"bytes"
	"context"
	"encoding/base64"
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
)

// ErrNotFound is returned when a local resource exists in no search path.
var ErrNotFound = errors.New("resource not found")

// Kind classifies a loaded resource by what pagefit does with it.
type Kind int

const (
	KindUnknown Kind = iota
	KindDocument
	KindHTML
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindHTML:
		return "html"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Resource is a loaded input.
type Resource struct {
	Location string
	Kind     Kind
	MimeType string
	Data     []byte
}

// Reader returns a fresh reader over the data.
func (r *Resource) Reader() io.Reader { return bytes.NewReader(r.Data) }

// Remote reports whether a location is an http(s) URL.
func Remote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Loader resolves and caches resources.
type Loader struct {
	// BaseURL is a file path or URL relative locations resolve against.
	BaseURL string

	mu          sync.RWMutex
	cache       map[string]*Resource
	searchPaths []string
	client      *http.Client
}

// NewLoader creates a loader resolving relative locations against baseURL.
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Resource),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// AddSearchPath adds a directory tried when a local file is missing.
func (l *Loader) AddSearchPath(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.searchPaths = append(l.searchPaths, dir)
}

// Load fetches location, using the cache when possible.
func (l *Loader) Load(ctx context.Context, location string) (*Resource, error) {
	l.mu.RLock()
	cached, ok := l.cache[location]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var (
		r   *Resource
		err error
	)
	switch {
	case strings.HasPrefix(location, "data:"):
		r, err = parseDataURL(location)
	default:
		var resolved string
		resolved, err = l.resolve(location)
		if err != nil {
			return nil, err
		}
		if Remote(resolved) {
			r, err = l.loadRemote(ctx, resolved)
		} else {
			r, err = l.loadLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[location] = r
	l.mu.Unlock()
	return r, nil
}

// Forget drops a cached location so the next Load re-reads it.
func (l *Loader) Forget(location string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, location)
}

// parseDataURL decodes an RFC 2397 data URL such as
// "data:application/yaml;base64,bmFtZTogSmFuZQ==".
func parseDataURL(u string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mime := "text/plain"
	isBase64 := false
	if meta != "" {
		parts := strings.Split(meta, ";")
		if parts[0] != "" {
			mime = parts[0]
		}
		for _, p := range parts[1:] {
			if strings.EqualFold(strings.TrimSpace(p), "base64") {
				isBase64 = true
			}
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{Location: u, Kind: kindOf(mime, ""), MimeType: mime, Data: data}, nil
}

func (l *Loader) resolve(location string) (string, error) {
	if Remote(location) || filepath.IsAbs(location) {
		return location, nil
	}
	if l.BaseURL == "" {
		return location, nil
	}
	if !Remote(l.BaseURL) {
		return filepath.Join(filepath.Dir(l.BaseURL), location), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (l *Loader) loadRemote(ctx context.Context, location string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", location, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime := resp.Header.Get("Content-Type")
	return &Resource{Location: location, Kind: kindOf(mime, location), MimeType: mime, Data: data}, nil
}

func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(path)
	}
	if err != nil {
		return nil, err
	}
	return &Resource{Location: path, Kind: kindOf("", path), MimeType: mimeOf(path), Data: data}, nil
}

func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	l.mu.RLock()
	paths := append([]string(nil), l.searchPaths...)
	l.mu.RUnlock()

	base := filepath.Base(filename)
	for _, dir := range paths {
		path := filepath.Join(dir, base)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return &Resource{Location: path, Kind: kindOf("", path), MimeType: mimeOf(path), Data: data}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

func mimeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "application/yaml"
	case ".html", ".htm":
		return "text/html"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func kindOf(mime, path string) Kind {
	mime = strings.ToLower(mime)
	switch {
	case strings.Contains(mime, "html"):
		return KindHTML
	case strings.Contains(mime, "yaml"):
		if strings.Contains(strings.ToLower(filepath.Base(path)), "pagefit") {
			return KindConfig
		}
		return KindDocument
	}

	if path == "" {
		return KindUnknown
	}
	base := strings.ToLower(filepath.Base(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return KindHTML
	case ".yaml", ".yml":
		if strings.HasPrefix(base, "pagefit") {
			return KindConfig
		}
		return KindDocument
	}
	return KindUnknown
}
