package termdraw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

// CacheDirName is the directory under the user's home that holds fetched images
const CacheDirName = ".terminal_image"

// SourceKind tells the Resolver how to interpret a source string
type SourceKind int

const (
	// Local is a path on the filesystem
	Local SourceKind = iota
	// Remote is an http(s) URL
	Remote
)

func (k SourceKind) String() string {
	switch k {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// DetectKind classifies source as Remote when it parses as a URL with both a
// scheme and a host, or starts with http(s)://. Everything else is a path.
func DetectKind(source string) SourceKind {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Remote
	}
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		return Remote
	}
	return Local
}

// DefaultCacheDir returns ~/.terminal_image
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, CacheDirName), nil
}

// Resolver turns a source into a local file path, downloading remote images
// into CacheDir
type Resolver struct {
	// CacheDir receives downloaded images. It is created when missing.
	CacheDir string
	// Client performs fetches; http.DefaultClient when nil
	Client *http.Client
}

// NewResolver creates a Resolver caching into cacheDir
func NewResolver(cacheDir string) *Resolver {
	return &Resolver{CacheDir: cacheDir}
}

// Resolve returns a local path for source. Local sources must be existing
// regular files. Remote sources are fetched and written to
// CacheDir/<basename of the URL path>, replacing any file of that name.
func (r *Resolver) Resolve(ctx context.Context, source string, kind SourceKind) (string, error) {
	switch kind {
	case Local:
		return resolveLocal(source)
	case Remote:
		return r.fetch(ctx, source)
	default:
		return "", fmt.Errorf("%w: unknown source kind %s", ErrInvalidSource, kind)
	}
}

func resolveLocal(source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, source)
		}
		return "", fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrNotFound, source)
	}
	return source, nil
}

// parseRemote validates that source is a URL with a scheme, a host and a
// usable file name
func parseRemote(source string) (*url.URL, string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrInvalidSource, source, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, "", fmt.Errorf("%w: %s (url needs a scheme and a host)", ErrInvalidSource, source)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return nil, "", fmt.Errorf("%w: %s (url path has no file name)", ErrInvalidSource, source)
	}
	return u, name, nil
}

func (r *Resolver) fetch(ctx context.Context, source string) (string, error) {
	u, name, err := parseRemote(source)
	if err != nil {
		return "", err
	}
	if r.CacheDir == "" {
		return "", fmt.Errorf("no cache directory configured")
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidSource, source, err)
	}

	log.WithField("url", u.String()).Debug("fetching image")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s returned %s", ErrNotFound, source, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("failed to fetch %s: unexpected status %s", source, resp.Status)
	}

	if err := os.MkdirAll(r.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	dest := filepath.Join(r.CacheDir, name)
	if err := writeAtomic(dest, resp.Body); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"url":  u.String(),
		"path": dest,
	}).Debug("cached image")

	return dest, nil
}

// writeAtomic streams body into a temp file next to dest and renames it over
// dest, so readers never see a partial file
func writeAtomic(dest string, body io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}
