package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceKind enumerates where a document is read from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies an OpenAPI document location.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile points at a file on disk.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS points at a file inside the fs.FS passed with WithFS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL points at an http(s) endpoint.
func SourceFromURL(raw string) (Source, error) {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return Source{}, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Source{}, fmt.Errorf("openapi: unsupported URL scheme %q", parsed.Scheme)
	}
	return Source{Kind: SourceKindURL, Location: raw}, nil
}

// ParseSource treats http:// and https:// locations as URLs and anything
// else as a file path.
func ParseSource(raw string) (Source, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return Source{}, errors.New("openapi: source is empty")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return SourceFromURL(location)
	}
	return SourceFromFile(location), nil
}

// WithFS sets the filesystem SourceFromFS sources are read from.
func WithFS(fsys fs.FS) Option {
	return func(l *loader) {
		l.fs = fsys
	}
}

// WithHTTPClient sets the client used for URL sources. http.DefaultClient is
// used otherwise.
func WithHTTPClient(client *http.Client) Option {
	return func(l *loader) {
		l.http = client
	}
}

// WithTimeout bounds URL fetches.
func WithTimeout(timeout time.Duration) Option {
	return func(l *loader) {
		l.timeout = timeout
	}
}

// LoadFormFrom reads the document at src and converts operationID.
func LoadFormFrom(ctx context.Context, src Source, operationID string, options ...Option) (*Form, error) {
	data, err := Read(ctx, src, options...)
	if err != nil {
		return nil, err
	}
	return LoadForm(ctx, data, operationID, options...)
}

// Read returns the raw document at src.
func Read(ctx context.Context, src Source, options ...Option) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := newLoader(options)
	if src.Location == "" {
		return nil, errors.New("openapi: source location is required")
	}

	switch src.Kind {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("openapi: filesystem is not configured")
		}
		data, err := fs.ReadFile(l.fs, src.Location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindURL:
		return l.fetch(ctx, src.Location)
	default:
		return nil, fmt.Errorf("openapi: unsupported source kind %q", src.Kind)
	}
}

func (l loader) fetch(ctx context.Context, location string) ([]byte, error) {
	client := l.http
	if client == nil {
		client = http.DefaultClient
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: unexpected status %s", location, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
