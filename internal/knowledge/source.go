package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spherical-ai/profile-assistant/internal/domain"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// maxDocumentBytes caps how much of a remote document is read.
const maxDocumentBytes = 8 << 20

// Source fetches the knowledge document from one location.
type Source interface {
	Fetch(ctx context.Context) ([]Entry, error)
	Name() string
}

// HTTPSource fetches the document over HTTP(S).
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for the given URL.
func NewHTTPSource(rawURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{url: rawURL, client: client}
}

// Name returns the document URL.
func (s *HTTPSource) Name() string { return s.url }

// Fetch downloads and decodes the document. Non-2xx statuses are errors.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Entry, error) {
	data, err := readHTTP(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// FileSource reads the document from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a source for a local JSON file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path.
func (s *FileSource) Name() string { return s.path }

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) ([]Entry, error) {
	data, err := readFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// ChainSource tries each source in order and returns the first non-empty
// document. Empty documents and failures both move on to the next location.
type ChainSource struct {
	sources []Source
	logger  *observability.Logger
}

// NewChainSource creates a multi-location source.
func NewChainSource(logger *observability.Logger, sources ...Source) *ChainSource {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &ChainSource{sources: sources, logger: logger}
}

// Name lists the chained locations.
func (s *ChainSource) Name() string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return strings.Join(names, ",")
}

// Sources returns the chained sources in trial order.
func (s *ChainSource) Sources() []Source {
	return s.sources
}

// Fetch walks the chain.
func (s *ChainSource) Fetch(ctx context.Context) ([]Entry, error) {
	var errs []error
	for _, src := range s.sources {
		entries, err := src.Fetch(ctx)
		if err != nil {
			s.logger.Debug().Err(err).Str("source", src.Name()).Msg("Knowledge source failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(entries) == 0 {
			s.logger.Debug().Str("source", src.Name()).Msg("Knowledge source is empty, trying next")
			errs = append(errs, fmt.Errorf("%s: empty document", src.Name()))
			continue
		}
		s.logger.Debug().Str("source", src.Name()).Int("entries", len(entries)).Msg("Knowledge source selected")
		return entries, nil
	}
	if len(errs) == 0 {
		return nil, domain.KnowledgeError("no knowledge sources configured", nil)
	}
	return nil, domain.KnowledgeError("all knowledge sources failed", errors.Join(errs...))
}

// Close closes every chained source that holds resources.
func (s *ChainSource) Close() error {
	var errs []error
	for _, src := range s.sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// OpenSource builds a source from a location string:
//
//	https://host/kb.json     HTTP source
//	data/kb.json             HTTP source joined to baseURL when set, file otherwise
//	sqlite:/path/kb.db       SQL source on sqlite
//	postgres://user@host/db  SQL source on postgres
func OpenSource(location, baseURL string, client *http.Client) (Source, error) {
	switch {
	case strings.HasPrefix(location, "sqlite:"):
		return OpenSQLSource("sqlite", strings.TrimPrefix(location, "sqlite:"))
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return OpenSQLSource("postgres", location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, client), nil
	case baseURL != "":
		resolved, err := ResolveLocation(location, baseURL)
		if err != nil {
			return nil, err
		}
		return NewHTTPSource(resolved, client), nil
	default:
		return NewFileSource(location), nil
	}
}

// ResolveLocation joins a relative location to baseURL. Empty locations,
// absolute paths, URLs and DSNs are returned unchanged, as is everything
// when baseURL is empty.
func ResolveLocation(location, baseURL string) (string, error) {
	if location == "" || baseURL == "" || filepath.IsAbs(location) ||
		strings.Contains(location, "://") || strings.HasPrefix(location, "sqlite:") {
		return location, nil
	}
	resolved, err := resolveURL(baseURL, location)
	if err != nil {
		return "", domain.ConfigError("resolve document location", err)
	}
	return resolved, nil
}

// OpenChain opens every location and chains them in order.
func OpenChain(locations []string, baseURL string, client *http.Client, logger *observability.Logger) (*ChainSource, error) {
	sources := make([]Source, 0, len(locations))
	for _, loc := range locations {
		src, err := OpenSource(loc, baseURL, client)
		if err != nil {
			_ = NewChainSource(logger, sources...).Close()
			return nil, fmt.Errorf("open knowledge source %q: %w", loc, err)
		}
		sources = append(sources, src)
	}
	return NewChainSource(logger, sources...), nil
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
