package sheets

import (
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taabalselect/storefront/internal/domain"
)

// FileSource reads the feed from a local file
type FileSource struct {
	Path string
}

// Fetch returns the file content; read errors are reported as transport errors
func (s FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.TransportError{URL: s.Path, Err: err}
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", &domain.TransportError{URL: s.Path, Err: err}
	}
	return strings.TrimPrefix(string(data), utf8BOM), nil
}

// NewSource returns an HTTP client for http(s) locations and a FileSource
// for anything else. A file:// prefix is stripped.
func NewSource(location string, timeout time.Duration, requestsPerMinute int, logger *zap.Logger) domain.FeedSource {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewClient(location, timeout, requestsPerMinute, logger)
	}
	return FileSource{Path: strings.TrimPrefix(location, "file://")}
}
