// Package fetcher retrieves housing and centroid source files from local paths
// or HTTP(S) URLs and decodes them as streams.
package fetcher

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// IsRemote reports whether source is an http or https URL.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Open returns a reader over source, which is either a local file path or a
// URL fetched through f.
func Open(ctx context.Context, f Fetcher, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, eris.New("fetcher: empty source")
	}
	if IsRemote(source) {
		if f == nil {
			return nil, eris.Errorf("fetcher: no fetcher configured for %s", source)
		}
		return f.Download(ctx, source)
	}
	file, err := os.Open(source)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", source)
	}
	return file, nil
}

// Localize returns a local path for source. Remote sources are downloaded into
// dir under their URL base name; local paths are returned unchanged.
func Localize(ctx context.Context, f Fetcher, source, dir string) (string, error) {
	if !IsRemote(source) {
		return source, nil
	}
	if f == nil {
		return "", eris.Errorf("fetcher: no fetcher configured for %s", source)
	}
	name := path.Base(strings.SplitN(source, "?", 2)[0])
	if name == "" || name == "/" || name == "." {
		name = "download"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create download dir")
	}
	dest := filepath.Join(dir, name)
	if _, err := f.DownloadToFile(ctx, source, dest); err != nil {
		return "", err
	}
	return dest, nil
}
