package dictionary

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/standardbeagle/wordshift/internal/debug"
	wserrors "github.com/standardbeagle/wordshift/internal/errors"
	"github.com/standardbeagle/wordshift/internal/security"
)

// maxSourceBytes caps how much text a single source may return.
const maxSourceBytes = 64 << 20

// Source is a named place dictionary (or mapping) text can be fetched from.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (string, error)
}

// FileSource reads text from a local file.
type FileSource struct {
	Path        string
	DisplayName string
}

// Name returns the display name, falling back to the path.
func (f *FileSource) Name() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Path
}

// Fetch reads and decodes the file. A missing file yields a not-found
// SourceError; an empty file is not an error.
func (f *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return "", wserrors.NewSourceError("fetch", f.Name(), err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", wserrors.NewSourceError("fetch", f.Name(), err)
	}
	if info.IsDir() {
		return "", wserrors.NewSourceError("fetch", f.Name(), fmt.Errorf("%s is a directory", f.Path))
	}

	raw, err := io.ReadAll(io.LimitReader(file, maxSourceBytes))
	if err != nil {
		return "", wserrors.NewSourceError("fetch", f.Name(), err)
	}
	return decodeText(f.Name(), raw)
}

// HTTPSource fetches text from an HTTP(S) URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Name returns the URL.
func (h *HTTPSource) Name() string {
	return h.URL
}

// Fetch performs a GET request. 404 and 410 responses are reported as
// not-found; any other non-2xx status is reported as unreadable.
func (h *HTTPSource) Fetch(ctx context.Context) (string, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return "", wserrors.NewSourceError("fetch", h.URL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", wserrors.NewSourceError("fetch", h.URL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", wserrors.NewSourceError("fetch", h.URL, fmt.Errorf("HTTP %d: %w", resp.StatusCode, fs.ErrNotExist))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", wserrors.NewSourceError("fetch", h.URL, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return "", wserrors.NewSourceError("fetch", h.URL, err)
	}
	return decodeText(h.URL, raw)
}

// Open returns the Source for a reference: http(s) URLs become HTTPSource,
// anything else is treated as a file path.
func Open(ref string) Source {
	if isURL(ref) {
		return &HTTPSource{URL: ref}
	}
	return &FileSource{Path: ref}
}

// Load fetches src and parses it into a word set.
func Load(ctx context.Context, src Source) (*WordSet, error) {
	start := time.Now()
	text, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	words := Parse(text)
	debug.LogDictionary("loaded %d words from %s in %v\n", words.Len(), src.Name(), time.Since(start))
	return words, nil
}

func isURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

var textValidator = security.NewTextValidator()

// decodeText honours a UTF-8 or UTF-16 byte-order mark and otherwise treats
// the bytes as UTF-8. The mark itself is dropped. Binary content is rejected.
func decodeText(name string, raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", wserrors.NewSourceError("decode", name, err)
	}
	if err := textValidator.Validate(raw, out); err != nil {
		return "", wserrors.NewSourceError("decode", name, err)
	}
	return string(out), nil
}
