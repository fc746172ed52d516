package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/vyomadl/vyoma-dl/common/utils/fsutil"
	"github.com/vyomadl/vyoma-dl/common/utils/ioutil"
	"github.com/vyomadl/vyoma-dl/logger"
)

type Request struct {
	URL string
	// Dir is the directory the file is stored in. It is created if needed.
	Dir string
}

// Fetcher downloads one resource and returns the local path it was saved to.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (string, error)
}

// ProgressTracker observes a single download. Calls for one download are
// sequential; OnDone is always called once OnStart was.
type ProgressTracker interface {
	OnStart(name string, total int64)
	OnProgress(downloaded, total int64)
	OnDone(err error)
}

type HTTPFetcher struct {
	client   *http.Client
	progress ProgressTracker
	logger   logger.Logger
}

type Option func(*HTTPFetcher)

func WithProgress(p ProgressTracker) Option {
	return func(f *HTTPFetcher) { f.progress = p }
}

func WithLogger(l logger.Logger) Option {
	return func(f *HTTPFetcher) { f.logger = l }
}

// NewHTTPFetcher downloads with client, which should be the session client
// so that protected files are reachable.
func NewHTTPFetcher(client *http.Client, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = http.DefaultClient
	}
	if f.logger == nil {
		f.logger = logger.Discard()
	}
	if f.progress == nil {
		f.progress = nopTracker{}
	}
	return f
}

// Fetch GETs req.URL into req.Dir. The body goes to <name>.part first and
// is renamed once complete, so a file under its final name is whole.
// Every failure wraps ErrTransfer.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (string, error) {
	path, err := f.fetch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTransfer, req.URL, err)
	}
	return path, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, r Request) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: GET returned %d", ErrBadStatus, resp.StatusCode)
	}

	name := fileName(r.URL, resp)
	target := filepath.Join(r.Dir, name)
	total := resp.ContentLength
	f.logger.Info("Downloading", "file", name)
	f.progress.OnStart(name, total)

	path, err := f.save(target, resp.Body, total)
	f.progress.OnDone(err)
	if err != nil {
		return "", err
	}
	f.logger.Verbose("Saved", "path", path)
	return path, nil
}

func (f *HTTPFetcher) save(target string, body io.Reader, total int64) (string, error) {
	part, err := fsutil.CreatePart(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	wr := ioutil.NewProgressWriter(part, func(written int64) {
		f.progress.OnProgress(written, total)
	})
	if _, err := io.Copy(wr, body); err != nil {
		if rmErr := part.Discard(); rmErr != nil {
			f.logger.Warn("Failed to remove partial file", "path", part.Name(), "error", rmErr)
		}
		return "", fmt.Errorf("copy body: %w", err)
	}
	path, err := part.Commit()
	if err != nil {
		return "", fmt.Errorf("finish file: %w", err)
	}
	return path, nil
}

func fileName(rawURL string, resp *http.Response) string {
	var name string
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		name = dispositionName(cd)
	}
	if name == "" {
		name = urlName(rawURL)
	}
	if name == "" && resp.Request != nil && resp.Request.URL != nil {
		name = urlName(resp.Request.URL.String())
	}
	name = fsutil.NormalizePathname(name)
	if name == "" {
		name = "download-" + cryptor.Md5String(rawURL)[:12]
	}
	return name
}

type nopTracker struct{}

func (nopTracker) OnStart(string, int64)   {}
func (nopTracker) OnProgress(int64, int64) {}
func (nopTracker) OnDone(error)            {}
