package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"
	"github.com/vyomadl/vyoma-dl/classify"
	"github.com/vyomadl/vyoma-dl/course"
	"github.com/vyomadl/vyoma-dl/fetch"
	"github.com/vyomadl/vyoma-dl/ledger"
	"github.com/vyomadl/vyoma-dl/logger"
	"github.com/vyomadl/vyoma-dl/pkg/enums/linktype"
)

// Selection chooses the link types a sync handles.
type Selection struct {
	Document bool
	Audio    bool
	Video    bool
}

func SelectAll() Selection {
	return Selection{Document: true, Audio: true, Video: true}
}

func (s Selection) Any() bool {
	return s.Document || s.Audio || s.Video
}

func (s Selection) Has(t linktype.LinkType) bool {
	switch t {
	case linktype.Document:
		return s.Document
	case linktype.Audio:
		return s.Audio
	case linktype.Video:
		return s.Video
	}
	return false
}

// Executor mirrors a course's resources into its directory.
type Executor struct {
	fetcher  fetch.Fetcher
	progress fetch.ProgressTracker
	logger   logger.Logger
	now      func() time.Time
}

type Option func(*Executor)

// WithFetcher replaces the HTTP fetcher, mostly for tests.
func WithFetcher(f fetch.Fetcher) Option {
	return func(e *Executor) { e.fetcher = f }
}

// WithProgress attaches a tracker to the default fetcher.
func WithProgress(p fetch.ProgressTracker) Option {
	return func(e *Executor) { e.progress = p }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// NewExecutor downloads through client, which must carry the session
// cookies.
func NewExecutor(client *http.Client, opts ...Option) *Executor {
	e := &Executor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Discard()
	}
	if e.fetcher == nil {
		fopts := []fetch.Option{fetch.WithLogger(e.logger)}
		if e.progress != nil {
			fopts = append(fopts, fetch.WithProgress(e.progress))
		}
		e.fetcher = fetch.NewHTTPFetcher(client, fopts...)
	}
	return e
}

// Sync downloads the selected document and audio files that are not yet
// complete and refreshes the course manifests. Per-file failures are
// recorded as skips and never abort the run. A cancelled context stops the
// run between files; the partial report is returned with the context error.
func (e *Executor) Sync(ctx context.Context, c *course.Course, sel Selection) (*Report, error) {
	log := e.logger.With("course", c.ID)
	if !c.Subscribed() {
		ok, err := c.EnsureSubscribed(ctx)
		if !ok {
			log.Error("Could not download the content")
			return nil, errors.Join(ErrNotSubscribed, err)
		}
	}

	report := &Report{
		RunID:     xid.New().String(),
		CourseID:  c.ID,
		Title:     c.Title,
		Dir:       c.Dir,
		StartedAt: e.now(),
	}
	log.Info("Syncing course", "title", c.Title, "dir", c.Dir)

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create course directory: %w", err)
	}
	if err := writeManifest(c.Dir, descriptionFile, c.Description); err != nil {
		return nil, err
	}

	links, err := classifyCourse(c)
	if err != nil {
		return nil, err
	}
	progressPath := filepath.Join(c.Dir, ledger.FileName)
	led := ledger.Load(progressPath, log)
	report.NewLinks = led.Merge(links)
	if err := led.Save(progressPath); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	if sel.Video {
		videos := links.Get(linktype.Video)
		if err := writeLines(c.Dir, linksFile(linktype.Video), videos); err != nil {
			return nil, err
		}
		report.VideoLinks = len(videos)
		log.Info("Video links listed", "total", len(videos), "file", linksFile(linktype.Video))
	}

	var runErr error
	for _, t := range linktype.Downloadables() {
		if !sel.Has(t) {
			continue
		}
		tr, err := e.syncType(ctx, c, t, links.Get(t), led, progressPath)
		report.Types = append(report.Types, tr)
		log.Info(fmt.Sprintf("%s links processed", t.Title()),
			"total", tr.Total,
			"downloaded", tr.Downloaded,
			"already_complete", tr.AlreadyComplete,
			"skipped", tr.Skipped)
		for _, u := range tr.SkippedURLs {
			log.Warn("Skipped", "url", u)
		}
		if err != nil {
			runErr = err
			break
		}
	}

	if skipped := report.SkippedURLs(); len(skipped) > 0 {
		if err := writeLines(c.Dir, skippedFile, skipped); err != nil {
			log.Error("Failed to write skipped links", "error", err)
		}
	} else if err := os.Remove(filepath.Join(c.Dir, skippedFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error("Failed to remove stale skipped links", "error", err)
	}
	report.FinishedAt = e.now()
	if runErr != nil {
		report.Canceled = ctx.Err() != nil
		return report, runErr
	}
	return report, nil
}

func (e *Executor) syncType(
	ctx context.Context,
	c *course.Course,
	t linktype.LinkType,
	urls []string,
	led *ledger.Ledger,
	progressPath string,
) (TypeReport, error) {
	log := e.logger.With("course", c.ID, "type", t)
	tr := TypeReport{Type: t, Total: len(urls)}
	if err := writeLines(c.Dir, linksFile(t), urls); err != nil {
		return tr, err
	}
	dir := filepath.Join(c.Dir, string(t))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return tr, fmt.Errorf("create %s directory: %w", t, err)
	}
	log.Info(fmt.Sprintf("Total %ss: %d", t, len(urls)))

	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			log.Warn("Sync interrupted", "remaining", len(urls)-i)
			return tr, err
		}
		link, ok := led.Reconcile(u)
		if ok && link.Complete {
			log.Verbose("Already downloaded", "file", filepath.Base(link.Path))
			tr.AlreadyComplete++
			continue
		}
		log.Verbose(fmt.Sprintf("Fetching %d of %d", i+1, len(urls)), "url", u)
		path, err := e.fetcher.Fetch(ctx, fetch.Request{URL: u, Dir: dir})
		if err != nil {
			if ctx.Err() != nil {
				log.Warn("Sync interrupted", "remaining", len(urls)-i)
				return tr, ctx.Err()
			}
			log.Error("Download failed", "url", u, "error", err)
			tr.Skipped++
			tr.SkippedURLs = append(tr.SkippedURLs, u)
			continue
		}
		led.MarkComplete(u, path, e.now().Format(ledger.DateLayout))
		if err := led.Save(progressPath); err != nil {
			log.Error("Failed to save progress", "error", err)
		}
		tr.Downloaded++
	}
	return tr, nil
}

func classifyCourse(c *course.Course) (classify.Links, error) {
	base, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parse course url: %w", err)
	}
	links, err := classify.ClassifyHTML(c.HTML(), base)
	if err != nil {
		return nil, fmt.Errorf("classify course links: %w", err)
	}
	return links, nil
}
