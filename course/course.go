package course

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/vyomadl/vyoma-dl/logger"
)

// Fetcher is the part of a session a course needs.
type Fetcher interface {
	FetchPage(ctx context.Context, rawURL string) ([]byte, error)
	PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error)
}

type SubscriptionState int

const (
	SubscriptionUnknown SubscriptionState = iota
	NotSubscribed
	Subscribed
)

func (s SubscriptionState) String() string {
	switch s {
	case NotSubscribed:
		return "not subscribed"
	case Subscribed:
		return "subscribed"
	}
	return "unknown"
}

// Course is one course page as seen by the logged-in session.
type Course struct {
	ID          string
	URL         string
	Dir         string
	Title       string
	Teacher     string
	Description string

	host   string
	page   []byte
	form   url.Values
	state  SubscriptionState
	client Fetcher
	logger logger.Logger
}

// Resolver turns identifiers into fetched courses.
type Resolver struct {
	client  Fetcher
	base    *url.URL
	rootDir string
	logger  logger.Logger
}

// NewResolver creates a resolver for courses under siteURL whose files live
// below rootDir/<course id>.
func NewResolver(client Fetcher, siteURL, rootDir string, l logger.Logger) (*Resolver, error) {
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid site url %q", siteURL)
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Resolver{client: client, base: base, rootDir: rootDir, logger: l}, nil
}

// Resolve extracts the id from idOrURL and loads the course page.
func (r *Resolver) Resolve(ctx context.Context, idOrURL string) (*Course, error) {
	id, err := ExtractID(idOrURL, r.base.Host)
	if err != nil {
		r.logger.Error("Invalid course identifier", "input", idOrURL)
		return nil, err
	}
	c := &Course{
		ID:     id,
		URL:    r.base.JoinPath("course", id).String(),
		Dir:    filepath.Join(r.rootDir, id),
		host:   r.base.Host,
		client: r.client,
		logger: r.logger.With("course", id),
	}
	c.logger.Verbose("Course directory", "path", c.Dir)
	if err := c.Refresh(ctx, true); err != nil {
		return nil, err
	}
	return c, nil
}

// HTML returns the last fetched course page.
func (c *Course) HTML() []byte { return c.page }

func (c *Course) Subscription() SubscriptionState { return c.state }

func (c *Course) Subscribed() bool { return c.state == Subscribed }

// HasSubscriptionForm reports whether the last page carried the form.
func (c *Course) HasSubscriptionForm() bool { return len(c.form) > 0 }

func (c *Course) String() string {
	if c.Teacher == "" {
		return c.Title
	}
	return c.Title + " by " + c.Teacher
}

// Refresh re-parses the course page, downloading it first when latest is
// set or nothing has been fetched yet.
func (c *Course) Refresh(ctx context.Context, latest bool) error {
	if latest || c.page == nil {
		page, err := c.client.FetchPage(ctx, c.URL)
		if err != nil {
			return fmt.Errorf("fetch course page: %w", err)
		}
		c.page = page
		c.logger.Verbose("Downloaded course page")
	}
	info, err := parsePage(c.page)
	if err != nil {
		return err
	}
	c.Description = info.description
	c.Title = c.ID
	c.Teacher = ""
	if info.hasHeader {
		if info.headerHref != "" && !c.headerMatches(info.headerHref) {
			c.logger.Error("Invalid course header", "href", info.headerHref)
		}
		if info.title != "" {
			c.Title = info.title
		}
		c.Teacher = info.teacher
	}
	c.form = info.form
	switch {
	case info.form == nil:
		c.state = SubscriptionUnknown
	case info.form.Get("course_action") == "remove_user":
		c.state = Subscribed
	case info.form.Get("course_action") == "add_user":
		c.state = NotSubscribed
	default:
		c.state = SubscriptionUnknown
	}
	c.logger.Debug("Parsed course page", "title", c.Title, "subscription", c.state)
	return nil
}

func (c *Course) headerMatches(href string) bool {
	if href == "" {
		return false
	}
	base, err := url.Parse(c.URL)
	if err != nil {
		return false
	}
	ref, err := base.Parse(href)
	if err != nil {
		return false
	}
	id, err := ExtractID(ref.String(), c.host)
	return err == nil && id == c.ID
}

// EnsureSubscribed subscribes the logged-in user to the course unless the
// fresh page already shows a subscription. It fails with
// ErrSubscriptionFailed when no form is available or the state does not
// flip after submitting it.
func (c *Course) EnsureSubscribed(ctx context.Context) (bool, error) {
	if err := c.Refresh(ctx, true); err != nil {
		return false, err
	}
	if c.state == Subscribed {
		c.logger.Info("Already subscribed to the course")
		return true, nil
	}
	if len(c.form) == 0 {
		c.logger.Error("Subscription form not found")
		return false, fmt.Errorf("%w: no subscription form on %s", ErrSubscriptionFailed, c.URL)
	}
	c.logger.Info("Subscribing to the course")
	if _, err := c.client.PostForm(ctx, c.URL, c.form); err != nil {
		c.logger.Error("Subscription request failed", "error", err)
		return false, fmt.Errorf("%w: %w", ErrSubscriptionFailed, err)
	}
	if err := c.Refresh(ctx, true); err != nil {
		return false, err
	}
	if c.state != Subscribed {
		c.logger.Error("Could not subscribe to the course")
		return false, fmt.Errorf("%w: course is %s after subscribing", ErrSubscriptionFailed, c.state)
	}
	c.logger.Info("Subscription successful")
	return true, nil
}
