package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vyomadl/vyoma-dl/logger"
	"github.com/vyomadl/vyoma-dl/pkg/consts"
)

const loginPath = "/wp-admin/admin-ajax.php"

type Credentials struct {
	Username string
	Password string
}

// Session is an authenticated HTTP context against the course site.
// Cookies persist for its lifetime. It is not safe for concurrent Login
// calls; page fetches may run concurrently.
type Session struct {
	creds         Credentials
	base          *url.URL
	client        *http.Client
	probe         AuthProbe
	logger        logger.Logger
	authenticated bool
}

type Option func(*options)

type options struct {
	baseURL string
	client  *http.Client
	probe   AuthProbe
	logger  logger.Logger
}

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithClient replaces the default client. It should carry a cookie jar.
func WithClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func WithProbe(p AuthProbe) Option {
	return func(o *options) { o.probe = p }
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

func New(creds Credentials, opts ...Option) (*Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrEmptyCredentials
	}
	o := &options{baseURL: consts.DefaultSiteURL, probe: DefaultProbe}
	for _, opt := range opts {
		opt(o)
	}
	base, err := url.Parse(strings.TrimRight(o.baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid site url %q", o.baseURL)
	}
	if o.client == nil {
		o.client, err = NewHTTPClient(TransportOptions{})
		if err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = logger.Discard()
	}
	return &Session{
		creds:  creds,
		base:   base,
		client: o.client,
		probe:  o.probe,
		logger: o.logger.With("user", creds.Username),
	}, nil
}

// NewFromPair is shorthand for New with a username and password.
func NewFromPair(username, password string, opts ...Option) (*Session, error) {
	return New(Credentials{Username: username, Password: password}, opts...)
}

func (s *Session) Username() string     { return s.creds.Username }
func (s *Session) Client() *http.Client { return s.client }
func (s *Session) Authenticated() bool  { return s.authenticated }
func (s *Session) HomeURL() string      { return s.base.String() }

func (s *Session) BaseURL() *url.URL {
	u := *s.base
	return &u
}

func (s *Session) CourseURL(id string) string {
	return s.base.JoinPath("course", id).String()
}

// Login signs in unless the home page already shows a signed-in session.
// The result is stored and also returned; a failed attempt yields
// ErrAuthentication or ErrNoLoginToken.
func (s *Session) Login(ctx context.Context) (bool, error) {
	home, err := s.FetchPage(ctx, s.HomeURL())
	if err != nil {
		s.authenticated = false
		return false, fmt.Errorf("fetch home page: %w", err)
	}
	if s.probe.Authenticated(home) {
		s.logger.Verbose("Already logged in")
		s.authenticated = true
		return true, nil
	}

	token, err := loginToken(home)
	if err != nil {
		s.logger.Error("Login form not found on home page")
		s.authenticated = false
		return false, err
	}

	form := url.Values{
		"user_login":    {s.creds.Username},
		"user_password": {s.creds.Password},
		"user_action":   {"login_user"},
		"action":        {"themex_update_user"},
		"nonce":         {token},
	}
	s.logger.Verbose("Submitting login form")
	if _, err := s.PostForm(ctx, s.base.JoinPath(loginPath).String(), form); err != nil {
		s.authenticated = false
		return false, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	home, err = s.FetchPage(ctx, s.HomeURL())
	if err != nil {
		s.authenticated = false
		return false, fmt.Errorf("fetch home page after login: %w", err)
	}
	s.authenticated = s.probe.Authenticated(home)
	if !s.authenticated {
		s.logger.Error("Login failed")
		return false, ErrAuthentication
	}
	s.logger.Info("Login successful")
	return true, nil
}

func loginToken(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("%w: parse home page: %w", ErrAuthentication, err)
	}
	token, ok := doc.Find(`input[name="nonce"]`).First().Attr("value")
	if !ok || token == "" {
		return "", ErrNoLoginToken
	}
	return token, nil
}

// FetchPage GETs rawURL within the session. Non-2xx responses are errors.
func (s *Session) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return s.do(req)
}

// PostForm submits form url-encoded within the session.
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *Session) do(req *http.Request) ([]byte, error) {
	s.logger.Debug("Request", "method", req.Method, "url", req.URL.String())
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrBadStatus, req.Method, req.URL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
