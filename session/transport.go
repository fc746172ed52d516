package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/vyomadl/vyoma-dl/common/utils/netutil"
	"github.com/vyomadl/vyoma-dl/pkg/consts"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

type TransportOptions struct {
	// Proxy accepts http, https, socks5 and socks5h urls.
	Proxy string
	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
	UserAgent string
	// Timeout bounds a whole request including the body. Zero means none,
	// which large media downloads need.
	Timeout time.Duration
}

// NewHTTPClient returns a client with a cookie jar so that the login
// cookies carry over to every later request.
func NewHTTPClient(opts TransportOptions) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if err := netutil.ApplyProxy(tr, opts.Proxy); err != nil {
		return nil, err
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = consts.UserAgent()
	}
	rt := &limitedTransport{next: tr, userAgent: ua}
	if opts.RateLimit > 0 {
		rt.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return &http.Client{
		Jar:       jar,
		Transport: rt,
		Timeout:   opts.Timeout,
	}, nil
}

type limitedTransport struct {
	next      http.RoundTripper
	limiter   *rate.Limiter
	userAgent string
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}
