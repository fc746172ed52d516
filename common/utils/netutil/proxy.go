package netutil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

func NewProxyDialer(proxyUrl string) (proxy.Dialer, error) {
	url, err := url.Parse(proxyUrl)
	if err != nil {
		return nil, err
	}
	return proxy.FromURL(url, proxy.Direct)
}

// ApplyProxy routes tr through proxyUrl. HTTP(S) proxies use the transport's
// own proxy support, anything else (socks5, socks5h) goes through a dialer.
func ApplyProxy(tr *http.Transport, proxyUrl string) error {
	if proxyUrl == "" {
		return nil
	}
	u, err := url.Parse(proxyUrl)
	if err != nil {
		return fmt.Errorf("invalid proxy url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		tr.Proxy = http.ProxyURL(u)
		return nil
	}
	dialer, err := NewProxyDialer(proxyUrl)
	if err != nil {
		return fmt.Errorf("create proxy dialer: %w", err)
	}
	tr.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		tr.DialContext = cd.DialContext
		return nil
	}
	tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}
	return nil
}
