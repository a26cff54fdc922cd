// Package transport provides HTTP clients for upstream calls,
// optionally dialing through a proxy.
package transport

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"golang.org/x/net/proxy"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/keybroker", "transport")

// Transport timeouts.
// There is no client timeout, response bodies may be streamed.
const (
	DialTimeout           = 30 * time.Second
	KeepAlive             = 30 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ResponseHeaderTimeout = 60 * time.Second
	IdleConnTimeout       = 90 * time.Second
	ExpectContinueTimeout = 1 * time.Second
)

var (
	clients     = make(map[string]*http.Client)
	clientsLock sync.RWMutex
)

// NewHTTPClient returns HTTP client for the proxy URL, empty URL means direct connection.
// Supported schemes: http, https, socks5.
// Clients are cached by proxy URL to reuse connections.
func NewHTTPClient(proxyURL string) (*http.Client, error) {
	key := strings.TrimSpace(proxyURL)

	clientsLock.RLock()
	c, ok := clients[key]
	clientsLock.RUnlock()
	if ok {
		return c, nil
	}

	tr, err := buildTransport(key)
	if err != nil {
		return nil, err
	}

	clientsLock.Lock()
	defer clientsLock.Unlock()
	if c, ok = clients[key]; ok {
		return c, nil
	}
	c = &http.Client{Transport: tr}
	clients[key] = c

	if key != "" {
		logger.KV(xlog.DEBUG,
			"status", "proxy_client",
			"proxy", redact(key))
	}
	return c, nil
}

func buildTransport(proxyURL string) (*http.Transport, error) {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   DialTimeout,
			KeepAlive: KeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ResponseHeaderTimeout: ResponseHeaderTimeout,
		IdleConnTimeout:       IdleConnTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
	}
	if proxyURL == "" {
		return tr, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid proxy URL")
	}
	if u.Host == "" {
		return nil, errors.Errorf("invalid proxy URL: missing host")
	}

	switch u.Scheme {
	case "http", "https":
		tr.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, &net.Dialer{
			Timeout:   DialTimeout,
			KeepAlive: KeepAlive,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create SOCKS5 dialer")
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			tr.DialContext = cd.DialContext
		} else {
			tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, errors.Errorf("unsupported proxy scheme: %q", u.Scheme)
	}
	return tr, nil
}

func redact(proxyURL string) string {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return ""
	}
	return u.Redacted()
}
