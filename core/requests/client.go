// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"codeberg.org/pixivfe/biliapi/core/credential"
)

// Default header values.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
	DefaultReferer        = "https://www.bilibili.com/"
	DefaultOrigin         = "https://www.bilibili.com"
	DefaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// CookieSource supplies extra cookies per request, e.g. an issued ticket.
// It must not block for long and must be safe for concurrent use.
type CookieSource func(ctx context.Context) []*http.Cookie

// Client is the single chokepoint for API traffic.
//
// It is safe for concurrent use. It reads but never modifies its
// credential store.
type Client struct {
	http           *http.Client
	credentials    *credential.Store
	userAgent      func() string
	referer        string
	origin         string
	acceptLanguage string
	limiter        *rate.Limiter
	cookieSources  []CookieSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the tuned default from NewHTTPClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets a fixed User-Agent. An empty value keeps the default.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = func() string { return ua }
		}
	}
}

// WithUserAgentFunc picks the User-Agent per request.
func WithUserAgentFunc(pick func() string) Option {
	return func(c *Client) {
		if pick != nil {
			c.userAgent = pick
		}
	}
}

// WithReferer sets the Referer header. An empty value keeps the default.
func WithReferer(referer string) Option {
	return func(c *Client) {
		if referer != "" {
			c.referer = referer
		}
	}
}

// WithOrigin sets the Origin header sent with POST requests.
func WithOrigin(origin string) Option {
	return func(c *Client) {
		if origin != "" {
			c.origin = origin
		}
	}
}

// WithAcceptLanguage sets the Accept-Language header.
func WithAcceptLanguage(value string) Option {
	return func(c *Client) {
		if value != "" {
			c.acceptLanguage = value
		}
	}
}

// WithRateLimit spaces requests to at most r per second with the given burst.
// A non-positive r disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil

			return
		}

		c.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// WithCookieSource adds cookies to every request that carries cookies.
func WithCookieSource(src CookieSource) Option {
	return func(c *Client) {
		if src != nil {
			c.cookieSources = append(c.cookieSources, src)
		}
	}
}

// NewClient returns a Client reading credentials from store.
// A nil store is replaced by an empty one.
func NewClient(store *credential.Store, opts ...Option) *Client {
	if store == nil {
		store = credential.NewStore()
	}

	c := &Client{
		http:           NewHTTPClient(DefaultTimeout),
		credentials:    store,
		userAgent:      func() string { return DefaultUserAgent },
		referer:        DefaultReferer,
		origin:         DefaultOrigin,
		acceptLanguage: DefaultAcceptLanguage,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Credentials returns the store the client reads from.
func (c *Client) Credentials() *credential.Store {
	return c.credentials
}

// With returns a copy of c with opts applied on top. The copy shares the
// credential store, the HTTP client and the rate limiter.
func (c *Client) With(opts ...Option) *Client {
	clone := *c
	clone.cookieSources = append([]CookieSource(nil), c.cookieSources...)

	for _, opt := range opts {
		opt(&clone)
	}

	return &clone
}
