// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"codeberg.org/pixivfe/biliapi/config"
	"codeberg.org/pixivfe/biliapi/core/credential"
	"codeberg.org/pixivfe/biliapi/core/requests"
	"codeberg.org/pixivfe/biliapi/core/ticket"
	"codeberg.org/pixivfe/biliapi/core/wbi"
)

// Client binds the credential store, the HTTP sender and both signers.
// It is safe for concurrent use.
type Client struct {
	credentials *credential.Store
	requests    *requests.Client
	keys        *wbi.KeyStore
	tickets     *ticket.Manager // nil when tickets are disabled
}

// NewClient builds a Client from cfg. A nil cfg means the defaults.
// opts are applied after the options derived from cfg.
func NewClient(cfg *config.ClientConfig, opts ...requests.Option) (*Client, error) {
	if cfg == nil {
		cfg = &config.ClientConfig{}
		cfg.SetDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}

	store := credential.NewStore()
	if cred := cfg.Credential(); !cred.IsZero() {
		store.Set(cred)
	}

	base := requests.NewClient(store, append([]requests.Option{
		requests.WithHTTPClient(requests.NewHTTPClient(cfg.Request.Timeout)),
		requests.WithUserAgentFunc(cfg.UserAgentFunc()),
		requests.WithAcceptLanguage(cfg.Request.AcceptLanguage),
		requests.WithReferer(cfg.Request.Referer),
		requests.WithOrigin(cfg.Request.Origin),
		requests.WithRateLimit(float64(cfg.Request.RateLimit), cfg.Request.RateBurst),
	}, opts...)...)

	c := &Client{credentials: store, requests: base}

	if cfg.Signing.Ticket {
		c.tickets = ticket.NewManager(base,
			ticket.WithRefreshMargin(cfg.Signing.TicketRefreshMargin),
			ticket.OnIssue(c.seedKeys),
		)
		c.requests = base.With(requests.WithCookieSource(c.tickets.CookieSource()))
	}

	keys, err := wbi.NewKeyStore(c.requests, wbi.WithCacheTTL(cfg.Signing.WBIKeyCacheTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create wbi key store: %w", err)
	}

	c.keys = keys

	return c, nil
}

// Credentials returns the store read by every request.
func (c *Client) Credentials() *credential.Store {
	return c.credentials
}

// Requests returns the underlying sender, e.g. for endpoints without a binding.
func (c *Client) Requests() *requests.Client {
	return c.requests
}

// Keys returns the wbi key store.
func (c *Client) Keys() *wbi.KeyStore {
	return c.keys
}

// Tickets returns the ticket manager, or nil when tickets are disabled.
func (c *Client) Tickets() *ticket.Manager {
	return c.tickets
}

// Login replaces the stored credential with the one parsed from a Cookie header.
func (c *Client) Login(cookie string) credential.Credential {
	return c.credentials.SetCookieString(cookie)
}

// Logout forgets the stored credential and the current ticket.
func (c *Client) Logout() {
	c.credentials.Clear()

	if c.tickets != nil {
		c.tickets.Clear()
	}
}

// Prepare fetches the web ticket and the wbi keys concurrently so that the
// first real call does not pay for them.
func (c *Client) Prepare(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	if c.tickets != nil {
		group.Go(func() error {
			_, err := c.tickets.Get(ctx)

			return err
		})
	}

	group.Go(func() error {
		_, err := c.keys.Keys(ctx)

		return err
	})

	return group.Wait()
}

// seedKeys reuses the key hints that come with every issued ticket.
func (c *Client) seedKeys(t ticket.Ticket) {
	if c.keys != nil {
		c.keys.Seed(t.Keys)
	}
}
