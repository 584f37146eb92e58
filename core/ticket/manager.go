// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package ticket

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/requests"
)

// DefaultRefreshMargin renews tickets this long before they expire.
const DefaultRefreshMargin = time.Hour

// Manager caches one ticket per client and renews it on demand.
// There is no background refresh.
type Manager struct {
	client *requests.Client
	margin time.Duration
	now    func() time.Time
	hooks  []func(Ticket)

	current atomic.Pointer[Ticket]
	group   singleflight.Group
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRefreshMargin sets how long before expiry a ticket is considered stale.
func WithRefreshMargin(margin time.Duration) ManagerOption {
	return func(m *Manager) {
		if margin >= 0 {
			m.margin = margin
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// OnIssue registers fn to run after every successful issuance.
func OnIssue(fn func(Ticket)) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.hooks = append(m.hooks, fn)
		}
	}
}

// NewManager returns a Manager issuing tickets through client. The CSRF
// token, when present, is read from the client's credential store.
func NewManager(client *requests.Client, opts ...ManagerOption) *Manager {
	m := &Manager{
		client: client,
		margin: DefaultRefreshMargin,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Get returns the cached ticket while it is fresh and issues one otherwise.
func (m *Manager) Get(ctx context.Context) (Ticket, error) {
	if t, ok := m.Cached(); ok {
		return t, nil
	}

	return m.Refresh(ctx)
}

// Refresh issues a new ticket unconditionally. Concurrent calls share one
// request, which keeps running when the caller that started it gives up.
func (m *Manager) Refresh(ctx context.Context) (Ticket, error) {
	issueCtx := context.WithoutCancel(ctx)

	ch := m.group.DoChan("ticket", func() (any, error) {
		// An empty CSRF token is accepted for anonymous sessions.
		csrf, _ := m.client.Credentials().CSRF()

		t, err := Issue(issueCtx, m.client, csrf, m.now())
		if err != nil {
			return Ticket{}, err
		}

		m.current.Store(&t)

		log.Debug().
			Time("expires_at", t.ExpiresAt()).
			Msg("Issued web ticket")

		for _, hook := range m.hooks {
			hook(t)
		}

		return t, nil
	})

	select {
	case <-ctx.Done():
		return Ticket{}, apierror.NewNetwork(issueLabel, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Ticket{}, res.Err
		}

		return res.Val.(Ticket), nil
	}
}

// Cached returns the current ticket if it is still fresh.
func (m *Manager) Cached() (Ticket, bool) {
	t := m.current.Load()
	if t == nil || !m.now().Before(t.ExpiresAt().Add(-m.margin)) {
		return Ticket{}, false
	}

	return *t, true
}

// Clear forgets the cached ticket.
func (m *Manager) Clear() {
	m.current.Store(nil)
}

// CookieSource attaches the cached ticket to requests without ever issuing one.
func (m *Manager) CookieSource() requests.CookieSource {
	return func(context.Context) []*http.Cookie {
		if t, ok := m.Cached(); ok {
			return t.Cookies()
		}

		return nil
	}
}
