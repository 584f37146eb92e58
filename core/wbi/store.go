// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package wbi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/query"
	"codeberg.org/pixivfe/biliapi/core/requests"
	"codeberg.org/pixivfe/biliapi/core/requests/lrucache"
)

// NavURL publishes the current keys in data.wbi_img. It answers with code
// -101 for anonymous sessions but still includes the keys.
const NavURL = "https://api.bilibili.com/x/web-interface/nav"

// MaxCacheTTL keeps cached keys safely inside the daily rotation.
const MaxCacheTTL = 12 * time.Hour

const (
	cacheKey     = "wbi_keys"
	fetchLabel   = "wbi keys"
	cacheEntries = 1
)

var errKeysMissing = errors.New("nav response has no wbi_img keys")

// KeySource supplies signing keys.
type KeySource interface {
	Keys(ctx context.Context) (Keys, error)
}

// KeyStore fetches keys from the nav endpoint.
//
// Without a cache every call to Keys performs a fetch; concurrent fetches are
// merged into one request either way.
type KeyStore struct {
	client *requests.Client
	navURL string
	now    func() time.Time

	cache *lrucache.Cache // nil when caching is disabled
	group singleflight.Group
}

// StoreOption configures a KeyStore.
type StoreOption func(*KeyStore) error

// WithCacheTTL caches fetched keys for ttl, capped at MaxCacheTTL.
// A non-positive ttl disables caching.
func WithCacheTTL(ttl time.Duration) StoreOption {
	return func(s *KeyStore) error {
		if ttl <= 0 {
			s.cache = nil

			return nil
		}

		cache, err := lrucache.New(cacheEntries, lrucache.WithTTL(min(ttl, MaxCacheTTL)), lrucache.WithClock(s.clock))
		if err != nil {
			return err
		}

		s.cache = cache

		return nil
	}
}

// WithNavURL overrides NavURL.
func WithNavURL(u string) StoreOption {
	return func(s *KeyStore) error {
		s.navURL = u

		return nil
	}
}

// WithClock replaces time.Now for signing timestamps and cache expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *KeyStore) error {
		s.now = now

		return nil
	}
}

// NewKeyStore returns a KeyStore fetching through client.
func NewKeyStore(client *requests.Client, opts ...StoreOption) (*KeyStore, error) {
	s := &KeyStore{
		client: client,
		navURL: NavURL,
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// clock defers to s.now so that WithClock may follow WithCacheTTL.
func (s *KeyStore) clock() time.Time {
	return s.now()
}

// Keys returns cached keys when available, otherwise fetches them.
func (s *KeyStore) Keys(ctx context.Context) (Keys, error) {
	if keys, ok := s.cached(); ok {
		return keys, nil
	}

	// The fetch outlives a canceled caller so that others sharing it still
	// get a result; the HTTP client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)

	ch := s.group.DoChan(cacheKey, func() (any, error) {
		keys, err := s.fetch(fetchCtx)
		if err != nil {
			return Keys{}, err
		}

		s.Seed(keys)

		return keys, nil
	})

	select {
	case <-ctx.Done():
		return Keys{}, apierror.NewNetwork(fetchLabel, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Keys{}, res.Err
		}

		log.Debug().
			Bool("shared", res.Shared).
			Msg("Fetched wbi keys")

		return res.Val.(Keys), nil
	}
}

// Seed stores keys obtained elsewhere, e.g. from an issued ticket.
// Invalid keys are ignored. It is a no-op when caching is disabled.
func (s *KeyStore) Seed(keys Keys) {
	if s.cache == nil || keys.Validate() != nil {
		return
	}

	b, err := json.Marshal(keys)
	if err != nil {
		return
	}

	s.cache.Add(cacheKey, b)
}

// Invalidate drops cached keys, e.g. after the server rejected a signature.
func (s *KeyStore) Invalidate() {
	if s.cache != nil {
		s.cache.Remove(cacheKey)
	}
}

// Sign signs params with the current keys and clock.
func (s *KeyStore) Sign(ctx context.Context, params query.Params) (query.Params, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	return Sign(params, keys, s.now())
}

func (s *KeyStore) cached() (Keys, bool) {
	if s.cache == nil {
		return Keys{}, false
	}

	b, ok := s.cache.Get(cacheKey)
	if !ok {
		return Keys{}, false
	}

	var keys Keys
	if err := json.Unmarshal(b, &keys); err != nil {
		s.cache.Remove(cacheKey)

		return Keys{}, false
	}

	return keys, true
}

func (s *KeyStore) fetch(ctx context.Context) (Keys, error) {
	env, err := requests.Send[requests.Opaque](ctx, s.client, fetchLabel, requests.RequestOptions{
		Method: http.MethodGet,
		URL:    s.navURL,
	})
	if err != nil {
		return Keys{}, err
	}

	if env.Code != apierror.CodeOK && env.Code != apierror.CodeNotLoggedIn {
		_, err := env.IntoData()

		return Keys{}, apierror.WithOp(err, fetchLabel)
	}

	keys := Keys{
		ImgKey: KeyFromURL(env.RawData.Get("wbi_img.img_url").String()),
		SubKey: KeyFromURL(env.RawData.Get("wbi_img.sub_url").String()),
	}

	if keys.ImgKey == "" || keys.SubKey == "" {
		return Keys{}, apierror.NewParse(fetchLabel, errKeysMissing)
	}

	if err := keys.Validate(); err != nil {
		return Keys{}, apierror.WithOp(err, fetchLabel)
	}

	return keys, nil
}
