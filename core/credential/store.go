// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package credential

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/biliapi/core/apierror"
)

// Store is a concurrency-safe holder for one Credential.
//
// The zero value is not usable; create stores with NewStore.
type Store struct {
	current atomic.Pointer[Credential]

	// deviceID stands in for buvid3 when the credential has none.
	deviceID string
}

// NewStore returns an empty store with a freshly generated fallback device id.
func NewStore() *Store {
	return &Store{deviceID: GenerateDeviceID(time.Now())}
}

// Set replaces the stored credential wholesale.
func (s *Store) Set(c Credential) {
	s.current.Store(&c)

	log.Debug().
		Object("credential", c).
		Msg("Credential replaced")
}

// SetCookieString parses raw with ParseCookieString, stores the result and
// returns it.
func (s *Store) SetCookieString(raw string) Credential {
	c := ParseCookieString(raw)
	s.Set(c)

	return c
}

// Clear removes the stored credential.
func (s *Store) Clear() {
	s.current.Store(nil)

	log.Debug().Msg("Credential cleared")
}

// Snapshot returns a copy of the stored credential and whether one is set.
func (s *Store) Snapshot() (Credential, bool) {
	c := s.current.Load()
	if c == nil {
		return Credential{}, false
	}

	return *c, true
}

// CSRF returns the bili_jct token required by mutating calls.
//
// It fails with an authentication error wrapping apierror.ErrMissingCSRF when
// no credential is set or the token is empty.
func (s *Store) CSRF() (string, error) {
	c, ok := s.Snapshot()
	if !ok || c.BiliJct == "" {
		return "", apierror.NewAuthentication(apierror.ErrMissingCSRF)
	}

	return c.BiliJct, nil
}

// RequireLogin fails with an authentication error wrapping
// apierror.ErrNotLoggedIn when the stored credential has no session.
func (s *Store) RequireLogin() error {
	if !s.IsLoggedIn() {
		return apierror.NewAuthentication(apierror.ErrNotLoggedIn)
	}

	return nil
}

// IsLoggedIn reports whether the stored credential carries a session id.
// It does not contact the server.
func (s *Store) IsLoggedIn() bool {
	c, ok := s.Snapshot()

	return ok && c.HasSession()
}

// DeviceID returns buvid3 from the stored credential, or the store's
// generated fallback.
func (s *Store) DeviceID() string {
	if c, ok := s.Snapshot(); ok && c.Buvid3 != "" {
		return c.Buvid3
	}

	return s.deviceID
}

// Cookies returns the cookies to attach to a request.
// A buvid3 cookie is always present.
func (s *Store) Cookies() []*http.Cookie {
	c, _ := s.Snapshot()
	if c.Buvid3 == "" {
		c.Buvid3 = s.deviceID
	}

	return c.Cookies()
}

// GenerateDeviceID returns a buvid3-style identifier: an upper-case UUID
// followed by five digits derived from t and the literal "infoc".
func GenerateDeviceID(t time.Time) string {
	return fmt.Sprintf("%s%05dinfoc", strings.ToUpper(uuid.NewString()), t.UnixMilli()%100000)
}
