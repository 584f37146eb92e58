// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package credential

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/biliapi/core/apierror"
)

func TestCSRF(t *testing.T) {
	t.Parallel()

	t.Run("BeforeSet", func(t *testing.T) {
		t.Parallel()

		_, err := NewStore().CSRF()
		require.ErrorIs(t, err, apierror.ErrMissingCSRF)

		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, apierror.KindAuthentication, apiErr.Kind)
	})

	t.Run("AfterSet", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.Set(Credential{SESSDATA: "sess", BiliJct: "token"})

		csrf, err := s.CSRF()
		require.NoError(t, err)
		assert.Equal(t, "token", csrf)
	})

	t.Run("EmptyToken", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.Set(Credential{SESSDATA: "sess"})

		_, err := s.CSRF()
		assert.ErrorIs(t, err, apierror.ErrMissingCSRF)
	})

	t.Run("AfterClear", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.Set(Credential{BiliJct: "token"})
		s.Clear()

		_, err := s.CSRF()
		assert.ErrorIs(t, err, apierror.ErrMissingCSRF)
	})
}

func TestParseCookieString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		raw      string
		expected Credential
	}{
		{"Unrecognised", "a=1; b=2", Credential{}},
		{"Empty", "", Credential{}},
		{
			"Full",
			"SESSDATA=abc%2C1700000000%2Cdef*11; bili_jct=0123; DedeUserID=42; DedeUserID__ckMd5=ff; buvid3=B3; buvid4=B4",
			Credential{
				SESSDATA:        "abc%2C1700000000%2Cdef*11",
				BiliJct:         "0123",
				DedeUserID:      "42",
				DedeUserIDCkMd5: "ff",
				Buvid3:          "B3",
				Buvid4:          "B4",
			},
		},
		{"Messy", ` ; novalue;bili_jct="q" ;  SESSDATA = s ;x=`, Credential{BiliJct: "q", SESSDATA: "s"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, ParseCookieString(tc.raw))
		})
	}
}

func TestSetCookieString(t *testing.T) {
	t.Parallel()

	s := NewStore()
	assert.False(t, s.IsLoggedIn())
	require.ErrorIs(t, s.RequireLogin(), apierror.ErrNotLoggedIn)

	s.SetCookieString("SESSDATA=x; bili_jct=y; buvid3=device")

	assert.True(t, s.IsLoggedIn())
	require.NoError(t, s.RequireLogin())
	assert.Equal(t, "device", s.DeviceID())

	snapshot, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "y", snapshot.BiliJct)
}

func TestCookiesAlwaysCarryDeviceID(t *testing.T) {
	t.Parallel()

	s := NewStore()

	cookies := s.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "buvid3", cookies[0].Name)
	assert.Equal(t, s.DeviceID(), cookies[0].Value)

	s.Set(Credential{SESSDATA: "x", BiliJct: "y"})

	names := make([]string, 0, 3)
	for _, c := range s.Cookies() {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"SESSDATA", "bili_jct", "buvid3"}, names)
}

func TestGenerateDeviceID(t *testing.T) {
	t.Parallel()

	id := GenerateDeviceID(time.UnixMilli(1700000012345))

	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}12345infoc$`), id)
	assert.NotEqual(t, NewStore().DeviceID(), NewStore().DeviceID(), "stores do not share device ids")
}

func TestConcurrentReadersSeeWholeCredentials(t *testing.T) {
	t.Parallel()

	s := NewStore()
	a := Credential{SESSDATA: "a", BiliJct: "a"}
	b := Credential{SESSDATA: "b", BiliJct: "b"}

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range 500 {
				if (i+j)%2 == 0 {
					s.Set(a)
				} else {
					s.Set(b)
				}

				if c, ok := s.Snapshot(); ok {
					assert.Equal(t, c.SESSDATA, c.BiliJct)
				}
			}
		}()
	}

	wg.Wait()
}
