// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/credential"
	"codeberg.org/pixivfe/biliapi/core/query"
)

// roundTripFunc is a canned transport.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func cannedClient(status int, body string) *Client {
	return NewClient(nil, WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Header:     http.Header{"Content-Type": {"application/json"}},
				Body:       io.NopCloser(strings.NewReader(body)),
				Request:    r,
			}, nil
		}),
	}))
}

func kindOf(t *testing.T, err error) *apierror.Error {
	t.Helper()

	apiErr, ok := apierror.As(err)
	require.True(t, ok, "expected *apierror.Error, got %T: %v", err, err)

	return apiErr
}

func TestCall(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		data, err := Call[item](t.Context(), cannedClient(http.StatusOK, `{"code":0,"message":"","data":{"id":42}}`),
			"get item", RequestOptions{URL: "https://api.bilibili.com/x/item"})
		require.NoError(t, err)
		assert.Equal(t, 42, data.ID)
	})

	t.Run("CSRFFailure", func(t *testing.T) {
		t.Parallel()

		_, err := Call[item](t.Context(), cannedClient(http.StatusOK, `{"code":-111,"message":"csrf 校验失败"}`),
			"like", RequestOptions{Method: http.MethodPost, URL: "https://api.bilibili.com/x/like"})

		apiErr := kindOf(t, err)
		assert.Equal(t, apierror.KindAPI, apiErr.Kind)
		assert.Equal(t, -111, apiErr.Code)
		assert.Equal(t, apierror.CategoryAuth, apiErr.Category)
		assert.Equal(t, "csrf 校验失败", apiErr.Message)
		assert.Equal(t, "like", apiErr.Op)
	})

	t.Run("HTTPErrorWithMessage", func(t *testing.T) {
		t.Parallel()

		_, err := Call[item](t.Context(), cannedClient(http.StatusInternalServerError, `{"code":-500,"message":"boom"}`),
			"get item", RequestOptions{URL: "https://api.bilibili.com/x/item"})

		apiErr := kindOf(t, err)
		assert.Equal(t, apierror.KindHTTP, apiErr.Kind)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "boom", apiErr.Message)
		assert.True(t, apiErr.Retryable())
	})

	t.Run("HTTPErrorWithoutJSON", func(t *testing.T) {
		t.Parallel()

		_, err := Call[item](t.Context(), cannedClient(http.StatusForbidden, `<html>nope</html>`),
			"get item", RequestOptions{URL: "https://api.bilibili.com/x/item"})

		apiErr := kindOf(t, err)
		assert.Equal(t, apierror.KindHTTP, apiErr.Kind)
		assert.Equal(t, "Forbidden", apiErr.Message)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		t.Parallel()

		_, err := Call[item](t.Context(), cannedClient(http.StatusOK, `{"code":0,"data":`),
			"get item", RequestOptions{URL: "https://api.bilibili.com/x/item"})

		assert.Equal(t, apierror.KindParse, kindOf(t, err).Kind)
	})

	t.Run("BadURL", func(t *testing.T) {
		t.Parallel()

		_, err := Call[item](t.Context(), cannedClient(http.StatusOK, `{}`), "get item", RequestOptions{URL: "://bad"})

		assert.Equal(t, apierror.KindParse, kindOf(t, err).Kind)
	})
}

func TestExec(t *testing.T) {
	t.Parallel()

	opts := RequestOptions{Method: http.MethodPost, URL: "https://api.bilibili.com/x/like"}

	// Writes usually answer with a null or absent payload.
	require.NoError(t, Exec(t.Context(), cannedClient(http.StatusOK, `{"code":0,"message":"0","ttl":1}`), "like", opts))
	require.NoError(t, Exec(t.Context(), cannedClient(http.StatusOK, `{"code":0,"data":null}`), "like", opts))

	err := Exec(t.Context(), cannedClient(http.StatusOK, `{"code":65006,"message":"已赞过"}`), "like", opts)

	apiErr := kindOf(t, err)
	assert.Equal(t, apierror.KindAPI, apiErr.Kind)
	assert.Equal(t, 65006, apiErr.Code)
	assert.Equal(t, "like", apiErr.Op)
}

func TestSendTransportFailures(t *testing.T) {
	t.Parallel()

	t.Run("ConnectionRefused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		target := server.URL
		server.Close()

		_, err := Send[item](t.Context(), NewClient(nil), "nav", RequestOptions{URL: target})

		apiErr := kindOf(t, err)
		assert.Equal(t, apierror.KindNetwork, apiErr.Kind)
		assert.Equal(t, apierror.ReasonConnect, apiErr.Reason)
	})

	t.Run("Timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()

		hc := &http.Client{Timeout: 50 * time.Millisecond}
		_, err := Send[item](t.Context(), NewClient(nil, WithHTTPClient(hc)), "nav", RequestOptions{URL: server.URL})

		apiErr := kindOf(t, err)
		assert.Equal(t, apierror.KindNetwork, apiErr.Kind)
		assert.Equal(t, apierror.ReasonTimeout, apiErr.Reason)
		assert.True(t, apiErr.Retryable())
	})

	t.Run("CanceledWhileRateLimited", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		c := cannedClient(http.StatusOK, `{"code":0,"data":{"id":1}}`)
		WithRateLimit(1, 1)(c)

		_, err := Send[item](ctx, c, "nav", RequestOptions{URL: "https://api.bilibili.com/x/item"})

		apiErr := kindOf(t, err)
		assert.Equal(t, apierror.KindNetwork, apiErr.Kind)
		assert.Equal(t, apierror.ReasonCanceled, apiErr.Reason)
	})
}

func TestRequestShape(t *testing.T) {
	t.Parallel()

	var captured atomic.Pointer[http.Request]

	var capturedBody atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		capturedBody.Store(string(body))
		captured.Store(r)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"data":{"id":1}}`))
	}))
	defer server.Close()

	store := credential.NewStore()
	store.Set(credential.Credential{SESSDATA: "sess", BiliJct: "jct", Buvid3: "dev"})

	ticketSource := func(context.Context) []*http.Cookie {
		return []*http.Cookie{{Name: "bili_ticket", Value: "tkt"}}
	}

	c := NewClient(store, WithUserAgent("test-agent"), WithCookieSource(ticketSource))

	t.Run("GET", func(t *testing.T) {
		_, err := Call[item](t.Context(), c, "get", RequestOptions{
			URL:   server.URL + "/x/item?fixed=1",
			Query: query.New("mid", "2", "keyword", "a b"),
		})
		require.NoError(t, err)

		r := captured.Load()
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "fixed=1&mid=2&keyword=a%20b", r.URL.RawQuery)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, DefaultReferer, r.Header.Get("Referer"))
		assert.Empty(t, r.Header.Get("Origin"))

		for name, value := range map[string]string{"SESSDATA": "sess", "bili_jct": "jct", "buvid3": "dev", "bili_ticket": "tkt"} {
			ck, err := r.Cookie(name)
			require.NoError(t, err, name)
			assert.Equal(t, value, ck.Value)
		}
	})

	t.Run("POSTForm", func(t *testing.T) {
		_, err := Call[item](t.Context(), c, "post", RequestOptions{
			URL:     server.URL + "/x/like",
			Form:    query.New("aid", "1", "csrf", "jct"),
			Headers: http.Header{"Referer": {"https://space.bilibili.com/"}},
		})
		require.NoError(t, err)

		r := captured.Load()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, contentTypeForm, r.Header.Get("Content-Type"))
		assert.Equal(t, DefaultOrigin, r.Header.Get("Origin"))
		assert.Equal(t, "https://space.bilibili.com/", r.Header.Get("Referer"))
		assert.Equal(t, "aid=1&csrf=jct", capturedBody.Load())
	})

	t.Run("POSTJSONWithoutCookies", func(t *testing.T) {
		_, err := Call[item](t.Context(), c, "post", RequestOptions{
			URL:       server.URL + "/x/json",
			JSON:      map[string]int{"a": 1},
			NoCookies: true,
		})
		require.NoError(t, err)

		r := captured.Load()
		assert.Equal(t, contentTypeJSON, r.Header.Get("Content-Type"))
		assert.Empty(t, r.Cookies())
		assert.JSONEq(t, `{"a":1}`, capturedBody.Load().(string))
	})

	t.Run("ConflictingBody", func(t *testing.T) {
		_, err := Call[item](t.Context(), c, "post", RequestOptions{
			URL:  server.URL,
			Form: query.New("a", "1"),
			JSON: map[string]int{"a": 1},
		})
		require.ErrorIs(t, err, errConflictingBody)
	})
}

func TestContentEncodings(t *testing.T) {
	t.Parallel()

	const payload = `{"code":0,"message":"0","data":{"id":99}}`

	encoders := map[string]func(*testing.T) []byte{
		"gzip": func(t *testing.T) []byte {
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			_, _ = w.Write([]byte(payload))
			require.NoError(t, w.Close())

			return buf.Bytes()
		},
		"deflate": func(t *testing.T) []byte {
			var buf bytes.Buffer
			w := zlib.NewWriter(&buf)
			_, _ = w.Write([]byte(payload))
			require.NoError(t, w.Close())

			return buf.Bytes()
		},
		"br": func(t *testing.T) []byte {
			var buf bytes.Buffer
			w := brotli.NewWriter(&buf)
			_, _ = w.Write([]byte(payload))
			require.NoError(t, w.Close())

			return buf.Bytes()
		},
		"zstd": func(t *testing.T) []byte {
			enc, err := zstd.NewWriter(nil)
			require.NoError(t, err)

			return enc.EncodeAll([]byte(payload), nil)
		},
	}

	for encoding, encode := range encoders {
		t.Run(encoding, func(t *testing.T) {
			t.Parallel()

			body := encode(t)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, acceptEncoding, r.Header.Get("Accept-Encoding"))
				w.Header().Set("Content-Encoding", encoding)
				_, _ = w.Write(body)
			}))
			defer server.Close()

			data, err := Call[item](t.Context(), NewClient(nil), "encoded", RequestOptions{URL: server.URL})
			require.NoError(t, err)
			assert.Equal(t, 99, data.ID)
		})
	}

	t.Run("CorruptGzip", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = w.Write([]byte("definitely not gzip"))
		}))
		defer server.Close()

		_, err := Call[item](t.Context(), NewClient(nil), "encoded", RequestOptions{URL: server.URL})
		assert.Equal(t, apierror.KindParse, kindOf(t, err).Kind)
	})

	t.Run("RawDeflate", func(t *testing.T) {
		t.Parallel()

		assert.False(t, isZlibHeader('{', '"'))
		assert.True(t, isZlibHeader(0x78, 0x9c))
	})
}
