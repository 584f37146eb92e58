// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package requests sends API requests and decodes their JSON envelopes.

Every call makes exactly one HTTP round trip and returns either decoded data
or a single *apierror.Error. Retrying is left to the caller.
*/
package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/audit"
	"codeberg.org/pixivfe/biliapi/core/idgen"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
	acceptHeader    = "application/json, text/plain, */*"
)

var errConflictingBody = errors.New("request options set both Form and JSON")

// Send performs the request and decodes the response envelope.
//
// Transport failures yield KindNetwork, non-2xx statuses KindHTTP and
// undecodable bodies KindParse errors. A non-zero envelope code is not an
// error here; see Envelope.IntoData and Call.
func Send[T any](ctx context.Context, c *Client, label string, opts RequestOptions) (*Envelope[T], error) {
	body, err := c.Do(ctx, label, opts)
	if err != nil {
		return nil, err
	}

	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apierror.NewParse(label, err)
	}

	return &env, nil
}

// Call is Send followed by Envelope.IntoData.
func Call[T any](ctx context.Context, c *Client, label string, opts RequestOptions) (T, error) {
	env, err := Send[T](ctx, c, label, opts)
	if err != nil {
		var zero T

		return zero, err
	}

	data, err := env.IntoData()
	if err != nil {
		return data, apierror.WithOp(err, label)
	}

	return data, nil
}

// Exec is Send for calls whose payload is irrelevant, such as most writes.
// Only the envelope code is checked.
func Exec(ctx context.Context, c *Client, label string, opts RequestOptions) error {
	env, err := Send[Opaque](ctx, c, label, opts)
	if err != nil {
		return err
	}

	return apierror.WithOp(env.Err(), label)
}

// Do performs the request and returns the decompressed body of a 2xx response.
func (c *Client) Do(ctx context.Context, label string, opts RequestOptions) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				// The limiter refuses to wait past the context deadline.
				err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
			}

			return nil, apierror.NewNetwork(label, err)
		}
	}

	req, err := c.newRequest(ctx, opts)
	if err != nil {
		return nil, apierror.NewParse(label, err)
	}

	resp, body, err := c.sendRequest(ctx, label, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apierror.NewHTTP(label, resp.StatusCode, httpErrorMessage(resp.StatusCode, body))
	}

	return body, nil
}

// newRequest constructs an *http.Request from RequestOptions.
func (c *Client) newRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	var (
		reqBody     io.Reader
		contentType string
	)

	switch {
	case opts.Form != nil && opts.JSON != nil:
		return nil, errConflictingBody
	case opts.Form != nil:
		reqBody = strings.NewReader(opts.Form.Encode())
		contentType = contentTypeForm
	case opts.JSON != nil:
		b, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON body: %w", err)
		}

		reqBody = strings.NewReader(string(b))
		contentType = contentTypeJSON
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if reqBody != nil {
			method = http.MethodPost
		}
	}

	target := opts.URL
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}

		target += sep + opts.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("Referer", c.referer)

	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set("Origin", c.origin)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for name, values := range opts.Headers {
		req.Header.Del(name)

		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	if !opts.NoCookies {
		for _, ck := range c.credentials.Cookies() {
			req.AddCookie(ck)
		}

		for _, src := range c.cookieSources {
			for _, ck := range src(ctx) {
				req.AddCookie(ck)
			}
		}
	}

	return req, nil
}

// sendRequest executes the HTTP request and reads the whole (decompressed) body.
// Returned errors are already *apierror.Error values.
func (c *Client) sendRequest(
	ctx context.Context,
	label string,
	req *http.Request,
) (_ *http.Response, _ []byte, err error) {
	span := audit.Span{
		Destination: audit.ToBilibili,
		RequestID:   idgen.ForRequest(ctx),
		Label:       label,
		Method:      req.Method,
		URL:         req.URL.String(),
	}

	_ = span.Begin(ctx)

	defer func() {
		span.Error = err
		span.End()
		span.Log()
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, apierror.NewNetwork(label, err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	encoding := resp.Header.Get("Content-Encoding")

	reader, err := decodeBody(encoding, resp.Body)
	if err != nil {
		return nil, nil, readError(label, encoding, err)
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, readError(label, encoding, err)
	}

	span.Body = body

	return resp, body, nil
}

// readError classifies a failure while reading the body. Failures of the
// connection are network errors; a corrupt compressed stream is a parse error.
func readError(label, encoding string, err error) error {
	var netErr net.Error

	identity := encoding == "" || strings.EqualFold(encoding, "identity")
	if identity || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apierror.NewNetwork(label, fmt.Errorf("failed to read response body: %w", err))
	}

	return apierror.NewParse(label, fmt.Errorf("failed to decode %s response body: %w", encoding, err))
}

// httpErrorMessage extracts a message from an error response body, falling
// back to the status text.
func httpErrorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		result := gjson.ParseBytes(body)

		for _, field := range []string{"message", "msg"} {
			if message := result.Get(field).String(); message != "" {
				return message
			}
		}
	}

	return http.StatusText(status)
}
