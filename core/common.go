// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"net/http"

	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/query"
	"codeberg.org/pixivfe/biliapi/core/requests"
)

// get performs an unsigned GET and returns its payload.
func get[T any](ctx context.Context, c *Client, label, url string, params query.Params) (T, error) {
	return requests.Call[T](ctx, c.requests, label, requests.RequestOptions{
		Method: http.MethodGet,
		URL:    url,
		Query:  params,
	})
}

// getSigned performs a wbi-signed GET and returns its payload.
//
// A risk-control rejection drops cached keys, since it is also what the
// server answers after a key rotation.
func getSigned[T any](ctx context.Context, c *Client, label, url string, params query.Params) (T, error) {
	signed, err := c.keys.Sign(ctx, params)
	if err != nil {
		var zero T

		return zero, apierror.WithOp(err, label)
	}

	data, err := get[T](ctx, c, label, url, signed)
	if apiErr, ok := apierror.As(err); ok && apiErr.Kind == apierror.KindAPI && apiErr.Code == apierror.CodeRiskControl {
		c.keys.Invalidate()
	}

	return data, err
}

// post sends form with the CSRF token appended. Without a session or a token
// nothing is sent and an authentication error is returned.
func post(ctx context.Context, c *Client, label, url string, form query.Params) error {
	if err := c.credentials.RequireLogin(); err != nil {
		return apierror.WithOp(err, label)
	}

	csrf, err := c.credentials.CSRF()
	if err != nil {
		return apierror.WithOp(err, label)
	}

	return requests.Exec(ctx, c.requests, label, requests.RequestOptions{
		Method: http.MethodPost,
		URL:    url,
		Form:   form.Clone().Add("csrf", csrf),
	})
}

// requirePositive rejects ids that cannot name anything.
func requirePositive(field string, id int64) error {
	if id <= 0 {
		return apierror.NewInvalidParameter(field, "must be a positive integer")
	}

	return nil
}
