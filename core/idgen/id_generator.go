// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package idgen

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"codeberg.org/pixivfe/biliapi/core/audit"
)

// Make makes a short ID with a 6 byte timestamp and 3 bytes of entropy.
func Make() string {
	return makeAt(time.Now())
}

// ForRequest makes an ID for an outgoing request, prefixed with the parent
// id carried by ctx when there is one.
func ForRequest(ctx context.Context) string {
	id := Make()

	if parent := audit.RequestIDFromContext(ctx); parent != "" {
		return parent + "-" + id
	}

	return id
}

func makeAt(t time.Time) string {
	entropy := [3]byte{'a', 'a', 'a'} // used as is if the system RNG fails

	_, _ = rand.Read(entropy[:])

	return maketime(t) + base64.RawURLEncoding.EncodeToString(entropy[:])
}

func maketime(t time.Time) string {
	return t.Format("150405")
}
