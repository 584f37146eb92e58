// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package apierror

// Category groups failures by why they happened.
type Category int

// Possible Category values.
const (
	CategoryUnknown  Category = iota // Not in the table
	CategoryAuth                     // Session missing, expired or rejected
	CategoryBusiness                 // Rejected by a business rule
	CategoryRequest                  // Malformed or refused request
	CategoryServer                   // Upstream overload or fault
	CategoryNetwork                  // Transport failure, never produced by the table
)

func (c Category) String() string {
	switch c {
	case CategoryAuth:
		return "auth"
	case CategoryBusiness:
		return "business"
	case CategoryRequest:
		return "request"
	case CategoryServer:
		return "server"
	case CategoryNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Retryable reports whether repeating the same call later may succeed.
func (c Category) Retryable() bool {
	return c == CategoryServer || c == CategoryNetwork
}

// NeedsReauth reports whether the caller should replace its credential
// instead of retrying.
func (c Category) NeedsReauth() bool {
	return c == CategoryAuth
}
