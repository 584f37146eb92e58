// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package apierror

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
)

// Kind discriminates the variants of Error.
type Kind int

// Possible Kind values.
const (
	KindNetwork          Kind = iota + 1 // Transport failure: timeout, DNS, connect, TLS
	KindHTTP                             // Status code outside the JSON envelope contract
	KindParse                            // Body or internal data did not have the expected shape
	KindAPI                              // Well-formed envelope with a non-zero code
	KindAuthentication                   // Caller-side login precondition failed before sending
	KindInvalidParameter                 // Caller-side input validation failed before sending
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindAPI:
		return "api"
	case KindAuthentication:
		return "authentication"
	case KindInvalidParameter:
		return "invalid parameter"
	default:
		return "unknown"
	}
}

// NetworkReason refines KindNetwork errors.
type NetworkReason int

// Possible NetworkReason values.
const (
	ReasonOther NetworkReason = iota
	ReasonTimeout
	ReasonConnect
	ReasonTLS
	ReasonCanceled
)

func (r NetworkReason) String() string {
	switch r {
	case ReasonTimeout:
		return "request timed out"
	case ReasonConnect:
		return "could not connect"
	case ReasonTLS:
		return "TLS handshake failed"
	case ReasonCanceled:
		return "request canceled"
	default:
		return "transport failure"
	}
}

// Sentinel causes carried in Error.Err; match them with errors.Is.
var (
	ErrMissingData = errors.New("response envelope carried no data")
	ErrMissingCSRF = errors.New("csrf token is missing; set a credential containing bili_jct")
	ErrNotLoggedIn = errors.New("no credential with a session is set")
)

// Error is the only error type returned by API calls.
type Error struct {
	Kind Kind

	// Op is the human-readable operation label passed to the sender.
	// It is informational only.
	Op string

	// StatusCode is set for KindHTTP.
	StatusCode int

	// Code, Message and Category are set for KindAPI.
	// Message is also used by KindHTTP and KindInvalidParameter.
	Code     int
	Message  string
	Category Category

	// Field names the offending input for KindInvalidParameter.
	Field string

	// Reason refines KindNetwork.
	Reason NetworkReason

	// Err is the underlying cause, if any.
	Err error
}

// Error returns a single-line description prefixed by the operation label.
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	switch e.Kind {
	case KindNetwork:
		b.WriteString("network error: ")
		b.WriteString(e.Reason.String())
	case KindHTTP:
		fmt.Fprintf(&b, "unexpected HTTP status %d", e.StatusCode)

		if e.Message != "" {
			b.WriteString(": ")
			b.WriteString(e.Message)
		}
	case KindParse:
		b.WriteString("malformed data")
	case KindAPI:
		fmt.Fprintf(&b, "API error %d (%s): %s", e.Code, e.Category, e.Message)
	case KindAuthentication:
		b.WriteString("authentication required")
	case KindInvalidParameter:
		fmt.Fprintf(&b, "invalid parameter %q: %s", e.Field, e.Message)
	default:
		b.WriteString("unknown error")
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same call may succeed later.
func (e *Error) Retryable() bool {
	return CategoryOf(e).Retryable()
}

// NewNetwork wraps a transport failure, deriving Reason from err.
func NewNetwork(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Reason: reasonOf(err), Category: CategoryNetwork, Err: err}
}

// NewHTTP reports a status code outside the 2xx range.
func NewHTTP(op string, statusCode int, message string) *Error {
	return &Error{Kind: KindHTTP, Op: op, StatusCode: statusCode, Message: message}
}

// NewParse reports a body or internal value with an unexpected shape.
func NewParse(op string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Err: err}
}

// NewAPI builds the error for a non-zero envelope code.
//
// The server-supplied message wins when non-empty; otherwise the canned
// message from the table is used.
func NewAPI(code int, message string) *Error {
	canned, category := Classify(code)
	if message == "" {
		message = canned
	}

	return &Error{Kind: KindAPI, Code: code, Message: message, Category: category}
}

// NewAuthentication reports a login precondition that failed before sending.
func NewAuthentication(err error) *Error {
	return &Error{Kind: KindAuthentication, Category: CategoryAuth, Err: err}
}

// NewInvalidParameter reports caller input rejected before sending.
func NewInvalidParameter(field, message string) *Error {
	return &Error{Kind: KindInvalidParameter, Field: field, Message: message, Category: CategoryRequest}
}

// WithOp sets the operation label on err if it is an *Error without one.
// Other errors are returned unchanged.
func WithOp(err error, op string) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Op == "" {
		apiErr.Op = op
	}

	return err
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)

	return apiErr, ok
}

// CategoryOf returns the category that should drive retry decisions for err.
//
// Errors that are not *Error, and HTTP errors below 500 other than 429,
// are reported as CategoryUnknown and CategoryRequest respectively.
func CategoryOf(err error) Category {
	apiErr, ok := As(err)
	if !ok {
		return CategoryUnknown
	}

	switch apiErr.Kind {
	case KindNetwork:
		if apiErr.Reason == ReasonCanceled {
			return CategoryRequest
		}

		return CategoryNetwork
	case KindHTTP:
		if apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests {
			return CategoryServer
		}

		return CategoryRequest
	case KindAuthentication:
		return CategoryAuth
	case KindParse, KindInvalidParameter:
		return CategoryRequest
	default:
		return apiErr.Category
	}
}

func reasonOf(err error) NetworkReason {
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	var (
		certErr   *tls.CertificateVerificationError
		recordErr tls.RecordHeaderError
	)

	if errors.As(err, &certErr) || errors.As(err, &recordErr) {
		return ReasonTLS
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonConnect
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ReasonConnect
	}

	return ReasonOther
}
