// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"codeberg.org/pixivfe/biliapi/core/apierror"
)

var (
	errInvalidJSON   = errors.New("response contained invalid JSON")
	errNotAnObject   = errors.New("response is not a JSON object")
	errMissingCode   = errors.New(`response has no numeric "code" field`)
	errMalformedData = errors.New(`"data" field does not match the expected type`)
)

// Envelope is the JSON wrapper around every API response.
//
// Data is decoded only when Code is 0 and the payload is present and not
// null; RawData always holds the undecoded payload, whatever the code.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Msg     string `json:"msg,omitempty"` // used instead of message by some services
	TTL     int    `json:"ttl"`
	Status  bool   `json:"status,omitempty"`
	Data    *T     `json:"data,omitempty"`

	RawData Opaque `json:"-"`
}

// UnmarshalJSON decodes an envelope.
//
// The envelope fields are read with gjson so that loosely typed values
// (e.g. "status": 1) do not fail the whole response. Endpoints that carry
// their payload in "result" instead of "data" are accepted too.
func (e *Envelope[T]) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return errInvalidJSON
	}

	root := gjson.ParseBytes(b)
	if !root.IsObject() {
		return errNotAnObject
	}

	code := root.Get("code")
	if code.Type != gjson.Number {
		return errMissingCode
	}

	*e = Envelope[T]{
		Code:    int(code.Int()),
		Message: root.Get("message").String(),
		Msg:     root.Get("msg").String(),
		TTL:     int(root.Get("ttl").Int()),
		Status:  root.Get("status").Bool(),
	}

	payload := root.Get("data")
	if !payload.Exists() {
		payload = root.Get("result")
	}

	if !payload.Exists() || payload.Type == gjson.Null {
		return nil
	}

	e.RawData = Opaque(payload.Raw)

	// Error responses sometimes carry a payload of a different shape.
	if e.Code != apierror.CodeOK {
		return nil
	}

	var data T
	if err := json.Unmarshal([]byte(payload.Raw), &data); err != nil {
		return fmt.Errorf("%w: %w", errMalformedData, err)
	}

	e.Data = &data

	return nil
}

// ServerMessage returns message, or msg when message is empty.
func (e *Envelope[T]) ServerMessage() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Msg
}

// IntoData returns the payload of a successful envelope.
//
// A non-zero code yields a KindAPI error classified by apierror.NewAPI.
// A zero code without a payload yields a KindParse error wrapping
// apierror.ErrMissingData; the zero value of T is never returned as success.
func (e *Envelope[T]) IntoData() (T, error) {
	var zero T

	if err := e.Err(); err != nil {
		return zero, err
	}

	if e.Data == nil {
		return zero, apierror.NewParse("", apierror.ErrMissingData)
	}

	return *e.Data, nil
}

// Err returns the KindAPI error for a non-zero code, or nil.
func (e *Envelope[T]) Err() error {
	if e.Code != apierror.CodeOK {
		return apierror.NewAPI(e.Code, e.ServerMessage())
	}

	return nil
}
