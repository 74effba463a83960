// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedURL marks an upstream URL that could not be turned into a request.
var ErrMalformedURL = errors.New("malformed url")

// UpstreamError is returned when the primary catalog or a media provider
// answers with a non-success status or cannot be reached.
type UpstreamError struct {
	Source     string // Logical name of the upstream (e.g. "exercisedb").
	StatusCode int    // HTTP status, zero when the call never got a response.
	Body       string // Truncated response body, if any.
	Err        error  // Underlying transport error, if any.
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 && e.Body == "" {
		return fmt.Sprintf("upstream %s returned %d", e.Source, e.StatusCode)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s returned %d: %s", e.Source, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream %s unreachable: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Reason describes the failure without hosts, paths or credentials.
func (e *UpstreamError) Reason() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	var timeout interface{ Timeout() bool }
	switch {
	case errors.Is(e.Err, ErrMalformedURL):
		return "malformed url"
	case errors.Is(e.Err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(e.Err, &timeout) && timeout.Timeout():
		return "timeout"
	case errors.Is(e.Err, context.Canceled):
		return "cancelled"
	}
	return "unreachable"
}

// TierError is a media tier failure with a fixed reason. Err keeps the
// detail for logs and spans.
type TierError struct {
	Cause string
	Err   error
}

func (e *TierError) Error() string {
	if e.Err == nil {
		return e.Cause
	}
	return e.Cause + ": " + e.Err.Error()
}

func (e *TierError) Unwrap() error {
	return e.Err
}

func (e *TierError) Reason() string {
	return e.Cause
}

// ValidationError is returned for malformed input, before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TierAttempt records why a single media tier did not produce a stream.
type TierAttempt struct {
	Tier   string `json:"tier"`
	Reason string `json:"reason"`
}

// NotFoundError is returned when media resolution exhausted every tier.
type NotFoundError struct {
	Target   string
	Attempts []TierAttempt
}

func (e *NotFoundError) Error() string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, fmt.Sprintf("%s (%s)", a.Tier, a.Reason))
	}
	return fmt.Sprintf("media not found for %s; tried %s", e.Target, strings.Join(names, ", "))
}
