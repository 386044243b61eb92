// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential is returned when neither an explicit override nor the
	// stored default API key is available.
	ErrNoCredential = errors.New("ai: no API key configured")

	// ErrEmptyResponse is returned when the completion reply carries no content.
	ErrEmptyResponse = errors.New("ai: provider returned no content")

	// ErrNoImageReturned is returned when the image reply lacks a usable URL.
	ErrNoImageReturned = errors.New("ai: provider returned no image")

	// ErrJSONParse is returned when the article payload is not valid JSON.
	ErrJSONParse = errors.New("ai: invalid JSON in provider response")
)

// UpstreamError wraps a transport or API failure reported by the provider.
// StatusCode is zero when the request never produced an HTTP response.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai: upstream error (status %d): %s", e.StatusCode, e.Message)
	}
	return "ai: upstream error: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }
