// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"articlegen/internal/ai"
	"articlegen/internal/article"
	"articlegen/internal/publish"
)

// writeOpError maps an operation error to its HTTP status and error code.
// fallback is the code used for errors with no specific mapping.
func writeOpError(w http.ResponseWriter, op string, err error, fallback string) {
	status, code, message := classify(err, fallback)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "status", status)
	} else {
		slog.Warn(op+" rejected", "error", err, "status", status)
	}
	writeError(w, status, code, message)
}

func classify(err error, fallback string) (int, string, string) {
	var (
		upstream *ai.UpstreamError
		flagged  *article.FlaggedError
	)
	switch {
	case errors.As(err, &flagged):
		msg := "The prompt was rejected by content moderation."
		if len(flagged.Categories) > 0 {
			msg += " Categories: " + strings.Join(flagged.Categories, ", ") + "."
		}
		return http.StatusUnprocessableEntity, "prompt_flagged", msg
	case errors.Is(err, ai.ErrNoCredential):
		return http.StatusBadRequest, "no_credential", "OpenAI API key is not configured."
	case errors.As(err, &upstream):
		status := http.StatusBadGateway
		if upstream.StatusCode >= 400 && upstream.StatusCode <= 599 {
			status = upstream.StatusCode
		}
		return status, "upstream_error", upstream.Message
	case errors.Is(err, ai.ErrEmptyResponse):
		return http.StatusBadGateway, "openai_no_content", "The model returned no content."
	case errors.Is(err, ai.ErrNoImageReturned):
		return http.StatusBadGateway, "image_error", "The model returned no image."
	case errors.Is(err, ai.ErrJSONParse):
		return http.StatusBadGateway, "json_error", "The model reply was not a valid article."
	case errors.Is(err, publish.ErrInvalidData):
		return http.StatusBadRequest, "invalid_data", "Title and content are required."
	}
	return http.StatusInternalServerError, fallback, err.Error()
}
