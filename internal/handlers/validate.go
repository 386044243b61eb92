// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"articlegen/internal/models"
)

// Validation limits for generation and draft fields.
const (
	maxPromptLen  = 4_000
	maxTitleLen   = 300
	maxExcerptLen = 1_000
	maxBodyLen    = 200_000
	maxTags       = 20
	maxTagLen     = 100
	maxURLLen     = 4_000
	maxAltLen     = 500
	maxAPIKeyLen  = 500
)

// validatePrompt checks a generation prompt and returns the error code and
// message of the first problem found, or empty strings.
func validatePrompt(prompt string) (string, string) {
	if strings.TrimSpace(prompt) == "" {
		return "no_prompt", "Please describe what the article should be about."
	}
	if utf8.RuneCountInString(prompt) > maxPromptLen {
		return "invalid_request", "Prompt is too long (max 4,000 characters)."
	}
	return "", ""
}

// validateDraft checks the size limits of a draft posted for saving. Missing
// title or body is left to the publisher, which checks them after sanitizing.
func validateDraft(d *models.Draft, maxImages int) string {
	if utf8.RuneCountInString(d.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(d.Excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(d.Content) > maxBodyLen {
		return "Content is too long (max 200,000 characters)."
	}
	if len(d.Tags) > maxTags {
		return fmt.Sprintf("Too many tags (max %d).", maxTags)
	}
	for _, t := range d.Tags {
		if utf8.RuneCountInString(t) > maxTagLen {
			return "Tag is too long (max 100 characters)."
		}
	}
	if len(d.Images) > maxImages {
		return fmt.Sprintf("Too many images (max %d).", maxImages)
	}
	for _, img := range d.Images {
		if len(img.URL) > maxURLLen {
			return "Image URL is too long."
		}
		if utf8.RuneCountInString(img.Alt) > maxAltLen {
			return "Image alt text is too long (max 500 characters)."
		}
	}
	return ""
}

// validateAPIKey checks a credential submitted for storage.
func validateAPIKey(key string) string {
	if key == "" {
		return "API key is required."
	}
	if len(key) > maxAPIKeyLen || strings.ContainsAny(key, " \t\r\n") {
		return "API key is not valid."
	}
	return ""
}
