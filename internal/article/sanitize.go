// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package article

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"articlegen/internal/markdown"
)

// Policies are safe for concurrent use once built.
var (
	bodyPolicy = bluemonday.UGCPolicy()
	textPolicy = bluemonday.StrictPolicy()
)

// SanitizeHTML reduces s to the rich HTML subset allowed in article bodies.
func SanitizeHTML(s string) string {
	return strings.TrimSpace(bodyPolicy.Sanitize(s))
}

// maxDecodePasses bounds how many entity-encoding layers PlainText peels.
const maxDecodePasses = 16

// PlainText strips all markup from s, decodes entities and collapses
// whitespace. Strip and decode repeat until the text no longer changes, so
// entity-encoded markup at any depth is stripped too. Text still changing
// after maxDecodePasses loses its angle brackets.
func PlainText(s string) string {
	out := s
	stable := false
	for i := 0; i < maxDecodePasses; i++ {
		next := html.UnescapeString(textPolicy.Sanitize(out))
		if next == out {
			stable = true
			break
		}
		out = next
	}
	if !stable {
		out = strings.NewReplacer("<", "", ">", "").Replace(out)
	}
	return strings.Join(strings.Fields(out), " ")
}

// NormalizeBody renders a Markdown body to HTML when it carries no block
// markup, then sanitizes it.
func NormalizeBody(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !markdown.LooksLikeHTML(s) {
		if rendered, err := markdown.ToHTML(s); err == nil {
			s = rendered
		}
	}
	return SanitizeHTML(s)
}

// PlainTags sanitizes tags, dropping empties and case-insensitive duplicates
// while keeping the first spelling and the original order.
func PlainTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = PlainText(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
