// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the prompt passes moderation
	Categories []string // flagged category names, sorted (empty when safe)
}

// CheckSafety runs text through the provider's moderation endpoint using the
// resolved credential.
func (c *Client) CheckSafety(ctx context.Context, text, credential string) (*ModerationResult, error) {
	key, err := c.ResolveCredential(credential)
	if err != nil {
		return nil, err
	}

	client := c.newSDKClient(key)
	resp, err := client.Moderations.New(ctx, openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.ModerationModelOmniModerationLatest,
	})
	if err != nil {
		return nil, upstream(err)
	}
	if len(resp.Results) == 0 || !resp.Results[0].Flagged {
		return &ModerationResult{Safe: true}, nil
	}

	// The category set grows with new models, so read it as a map.
	var categories map[string]bool
	if raw := resp.Results[0].Categories.RawJSON(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &categories); err != nil {
			return nil, fmt.Errorf("moderation categories: %w", err)
		}
	}
	return &ModerationResult{Safe: false, Categories: flaggedNames(categories)}, nil
}

// flaggedNames turns "hate/threatening" into "hate (threatening)" and
// "self_harm" into "self harm", sorted.
func flaggedNames(categories map[string]bool) []string {
	var flagged []string
	for cat, isFlagged := range categories {
		if !isFlagged {
			continue
		}
		display := cat
		if strings.Contains(cat, "/") {
			display = strings.Replace(cat, "/", " (", 1) + ")"
		}
		flagged = append(flagged, strings.ReplaceAll(display, "_", " "))
	}
	sort.Strings(flagged)
	return flagged
}
