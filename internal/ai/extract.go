// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ImagePrompt is one image descriptor requested by the model.
type ImagePrompt struct {
	Prompt string `json:"prompt"`
	Alt    string `json:"alt"`
}

// ArticlePayload is the raw, unsanitized article object returned by the model.
type ArticlePayload struct {
	Title   string        `json:"title"`
	Excerpt string        `json:"excerpt"`
	Tags    stringList    `json:"tags"`
	Content string        `json:"content"`
	Images  []ImagePrompt `json:"images"`
}

// stringList accepts either a JSON array of strings or a single string.
// Models occasionally answer "tags": "a, b" instead of an array.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		if string(data) == "null" {
			*l = nil
			return nil
		}
		return err
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = []string{one}
	return nil
}

// ExtractJSON returns the substring between the first '{' and the last '}'
// of raw, inclusive. Prose the model wraps around the object (including
// markdown code fences) is discarded. If no brace pair exists the trimmed
// input is returned unchanged.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// ParseArticle extracts and decodes the article object from a raw model reply.
func ParseArticle(raw string) (*ArticlePayload, error) {
	var p ArticlePayload
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJSONParse, err)
	}
	return &p, nil
}
