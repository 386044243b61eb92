// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// GenerationRequest carries one generate call from the admin client to the
// assembler. It is never stored.
type GenerationRequest struct {
	Prompt       string
	TextModel    string // empty selects the configured default
	ImageModel   string // empty selects the configured default
	ImageCount   int
	MinWordCount int
	Credential   string // overrides the stored API key when non-empty
}

// ImageRef points at a provider-hosted image until the article is saved.
type ImageRef struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Draft is a generated article held by the client until the user saves it.
// The same shape is posted back to the save endpoint.
type Draft struct {
	Title   string     `json:"title"`
	Excerpt string     `json:"excerpt"`
	Tags    []string   `json:"tags"`
	Content string     `json:"content"`
	Images  []ImageRef `json:"images"`
}
