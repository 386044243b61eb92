// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts Markdown article bodies into HTML using goldmark.
// Models sometimes answer with Markdown even when asked for HTML; the output
// of this package is always passed through the HTML sanitizer afterwards.
package markdown

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // inline HTML mixed into Markdown survives until sanitizing
	),
)

// blockTag matches an opening block-level HTML tag.
var blockTag = regexp.MustCompile(`(?i)<(p|h[1-6]|ul|ol|li|div|section|article|blockquote|table|figure|img|br)[\s/>]`)

// LooksLikeHTML reports whether source already contains block-level HTML.
func LooksLikeHTML(source string) bool {
	return blockTag.MatchString(source)
}

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
