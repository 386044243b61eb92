// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package article turns a generation request into a sanitized article draft:
// one structured completion call followed by one image call per descriptor.
package article

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"articlegen/internal/ai"
	"articlegen/internal/metrics"
	"articlegen/internal/models"
)

// TextGenerator returns the raw article reply for a request.
type TextGenerator interface {
	GenerateArticleJSON(ctx context.Context, req ai.ArticleRequest) (string, error)
}

// ImageGenerator returns the URL of one generated image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, model, credential string) (string, error)
}

// SafetyChecker screens a prompt before generation.
type SafetyChecker interface {
	CheckSafety(ctx context.Context, text, credential string) (*ai.ModerationResult, error)
}

// FlaggedError is returned when moderation rejects the prompt.
type FlaggedError struct {
	Categories []string
}

func (e *FlaggedError) Error() string {
	if len(e.Categories) == 0 {
		return "prompt was flagged by moderation"
	}
	return "prompt was flagged by moderation: " + strings.Join(e.Categories, ", ")
}

// Assembler builds article drafts. It is safe for concurrent use.
type Assembler struct {
	text        TextGenerator
	images      ImageGenerator
	moderator   SafetyChecker // nil disables moderation
	concurrency int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithModeration screens every prompt with m before generation.
func WithModeration(m SafetyChecker) Option {
	return func(a *Assembler) { a.moderator = m }
}

// WithConcurrency bounds the number of image calls in flight per draft.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAssembler creates an assembler over the given generators.
func NewAssembler(text TextGenerator, images ImageGenerator, opts ...Option) *Assembler {
	a := &Assembler{text: text, images: images, concurrency: 4}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble requests the article, sanitizes its fields and resolves every
// image descriptor. Image failures are logged and dropped; the remaining
// images keep the descriptor order.
func (a *Assembler) Assemble(ctx context.Context, req models.GenerationRequest) (*models.Draft, error) {
	if a.moderator != nil {
		if err := a.screen(ctx, req); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	raw, err := a.text.GenerateArticleJSON(ctx, ai.ArticleRequest{
		Prompt:     req.Prompt,
		Model:      req.TextModel,
		MinWords:   req.MinWordCount,
		ImageCount: req.ImageCount,
		Credential: req.Credential,
	})
	if err != nil {
		metrics.ArticlesGenerated.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, err
	}

	payload, err := ai.ParseArticle(raw)
	if err != nil {
		metrics.ArticlesGenerated.WithLabelValues(metrics.ResultFailed).Inc()
		slog.Warn("article reply is not valid JSON", "error", err, "length", len(raw))
		return nil, err
	}
	metrics.ArticlesGenerated.WithLabelValues(metrics.ResultOK).Inc()

	draft := &models.Draft{
		Title:   PlainText(payload.Title),
		Excerpt: PlainText(payload.Excerpt),
		Tags:    PlainTags(payload.Tags),
		Content: NormalizeBody(payload.Content),
		Images:  a.resolveImages(ctx, payload.Images, req.ImageModel, req.Credential),
	}

	slog.Info("article draft assembled",
		"title", draft.Title,
		"images_requested", len(payload.Images),
		"images_resolved", len(draft.Images),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return draft, nil
}

// screen runs moderation. Transport failures are logged and do not block.
func (a *Assembler) screen(ctx context.Context, req models.GenerationRequest) error {
	res, err := a.moderator.CheckSafety(ctx, req.Prompt, req.Credential)
	if err != nil {
		slog.Warn("moderation check failed, continuing", "error", err)
		return nil
	}
	if !res.Safe {
		return &FlaggedError{Categories: res.Categories}
	}
	return nil
}

// resolveImages generates one image per descriptor with a non-empty prompt.
// Results are written by index so completion order does not matter.
func (a *Assembler) resolveImages(ctx context.Context, descs []ai.ImagePrompt, model, credential string) []models.ImageRef {
	results := make([]*models.ImageRef, len(descs))

	var g errgroup.Group
	g.SetLimit(a.concurrency)

	for i, d := range descs {
		i, d := i, d
		prompt := strings.TrimSpace(d.Prompt)
		if prompt == "" {
			continue
		}
		g.Go(func() error {
			url, err := a.images.GenerateImage(ctx, prompt, model, credential)
			metrics.ImagesGenerated.WithLabelValues(metrics.Result(err)).Inc()
			if err != nil {
				slog.Warn("image generation failed, dropping image", "index", i, "error", err)
				return nil
			}
			results[i] = &models.ImageRef{URL: url, Alt: PlainText(d.Alt)}
			return nil
		})
	}
	_ = g.Wait()

	images := make([]models.ImageRef, 0, len(descs))
	for _, r := range results {
		if r != nil {
			images = append(images, *r)
		}
	}
	return images
}
