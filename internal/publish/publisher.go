// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish persists a confirmed article draft: it creates the content
// item, attaches tags, localizes remote images as managed assets, picks the
// featured image and rewrites the body to reference local URLs.
package publish

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"articlegen/internal/article"
	"articlegen/internal/metrics"
	"articlegen/internal/models"
	"articlegen/internal/slug"
)

// ErrInvalidData is returned when the draft has no title or no body after
// sanitizing. Nothing is written in that case.
var ErrInvalidData = errors.New("publish: title and content are required")

// maxSlugAttempts bounds the numbered-suffix search for a free slug.
const maxSlugAttempts = 50

// ContentStore is the subset of content persistence the publisher needs.
type ContentStore interface {
	Create(c *models.Content) (*models.Content, error)
	SlugExists(slug string) (bool, error)
	UpdateBody(id uuid.UUID, body string) error
	SetFeaturedImage(id, mediaID uuid.UUID) error
}

// TagStore attaches tags to content.
type TagStore interface {
	AddToContent(contentID uuid.UUID, names []string) error
}

// Localizer downloads a remote image and registers it as a managed asset,
// returning the media record and its local URL.
type Localizer interface {
	Ingest(ctx context.Context, rawURL string, contentID, uploaderID uuid.UUID, alt string) (*models.Media, string, error)
}

// Publisher saves drafts. It is safe for concurrent use.
type Publisher struct {
	content     ContentStore
	tags        TagStore
	localizer   Localizer // nil when object storage is not configured
	concurrency int
}

// NewPublisher creates a publisher. concurrency bounds parallel image
// localization; values below 1 mean one at a time.
func NewPublisher(content ContentStore, tags TagStore, localizer Localizer, concurrency int) *Publisher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Publisher{content: content, tags: tags, localizer: localizer, concurrency: concurrency}
}

// localized is the outcome of one successfully registered image.
type localized struct {
	remote  string
	local   string
	mediaID uuid.UUID
}

// Persist stores draft as a published post authored by authorID and returns
// its id. Tag and image failures are logged and do not fail the call.
func (p *Publisher) Persist(ctx context.Context, draft *models.Draft, authorID uuid.UUID) (uuid.UUID, error) {
	title := article.PlainText(draft.Title)
	body := article.SanitizeHTML(draft.Content)
	if title == "" || body == "" {
		return uuid.Nil, ErrInvalidData
	}

	sl, err := p.uniqueSlug(title)
	if err != nil {
		return uuid.Nil, err
	}

	c := &models.Content{
		Type:     models.ContentTypePost,
		Title:    title,
		Slug:     sl,
		Body:     body,
		Status:   models.ContentStatusPublished,
		AuthorID: authorID,
	}
	if excerpt := article.PlainText(draft.Excerpt); excerpt != "" {
		c.Excerpt = &excerpt
	}

	created, err := p.content.Create(c)
	if err != nil {
		return uuid.Nil, err
	}
	id := created.ID
	metrics.ArticlesSaved.Inc()

	if tags := article.PlainTags(draft.Tags); len(tags) > 0 {
		if err := p.tags.AddToContent(id, tags); err != nil {
			slog.Warn("failed to attach tags", "content_id", id, "error", err)
		}
	}

	results := p.localizeImages(ctx, draft.Images, id, authorID)

	// Featured image is the first success in submission order.
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := p.content.SetFeaturedImage(id, r.mediaID); err != nil {
			slog.Warn("failed to set featured image", "content_id", id, "media_id", r.mediaID, "error", err)
		}
		break
	}

	if rewritten := rewriteURLs(body, results); rewritten != body {
		if err := p.content.UpdateBody(id, rewritten); err != nil {
			slog.Error("failed to store body with local image URLs", "content_id", id, "error", err)
		}
	}

	slog.Info("article published", "content_id", id, "slug", sl, "images", len(draft.Images))
	return id, nil
}

// localizeImages ingests every image concurrently. The returned slice is
// indexed like refs; failed or skipped images are nil.
func (p *Publisher) localizeImages(ctx context.Context, refs []models.ImageRef, contentID, uploaderID uuid.UUID) []*localized {
	results := make([]*localized, len(refs))
	if len(refs) == 0 {
		return results
	}
	if p.localizer == nil {
		slog.Warn("object storage not configured, keeping remote image URLs", "content_id", contentID, "images", len(refs))
		return results
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, ref := range refs {
		i, ref := i, ref
		remote := strings.TrimSpace(ref.URL)
		if remote == "" {
			continue
		}
		g.Go(func() error {
			m, local, err := p.localizer.Ingest(ctx, remote, contentID, uploaderID, article.PlainText(ref.Alt))
			metrics.ImagesLocalized.WithLabelValues(metrics.Result(err)).Inc()
			if err != nil {
				slog.Warn("image localization failed, keeping remote URL", "index", i, "url", remote, "error", err)
				return nil
			}
			results[i] = &localized{remote: remote, local: local, mediaID: m.ID}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// uniqueSlug derives a slug from title and appends -2, -3, ... until free.
func (p *Publisher) uniqueSlug(title string) (string, error) {
	base := slug.Generate(title)
	if base == "" {
		base = "article"
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		exists, err := p.content.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

// rewriteURLs replaces every occurrence of each localized remote URL in body
// with its local URL. The HTML-escaped form of a URL (as produced by the
// sanitizer for query strings) is replaced too. Longer URLs are replaced
// first so a URL that prefixes another cannot corrupt it.
func rewriteURLs(body string, results []*localized) string {
	var pairs []localized
	for _, r := range results {
		if r != nil && r.remote != r.local {
			pairs = append(pairs, *r)
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return len(pairs[i].remote) > len(pairs[j].remote) })

	for _, pr := range pairs {
		if escaped := html.EscapeString(pr.remote); escaped != pr.remote {
			body = strings.ReplaceAll(body, escaped, html.EscapeString(pr.local))
		}
		body = strings.ReplaceAll(body, pr.remote, pr.local)
	}
	return body
}
