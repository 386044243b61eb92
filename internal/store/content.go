// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"articlegen/internal/models"
)

// ContentStore handles all content-related database operations.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, type, title, slug, body, excerpt, status,
	featured_image_id, author_id, published_at, created_at, updated_at`

func scanContent(scanner interface{ Scan(...any) error }) (*models.Content, error) {
	c := &models.Content{}
	err := scanner.Scan(
		&c.ID, &c.Type, &c.Title, &c.Slug, &c.Body, &c.Excerpt, &c.Status,
		&c.FeaturedImageID, &c.AuthorID, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new content item and returns it with the generated ID.
func (s *ContentStore) Create(c *models.Content) (*models.Content, error) {
	if c.Type == "" {
		c.Type = models.ContentTypePost
	}
	// If publishing, set the published_at timestamp.
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	result, err := scanContent(s.db.QueryRow(`
		INSERT INTO content (type, title, slug, body, excerpt, status, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+contentColumns,
		c.Type, c.Title, c.Slug, c.Body, c.Excerpt, c.Status, c.AuthorID, c.PublishedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// FindByID retrieves a content item by its UUID. Returns nil if not found.
func (s *ContentStore) FindByID(id uuid.UUID) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// SlugExists reports whether any content item already uses slug.
func (s *ContentStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM content WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// UpdateBody replaces the body of a content item.
func (s *ContentStore) UpdateBody(id uuid.UUID, body string) error {
	res, err := s.db.Exec(`UPDATE content SET body = $1, updated_at = NOW() WHERE id = $2`, body, id)
	if err != nil {
		return fmt.Errorf("update content body: %w", err)
	}
	return expectOneRow(res, "update content body")
}

// SetFeaturedImage points the content item at a registered media asset.
func (s *ContentStore) SetFeaturedImage(id, mediaID uuid.UUID) error {
	res, err := s.db.Exec(`
		UPDATE content SET featured_image_id = $1, updated_at = NOW() WHERE id = $2
	`, mediaID, id)
	if err != nil {
		return fmt.Errorf("set featured image: %w", err)
	}
	return expectOneRow(res, "set featured image")
}

// Delete removes a content item by ID.
func (s *ContentStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM content WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// expectOneRow turns a zero-row update into sql.ErrNoRows.
func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
