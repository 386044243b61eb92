// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"articlegen/internal/models"
	"articlegen/internal/slug"
)

// TagStore manages tags and their association with content.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// AddToContent attaches the named tags to a content item, creating tags that
// do not exist yet. Tags are matched by slug so "Go" and "go" share a row.
// Names that reduce to an empty slug are ignored.
func (s *TagStore) AddToContent(contentID uuid.UUID, names []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("add tags: begin: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		sl := slug.Generate(name)
		if sl == "" {
			continue
		}

		var tagID uuid.UUID
		err := tx.QueryRow(`
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id
		`, name, sl).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO content_tags (content_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, contentID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add tags: commit: %w", err)
	}
	return nil
}

// ListByContent returns the tags attached to a content item, ordered by name.
func (s *TagStore) ListByContent(contentID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug
		FROM tags t
		JOIN content_tags ct ON ct.tag_id = t.id
		WHERE ct.content_id = $1
		ORDER BY t.name
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list tags by content: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
