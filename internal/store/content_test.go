// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"articlegen/internal/models"
)

func TestContentStoreCreatePublished(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db)
	c := testContent(t, db, u.ID)

	if c.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if c.Type != models.ContentTypePost {
		t.Errorf("type: got %q, want post", c.Type)
	}
	if c.PublishedAt == nil {
		t.Error("published content should have published_at")
	}
	if c.FeaturedImageID != nil {
		t.Error("new content should have no featured image")
	}
}

func TestContentStoreRejectsEmptyTitle(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db)

	_, err := NewContentStore(db).Create(&models.Content{
		Title: "", Slug: "empty-" + uuid.NewString(), Body: "<p>x</p>",
		Status: models.ContentStatusPublished, AuthorID: u.ID,
	})
	if err == nil {
		t.Error("expected check constraint violation")
	}
}

func TestContentStoreSlugExists(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	u := testUser(t, db)
	c := testContent(t, db, u.ID)

	exists, err := s.SlugExists(c.Slug)
	if err != nil || !exists {
		t.Errorf("SlugExists(%q): got %v, %v", c.Slug, exists, err)
	}
	exists, err = s.SlugExists("missing-" + uuid.NewString())
	if err != nil || exists {
		t.Errorf("SlugExists(missing): got %v, %v", exists, err)
	}
}

func TestContentStoreUpdateBodyAndFeatured(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	u := testUser(t, db)
	c := testContent(t, db, u.ID)

	if err := s.UpdateBody(c.ID, "<p>rewritten</p>"); err != nil {
		t.Fatalf("UpdateBody: %v", err)
	}

	m, err := NewMediaStore(db).Create(&models.Media{
		Filename: "a.png", OriginalName: "a.png", ContentType: "image/png", SizeBytes: 10,
		Bucket: "test", S3Key: "media/test/" + uuid.NewString() + ".png",
		ContentID: &c.ID, UploaderID: u.ID,
	})
	if err != nil {
		t.Fatalf("create media: %v", err)
	}
	if err := s.SetFeaturedImage(c.ID, m.ID); err != nil {
		t.Fatalf("SetFeaturedImage: %v", err)
	}

	got, err := s.FindByID(c.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Body != "<p>rewritten</p>" {
		t.Errorf("body: got %q", got.Body)
	}
	if got.FeaturedImageID == nil || *got.FeaturedImageID != m.ID {
		t.Errorf("featured image: got %v, want %v", got.FeaturedImageID, m.ID)
	}
}

func TestContentStoreUpdateMissing(t *testing.T) {
	db := testDB(t)
	err := NewContentStore(db).UpdateBody(uuid.New(), "<p>x</p>")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestContentStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	u := testUser(t, db)
	c := testContent(t, db, u.ID)

	if err := s.Delete(c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := s.FindByID(c.ID)
	if err != nil || got != nil {
		t.Errorf("FindByID after delete: got %+v, %v", got, err)
	}
}
