// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared test database helpers for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"

	"articlegen/internal/database"
	"articlegen/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "articlegen")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "articlegen")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a throwaway author and removes it, together with every
// content item and media row it owns, when the test finishes.
func testUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	email := "store-test-" + uuid.NewString() + "@store-test.local"
	u, err := NewUserStore(db).Create(email, "testpass123", "Store Test", models.RoleAuthor)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("UPDATE content SET featured_image_id = NULL WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM media WHERE uploader_id = $1", u.ID)
		db.Exec("DELETE FROM content WHERE author_id = $1", u.ID)
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// testContent inserts a published post owned by author.
func testContent(t *testing.T, db *sql.DB, author uuid.UUID) *models.Content {
	t.Helper()
	c, err := NewContentStore(db).Create(&models.Content{
		Title:    "Store Test",
		Slug:     "store-test-" + uuid.NewString(),
		Body:     "<p>body</p>",
		Status:   models.ContentStatusPublished,
		AuthorID: author,
	})
	if err != nil {
		t.Fatalf("create test content: %v", err)
	}
	return c
}
