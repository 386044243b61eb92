// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestSiteSettingStoreGetSet(t *testing.T) {
	db := testDB(t)
	s := NewSiteSettingStore(db)

	key := "test_" + uuid.NewString()
	t.Cleanup(func() { db.Exec("DELETE FROM site_settings WHERE key = $1", key) })

	got, err := s.Get(key)
	if err != nil || got != "" {
		t.Fatalf("Get missing: got %q, %v", got, err)
	}

	if err := s.Set(key, "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(key, "second"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, err = s.Get(key)
	if err != nil || got != "second" {
		t.Errorf("Get: got %q, %v", got, err)
	}
}
