// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import "testing"

func TestNewWithoutCredentials(t *testing.T) {
	c, err := New("", "us-east-1", "", "", "bucket", "")
	if err != nil || c != nil {
		t.Errorf("expected (nil, nil) without credentials, got (%v, %v)", c, err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New("https://s3.example", "us-east-1", "ak", "sk", "", ""); err == nil {
		t.Error("expected error for empty bucket")
	}
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		wantURL   string
	}{
		{"path style", "", "https://s3.example/assets/media/2026/10/a.png"},
		{"cdn", "https://cdn.example/", "https://cdn.example/media/2026/10/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New("https://s3.example/", "us-east-1", "ak", "sk", "assets", tt.publicURL)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if c.Bucket() != "assets" {
				t.Errorf("Bucket: got %q", c.Bucket())
			}

			url := c.FileURL("media/2026/10/a.png")
			if url != tt.wantURL {
				t.Errorf("FileURL: got %q, want %q", url, tt.wantURL)
			}
		})
	}
}
