// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv sets every variable Load reads to the empty string, which
// envOrDefault and the typed helpers treat the same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_HOST", "APP_PORT", "APP_ENV",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
		"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET_PUBLIC", "S3_PUBLIC_URL",
		"OPENAI_BASE_URL", "OPENAI_API_KEY", "OPENAI_TEXT_MODEL", "OPENAI_IMAGE_MODEL",
		"AI_TIMEOUT", "AI_MODERATION", "MAX_IMAGES", "DEFAULT_MIN_WORDS", "IMAGE_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	checks := []struct {
		field, got, want string
	}{
		{"Host", cfg.Host, "0.0.0.0"},
		{"Port", cfg.Port, "8080"},
		{"Env", cfg.Env, "development"},
		{"OpenAIBaseURL", cfg.OpenAIBaseURL, "https://api.openai.com/v1"},
		{"OpenAITextModel", cfg.OpenAITextModel, "gpt-4o"},
		{"OpenAIImageModel", cfg.OpenAIImageModel, "dall-e-3"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %q, want %q", c.field, c.got, c.want)
		}
	}

	if cfg.AITimeout != 60*time.Second {
		t.Errorf("AITimeout: got %v, want 60s", cfg.AITimeout)
	}
	if cfg.DefaultMinWords != 1500 {
		t.Errorf("DefaultMinWords: got %d, want 1500", cfg.DefaultMinWords)
	}
	if cfg.MaxImages != 10 {
		t.Errorf("MaxImages: got %d, want 10", cfg.MaxImages)
	}
	if cfg.AIModeration {
		t.Error("AIModeration should default to false")
	}
	if cfg.HasStorage() {
		t.Error("HasStorage should be false without S3 credentials")
	}
	if !cfg.IsDev() {
		t.Error("IsDev should be true by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_TIMEOUT", "15s")
	t.Setenv("AI_MODERATION", "true")
	t.Setenv("MAX_IMAGES", "3")
	t.Setenv("IMAGE_CONCURRENCY", "0")
	t.Setenv("S3_ENDPOINT", "https://s3.example")
	t.Setenv("S3_ACCESS_KEY", "ak")
	t.Setenv("S3_SECRET_KEY", "sk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AITimeout != 15*time.Second {
		t.Errorf("AITimeout: got %v", cfg.AITimeout)
	}
	if !cfg.AIModeration {
		t.Error("AIModeration should be true")
	}
	if cfg.MaxImages != 3 {
		t.Errorf("MaxImages: got %d", cfg.MaxImages)
	}
	if cfg.ImageConcurrency != 1 {
		t.Errorf("ImageConcurrency should clamp to 1, got %d", cfg.ImageConcurrency)
	}
	if !cfg.HasStorage() {
		t.Error("HasStorage should be true")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"AI_TIMEOUT", "soon"},
		{"AI_TIMEOUT", "0s"},
		{"AI_TIMEOUT", "-5s"},
		{"AI_MODERATION", "maybe"},
		{"MAX_IMAGES", "many"},
		{"MAX_IMAGES", "0"},
		{"DEFAULT_MIN_WORDS", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_ProductionRequiresPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
		t.Fatalf("expected POSTGRES_PASSWORD error, got %v", err)
	}

	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with password: %v", err)
	}
}

func TestDSNAndAddr(t *testing.T) {
	cfg := &Config{
		Host: "127.0.0.1", Port: "9000",
		DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "n",
	}
	if got := cfg.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr: %q", got)
	}
	if got := cfg.DSN(); got != "postgres://u:p@db:5432/n?sslmode=disable" {
		t.Errorf("DSN: %q", got)
	}
}
