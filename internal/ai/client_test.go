// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// ---------- Helpers ----------

// staticSettings is a CredentialSource returning a fixed key.
type staticSettings struct {
	key string
	err error
}

func (s staticSettings) Get(string) (string, error) { return s.key, s.err }

// chatBody builds a chat completion response with a single choice.
func chatBody(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return b
}

// imageBody builds an images response with the given URLs.
func imageBody(urls ...string) []byte {
	data := make([]map[string]any, 0, len(urls))
	for _, u := range urls {
		data = append(data, map[string]any{"url": u})
	}
	b, _ := json.Marshal(map[string]any{"created": 1, "data": data})
	return b
}

// fakeAPI emulates the provider endpoints. Captured request bodies and the
// Authorization header of the last request are recorded.
type fakeAPI struct {
	chatStatus  int
	chatBody    []byte
	imageStatus int
	imageBody   []byte

	calls    atomic.Int32
	lastAuth atomic.Value
	lastBody atomic.Value
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastBody.Store(body)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			w.WriteHeader(f.chatStatus)
			w.Write(f.chatBody)
		case strings.HasSuffix(r.URL.Path, "/images/generations"):
			w.WriteHeader(f.imageStatus)
			w.Write(f.imageBody)
		case strings.HasSuffix(r.URL.Path, "/moderations"):
			w.Write([]byte(`{"results":[{"flagged":true,"categories":{"violence":true,"hate/threatening":true,"sexual":false}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string, settings CredentialSource) *Client {
	return NewClient(Config{BaseURL: baseURL}, settings)
}

// ---------- Credential resolution ----------

func TestResolveCredential(t *testing.T) {
	tests := []struct {
		name     string
		settings CredentialSource
		override string
		want     string
		wantErr  error
	}{
		{"override wins", staticSettings{key: "stored"}, "explicit", "explicit", nil},
		{"stored fallback", staticSettings{key: "stored"}, "", "stored", nil},
		{"blank override falls back", staticSettings{key: "stored"}, "   ", "stored", nil},
		{"nothing configured", staticSettings{}, "", "", ErrNoCredential},
		{"nil settings", nil, "", "", ErrNoCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(Config{}, tt.settings)
			got, err := c.ResolveCredential(tt.override)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCredential_StoreError(t *testing.T) {
	boom := errors.New("db down")
	c := NewClient(Config{}, staticSettings{err: boom})
	if _, err := c.ResolveCredential(""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

// ---------- Article completion ----------

func TestGenerateArticleJSON_Success(t *testing.T) {
	api := &fakeAPI{chatStatus: http.StatusOK, chatBody: chatBody(`{"title":"Hi"}`)}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "sk-stored"})

	got, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{
		Prompt:     "Write about hiking",
		MinWords:   800,
		ImageCount: 2,
	})
	if err != nil {
		t.Fatalf("GenerateArticleJSON: %v", err)
	}
	if got != `{"title":"Hi"}` {
		t.Errorf("content: got %q", got)
	}
	if auth := api.lastAuth.Load().(string); auth != "Bearer sk-stored" {
		t.Errorf("Authorization: got %q", auth)
	}

	body := api.lastBody.Load().(map[string]any)
	if body["model"] != "gpt-4o" {
		t.Errorf("model: got %v", body["model"])
	}
	if body["temperature"] != 0.7 {
		t.Errorf("temperature: got %v", body["temperature"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	user := msgs[1].(map[string]any)["content"].(string)
	for _, want := range []string{"Write about hiking", "exatamente 2 itens", "no mínimo 800 palavras"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestGenerateArticleJSON_ModelOverride(t *testing.T) {
	api := &fakeAPI{chatStatus: http.StatusOK, chatBody: chatBody("{}")}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "k"})

	if _, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{Prompt: "p", Model: "gpt-4o-mini", ImageCount: 1}); err != nil {
		t.Fatalf("GenerateArticleJSON: %v", err)
	}
	if m := api.lastBody.Load().(map[string]any)["model"]; m != "gpt-4o-mini" {
		t.Errorf("model: got %v", m)
	}
}

func TestGenerateArticleJSON_NoCredentialMakesNoCall(t *testing.T) {
	api := &fakeAPI{chatStatus: http.StatusOK, chatBody: chatBody("{}")}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{})

	_, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{Prompt: "p"})
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if n := api.calls.Load(); n != 0 {
		t.Errorf("expected no upstream call, got %d", n)
	}
}

func TestGenerateArticleJSON_EmptyContent(t *testing.T) {
	api := &fakeAPI{chatStatus: http.StatusOK, chatBody: chatBody("   ")}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "k"})

	_, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{Prompt: "p"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateArticleJSON_NoChoices(t *testing.T) {
	api := &fakeAPI{chatStatus: http.StatusOK, chatBody: []byte(`{"id":"x","object":"chat.completion","choices":[]}`)}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "k"})

	_, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{Prompt: "p"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateArticleJSON_UpstreamStatus(t *testing.T) {
	api := &fakeAPI{
		chatStatus: http.StatusUnauthorized,
		chatBody:   []byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`),
	}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "bad"})

	_, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{Prompt: "p"})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T: %v", err, err)
	}
	if upErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", upErr.StatusCode)
	}
	if n := api.calls.Load(); n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}
}

func TestGenerateArticleJSON_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(url, staticSettings{key: "k"})
	_, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{Prompt: "p"})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T: %v", err, err)
	}
	if upErr.StatusCode != 0 {
		t.Errorf("transport failure should have no status, got %d", upErr.StatusCode)
	}
}

// ---------- Image generation ----------

func TestGenerateImage_Success(t *testing.T) {
	api := &fakeAPI{imageStatus: http.StatusOK, imageBody: imageBody("https://img.example/a.png")}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "stored"})

	url, err := c.GenerateImage(context.Background(), "a mountain", "", "override")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if url != "https://img.example/a.png" {
		t.Errorf("url: got %q", url)
	}
	if auth := api.lastAuth.Load().(string); auth != "Bearer override" {
		t.Errorf("Authorization: got %q", auth)
	}

	body := api.lastBody.Load().(map[string]any)
	checks := map[string]any{
		"model":           "dall-e-3",
		"prompt":          "a mountain",
		"size":            "1024x1024",
		"response_format": "url",
		"n":               float64(1),
	}
	for k, want := range checks {
		if body[k] != want {
			t.Errorf("%s: got %v, want %v", k, body[k], want)
		}
	}
}

func TestGenerateImage_NoImage(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty data", imageBody()},
		{"blank url", imageBody("  ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{imageStatus: http.StatusOK, imageBody: tt.body}
			srv := api.server(t)
			c := newTestClient(srv.URL, staticSettings{key: "k"})

			_, err := c.GenerateImage(context.Background(), "p", "", "")
			if !errors.Is(err, ErrNoImageReturned) {
				t.Fatalf("expected ErrNoImageReturned, got %v", err)
			}
		})
	}
}

func TestGenerateImage_UpstreamStatus(t *testing.T) {
	api := &fakeAPI{
		imageStatus: http.StatusBadRequest,
		imageBody:   []byte(`{"error":{"message":"content policy","type":"invalid_request_error"}}`),
	}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "k"})

	_, err := c.GenerateImage(context.Background(), "p", "dall-e-2", "")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 *UpstreamError, got %v", err)
	}
}

// ---------- Moderation ----------

func TestCheckSafety_Flagged(t *testing.T) {
	api := &fakeAPI{}
	srv := api.server(t)
	c := newTestClient(srv.URL, staticSettings{key: "k"})

	res, err := c.CheckSafety(context.Background(), "something bad", "")
	if err != nil {
		t.Fatalf("CheckSafety: %v", err)
	}
	if res.Safe {
		t.Fatal("expected flagged result")
	}
	want := []string{"hate (threatening)", "violence"}
	if strings.Join(res.Categories, ",") != strings.Join(want, ",") {
		t.Errorf("categories: got %v, want %v", res.Categories, want)
	}
}

func TestCheckSafety_Safe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"flagged":false,"categories":{}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, staticSettings{key: "k"})
	res, err := c.CheckSafety(context.Background(), "hiking", "")
	if err != nil {
		t.Fatalf("CheckSafety: %v", err)
	}
	if !res.Safe || len(res.Categories) != 0 {
		t.Errorf("expected safe result, got %+v", res)
	}
}

func TestCheckSafety_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, staticSettings{key: "k"})
	_, err := c.CheckSafety(context.Background(), "hiking", "")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 *UpstreamError, got %v", err)
	}
}

func TestFlaggedNames(t *testing.T) {
	got := flaggedNames(map[string]bool{
		"self-harm/intent": true,
		"illicit_violent":  true,
		"sexual":           false,
	})
	want := []string{"illicit violent", "self-harm (intent)"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

// ---------- Timeouts ----------

// stallingServer answers nothing until the client gives up.
func stallingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCallsTimeOutAsUpstreamError(t *testing.T) {
	srv := stallingServer(t)
	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, staticSettings{key: "k"})

	calls := map[string]func() error{
		"article": func() error {
			_, err := c.GenerateArticleJSON(context.Background(), ArticleRequest{Prompt: "p", ImageCount: 1})
			return err
		},
		"image": func() error {
			_, err := c.GenerateImage(context.Background(), "p", "", "")
			return err
		},
		"moderation": func() error {
			_, err := c.CheckSafety(context.Background(), "p", "")
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			err := call()
			if elapsed := time.Since(start); elapsed > 3*time.Second {
				t.Fatalf("call took %v, timeout not applied", elapsed)
			}
			var upErr *UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected *UpstreamError, got %v", err)
			}
			if upErr.StatusCode != 0 {
				t.Errorf("timeout should carry no status, got %d", upErr.StatusCode)
			}
		})
	}
}
