// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"articlegen/internal/metrics"
	"articlegen/internal/middleware"
	"articlegen/internal/models"
)

// --- Article Generator Endpoints ---
//
// These handlers back the generator screen of the admin client. Every
// request and response is JSON; errors use the {code, message} shape.

// Assembler produces a draft from a generation request.
type Assembler interface {
	Assemble(ctx context.Context, req models.GenerationRequest) (*models.Draft, error)
}

// ImageGenerator produces a single image URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, model, credential string) (string, error)
}

// Publisher persists a confirmed draft and returns the new post id.
type Publisher interface {
	Persist(ctx context.Context, draft *models.Draft, authorID uuid.UUID) (uuid.UUID, error)
}

// SettingsWriter stores named settings.
type SettingsWriter interface {
	Set(key, value string) error
}

// Limits holds the generation policy applied to incoming requests.
type Limits struct {
	MaxImages       int
	DefaultMinWords int
}

// Generator groups the article generator handlers.
type Generator struct {
	assembler Assembler
	images    ImageGenerator
	publisher Publisher
	settings  SettingsWriter
	limits    Limits
}

// NewGenerator creates the generator handler group.
func NewGenerator(assembler Assembler, images ImageGenerator, publisher Publisher, settings SettingsWriter, limits Limits) *Generator {
	if limits.MaxImages < 1 {
		limits.MaxImages = 1
	}
	if limits.DefaultMinWords < 0 {
		limits.DefaultMinWords = 0
	}
	return &Generator{
		assembler: assembler,
		images:    images,
		publisher: publisher,
		settings:  settings,
		limits:    limits,
	}
}

// generateRequest is the body of POST /generate. Pointers distinguish an
// omitted number from an explicit zero.
type generateRequest struct {
	Prompt     string `json:"prompt"`
	TextModel  string `json:"text_model"`
	ImageModel string `json:"image_model"`
	NumImages  *int   `json:"num_images"`
	MinWords   *int   `json:"min_words"`
	APIKey     string `json:"api_key"`
}

// Generate asks the model for a complete article with images and returns
// the draft for review. Nothing is stored.
func (g *Generator) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if code, msg := validatePrompt(req.Prompt); code != "" {
		writeError(w, http.StatusBadRequest, code, msg)
		return
	}

	numImages := 1
	if req.NumImages != nil && *req.NumImages > 1 {
		numImages = *req.NumImages
	}
	if numImages > g.limits.MaxImages {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("At most %d images can be generated per article.", g.limits.MaxImages))
		return
	}

	minWords := g.limits.DefaultMinWords
	if req.MinWords != nil {
		minWords = max(*req.MinWords, 0)
	}

	draft, err := g.assembler.Assemble(r.Context(), models.GenerationRequest{
		Prompt:       strings.TrimSpace(req.Prompt),
		TextModel:    strings.TrimSpace(req.TextModel),
		ImageModel:   strings.TrimSpace(req.ImageModel),
		ImageCount:   numImages,
		MinWordCount: minWords,
		Credential:   strings.TrimSpace(req.APIKey),
	})
	if err != nil {
		writeOpError(w, "generate article", err, "internal")
		return
	}
	if draft.Tags == nil {
		draft.Tags = []string{}
	}
	if draft.Images == nil {
		draft.Images = []models.ImageRef{}
	}

	writeJSON(w, http.StatusOK, draft)
}

// Save stores a reviewed draft as a published post authored by the caller.
func (g *Generator) Save(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var draft models.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}

	if msg := validateDraft(&draft, g.limits.MaxImages); msg != "" {
		writeError(w, http.StatusBadRequest, "invalid_data", msg)
		return
	}

	id, err := g.publisher.Persist(r.Context(), &draft, sess.UserID)
	if err != nil {
		writeOpError(w, "save article", err, "store_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"post_id": id.String()})
}

// regenerateRequest is the body of POST /regenerate-image.
type regenerateRequest struct {
	Prompt     string `json:"prompt"`
	ImageModel string `json:"image_model"`
	APIKey     string `json:"api_key"`
}

// RegenerateImage produces a replacement for one image of a draft.
func (g *Generator) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if code, msg := validatePrompt(req.Prompt); code != "" {
		writeError(w, http.StatusBadRequest, code, msg)
		return
	}

	url, err := g.images.GenerateImage(r.Context(),
		strings.TrimSpace(req.Prompt),
		strings.TrimSpace(req.ImageModel),
		strings.TrimSpace(req.APIKey),
	)
	metrics.ImagesGenerated.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		writeOpError(w, "regenerate image", err, "image_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// apiKeyRequest is the body of POST /save-api-key.
type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

// SaveAPIKey replaces the stored default OpenAI API key. Requests started
// afterwards use the new key.
func (g *Generator) SaveAPIKey(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req apiKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if msg := validateAPIKey(key); msg != "" {
		writeError(w, http.StatusBadRequest, "no_api_key", msg)
		return
	}

	if err := g.settings.Set(models.SettingOpenAIKey, key); err != nil {
		writeOpError(w, "save api key", err, "store_error")
		return
	}

	slog.Info("openai api key updated", "user_id", sess.UserID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
