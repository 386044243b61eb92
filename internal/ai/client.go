// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai talks to the OpenAI-compatible generation API: structured
// article completions, single image generation and prompt moderation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"articlegen/internal/models"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultTextModel  = "gpt-4o"
	defaultImageModel = "dall-e-3"
	defaultTimeout    = 60 * time.Second
)

// CredentialSource reads the stored default API key.
type CredentialSource interface {
	Get(key string) (string, error)
}

// Config holds the provider endpoint and default models.
type Config struct {
	BaseURL    string
	TextModel  string
	ImageModel string
	Timeout    time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// ArticleRequest is the input to GenerateArticleJSON.
type ArticleRequest struct {
	Prompt     string
	Model      string
	MinWords   int
	ImageCount int
	Credential string
}

// Client issues article and image calls. A fresh SDK client is built per call
// so that a credential update is observed by the very next request.
// Client is safe for concurrent use.
type Client struct {
	cfg      Config
	settings CredentialSource
}

// NewClient creates a client, filling unset config values with defaults.
func NewClient(cfg Config, settings CredentialSource) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = defaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg, settings: settings}
}

// DefaultImageModel returns the image model used when none is requested.
func (c *Client) DefaultImageModel() string { return c.cfg.ImageModel }

// ResolveCredential returns override when set, otherwise the stored key.
func (c *Client) ResolveCredential(override string) (string, error) {
	if key := strings.TrimSpace(override); key != "" {
		return key, nil
	}
	if c.settings == nil {
		return "", ErrNoCredential
	}
	key, err := c.settings.Get(models.SettingOpenAIKey)
	if err != nil {
		return "", fmt.Errorf("reading stored API key: %w", err)
	}
	if key = strings.TrimSpace(key); key == "" {
		return "", ErrNoCredential
	}
	return key, nil
}

// GenerateArticleJSON asks the text model for the article object and returns
// the raw reply text, which may still contain prose around the JSON.
func (c *Client) GenerateArticleJSON(ctx context.Context, req ArticleRequest) (string, error) {
	key, err := c.ResolveCredential(req.Credential)
	if err != nil {
		return "", err
	}

	model := req.Model
	if model == "" {
		model = c.cfg.TextModel
	}
	minWords := req.MinWords
	if minWords < 0 {
		minWords = 0
	}

	client := c.newSDKClient(key)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildArticlePrompt(req.Prompt, req.ImageCount, minWords)),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", upstream(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// GenerateImage requests exactly one 1024x1024 image and returns its URL.
// An empty model selects the configured default.
func (c *Client) GenerateImage(ctx context.Context, prompt, model, credential string) (string, error) {
	key, err := c.ResolveCredential(credential)
	if err != nil {
		return "", err
	}
	if model == "" {
		model = c.cfg.ImageModel
	}

	client := c.newSDKClient(key)
	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return "", upstream(err)
	}
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].URL) == "" {
		return "", ErrNoImageReturned
	}
	return strings.TrimSpace(resp.Data[0].URL), nil
}

func (c *Client) newSDKClient(key string) openai.Client {
	base := c.cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(base),
		option.WithRequestTimeout(c.cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if c.cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.cfg.HTTPClient))
	}
	return openai.NewClient(opts...)
}

// upstream converts an SDK error into an *UpstreamError, keeping the
// provider's status code and message when one was returned.
func upstream(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &UpstreamError{StatusCode: apiErr.StatusCode, Message: msg, Err: err}
	}
	return &UpstreamError{Message: err.Error(), Err: err}
}
