// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/SehejGit/lofi-hack/internal/orchestrator"
)

const tracerName = "github.com/SehejGit/lofi-hack/internal/generator"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the generation client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout per request (default: 120s)
	Timeout time.Duration

	// RequestsPerSecond and Burst bound outgoing calls (default: 4/s, burst 6)
	RequestsPerSecond float64
	Burst             int

	// Endpoint paths relative to BaseURL.
	SuggestPath string
	ImagePath   string
	MusicPath   string

	// MaxImageBytes caps the image body (default: 32 MiB)
	MaxImageBytes int64

	// UserAgent sent with every request.
	UserAgent string
}

// Default endpoint paths.
const (
	DefaultSuggestPath = "/api/suggest-words"
	DefaultImagePath   = "/api/generate-image"
	DefaultMusicPath   = "/api/generate-music"
)

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://localhost:8000",
		Timeout:           120 * time.Second,
		RequestsPerSecond: 4,
		Burst:             6,
		SuggestPath:       DefaultSuggestPath,
		ImagePath:         DefaultImagePath,
		MusicPath:         DefaultMusicPath,
		MaxImageBytes:     32 << 20,
		UserAgent:         "lofi-hack",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the generation backend. It is safe for concurrent use.
//
// Example:
//
//	client, err := generator.NewClientWithConfig(cfg)
//	if err != nil {
//	    return err
//	}
//	words, err := client.Suggest(ctx, "rainy night")
type Client struct {
	config     *ClientConfig
	base       *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
}

var (
	_ orchestrator.SuggestionProvider = (*Client)(nil)
	_ orchestrator.ImageProvider      = (*Client)(nil)
	_ orchestrator.AudioProvider      = (*Client)(nil)
)

// NewClient creates a client with default configuration.
func NewClient() *Client {
	c, _ := NewClientWithConfig(DefaultConfig())
	return c
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.Burst == 0 {
		config.Burst = defaults.Burst
	}
	if config.SuggestPath == "" {
		config.SuggestPath = defaults.SuggestPath
	}
	if config.ImagePath == "" {
		config.ImagePath = defaults.ImagePath
	}
	if config.MusicPath == "" {
		config.MusicPath = defaults.MusicPath
	}
	if config.MaxImageBytes == 0 {
		config.MaxImageBytes = defaults.MaxImageBytes
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", config.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", config.BaseURL)
	}

	limit := rate.Limit(config.RequestsPerSecond)
	if config.RequestsPerSecond < 0 {
		limit = rate.Inf
	}

	return &Client{
		config: config,
		base:   base,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(limit, config.Burst),
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// NormalizePrompt trims the prompt and puts it in Unicode NFC form so the
// backend sees one spelling of accented input.
func NormalizePrompt(prompt string) string {
	return norm.NFC.String(strings.TrimSpace(prompt))
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable. Any HTTP response
// below 500 counts as running.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return &ClientError{Type: ErrTypeStatus, Message: "backend unhealthy", StatusCode: resp.StatusCode}
	}
	return nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Suggest returns mood words for prompt. A response without suggestions
// yields an empty slice.
func (c *Client) Suggest(ctx context.Context, prompt string) (words []string, err error) {
	ctx, span := c.startSpan(ctx, "generator.Suggest", prompt)
	defer func() { endSpan(span, err) }()

	resp, err := c.post(ctx, c.config.SuggestPath, prompt)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	var result SuggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode suggestions", Cause: err}
	}
	span.SetAttributes(attribute.Int("suggestions.count", len(result.Suggestions)))
	return result.Suggestions, nil
}

// GenerateImage returns the encoded image for prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (data []byte, err error) {
	ctx, span := c.startSpan(ctx, "generator.GenerateImage", prompt)
	defer func() { endSpan(span, err) }()

	resp, err := c.post(ctx, c.config.ImagePath, prompt)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, perr := mime.ParseMediaType(ct)
		if perr != nil || !strings.HasPrefix(mediaType, "image/") {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "unexpected content type " + ct}
		}
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, c.config.MaxImageBytes+1))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to read image", Cause: err}
	}
	if int64(len(data)) > c.config.MaxImageBytes {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: fmt.Sprintf("image exceeds %d bytes", c.config.MaxImageBytes)}
	}
	if len(data) == 0 {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "empty image body"}
	}
	span.SetAttributes(attribute.Int("image.bytes", len(data)))
	return data, nil
}

// GenerateAudio returns the absolute locator of the generated track.
func (c *Client) GenerateAudio(ctx context.Context, prompt string) (locator string, err error) {
	ctx, span := c.startSpan(ctx, "generator.GenerateAudio", prompt)
	defer func() { endSpan(span, err) }()

	resp, err := c.post(ctx, c.config.MusicPath, prompt)
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	var result MusicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode music response", Cause: err}
	}
	if strings.TrimSpace(result.AudioPath) == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "music response has no audioPath"}
	}

	locator, err = c.ResolveLocator(result.AudioPath)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("audio.locator", locator))
	return locator, nil
}

// ResolveLocator turns a backend path into an absolute URL. Absolute URLs
// are returned unchanged.
func (c *Client) ResolveLocator(path string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid audio path " + path, Cause: err}
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	// Backend paths are rooted at the service, not at any base path prefix.
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}
	return c.base.ResolveReference(ref).String(), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) post(ctx context.Context, path, prompt string) (*http.Response, error) {
	prompt = NormalizePrompt(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "rate limiter", Cause: err}
	}

	body, err := json.Marshal(PromptRequest{Prompt: prompt})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal request", Cause: err}
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drainAndClose(resp.Body)
		return nil, statusError(resp)
	}
	return resp, nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func (c *Client) startSpan(ctx context.Context, name, prompt string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// classifyTransport maps an http.Client error onto the sentinel types.
func classifyTransport(err error) error {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
	default:
		return &ClientError{Type: ErrTypeNotRunning, Message: ErrNotRunning.Message, Cause: err}
	}
}

// statusError builds an error from a non-2xx response, preferring the
// backend's detail message when it sent one.
func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := "backend request failed"
	var body errorResponse
	if json.Unmarshal(snippet, &body) == nil && body.Detail != "" {
		msg += ": " + body.Detail
	}
	return &ClientError{Type: ErrTypeStatus, Message: msg, StatusCode: resp.StatusCode}
}

// drainAndClose drains the body so the connection can be reused.
func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
	r.Close()
}
