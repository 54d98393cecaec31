package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when a request does not name one.
	DefaultModel = "gemini-1.5-flash"
)

// Client implements ports.TextGenerator against the generateContent REST API.
// Every call is a single best-effort attempt; cancellation comes from ctx
// only, no client-side timeout is enforced.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	defaultModel string
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Client) { g.httpClient = c }
}

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(url string) Option {
	return func(g *Client) { g.baseURL = url }
}

// WithDefaultModel overrides the fallback model identifier.
func WithDefaultModel(model string) Option {
	return func(g *Client) { g.defaultModel = model }
}

// NewClient returns a generator. An empty apiKey is allowed; calls will fail
// at call time with ErrMissingAPIKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{},
		baseURL:      defaultBaseURL,
		apiKey:       apiKey,
		defaultModel: DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ErrMissingAPIKey is returned when no API credential is configured.
var ErrMissingAPIKey = errors.New("gemini: API key not configured")

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements ports.TextGenerator. Images, when present, are sent as
// multi-part content alongside the prompt.
func (c *Client) Generate(ctx context.Context, input ports.GenerateInput) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	model := input.Model
	if model == "" {
		model = c.defaultModel
	}
	parts := []part{{Text: input.Prompt}}
	for _, img := range input.Images {
		parts = append(parts, part{InlineData: &inlineData{MIMEType: img.MIMEType, Data: img.Data}})
	}
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("gemini: %s (status %d)", out.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

var _ ports.TextGenerator = (*Client)(nil)
