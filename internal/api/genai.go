package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	apierrors "github.com/diogo/whiskerion/internal/errors"
)

// Endpoint names used in APIError
const (
	EndpointCreate = "chats.create"
	EndpointSend   = "chats.sendMessage"
)

// GenAIProvider creates chat sessions on the Gemini API
type GenAIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ProviderOption configures a GenAIProvider
type ProviderOption func(*GenAIProvider)

// WithBaseURL points the provider at a different API host
func WithBaseURL(url string) ProviderOption {
	return func(p *GenAIProvider) {
		p.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used by the SDK
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *GenAIProvider) {
		p.httpClient = c
	}
}

// NewGenAIProvider creates a provider. A missing key is reported by Create,
// not here, so startup failures flow through a single path.
func NewGenAIProvider(apiKey string, opts ...ProviderOption) *GenAIProvider {
	p := &GenAIProvider{apiKey: apiKey}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Create opens a chat with the given model and system instruction
func (p *GenAIProvider) Create(ctx context.Context, cfg SessionConfig) (Session, error) {
	if p.apiKey == "" {
		return nil, apierrors.ErrNoAPIKey
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     p.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	var genCfg *genai.GenerateContentConfig
	if cfg.SystemInstruction != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
		}
	}

	chat, err := client.Chats.Create(ctx, cfg.Model, genCfg, nil)
	if err != nil {
		return nil, wrapGenAIError(EndpointCreate, err)
	}

	return &genaiSession{chat: chat}, nil
}

type genaiSession struct {
	chat *genai.Chat
}

func (s *genaiSession) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", wrapGenAIError(EndpointSend, err)
	}

	reply := resp.Text()
	if strings.TrimSpace(reply) == "" {
		return "", apierrors.ErrNoContent
	}
	return reply, nil
}

// wrapGenAIError converts SDK errors into APIError so callers can inspect the status
func wrapGenAIError(endpoint string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", apierrors.NewAPIError(apiErr.Code, endpoint, apiErr.Message), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return fmt.Errorf("%w: %w", apierrors.NewAPIError(apiErrPtr.Code, endpoint, apiErrPtr.Message), err)
	}
	return fmt.Errorf("%s failed: %w", endpoint, err)
}
