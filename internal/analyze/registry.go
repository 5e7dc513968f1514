// Package analyze turns transcripts into structured teaching notes by
// calling one of the configured LLM providers.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoCredential is returned when a provider has no stored or
// environment-supplied API key.
var ErrNoCredential = errors.New("no analysis API key configured")

// Client is a single LLM integration.
type Client interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// KeyResolver looks up a stored credential for a provider.
type KeyResolver interface {
	Get(provider string) (key string, found bool, err error)
}

// Service routes analysis requests to the registered provider clients,
// resolving credentials from the keystore with environment fallbacks.
type Service struct {
	clients      map[string]Client
	keys         KeyResolver
	fallbackKeys map[string]string
}

// NewService creates an empty analysis service.
func NewService(keys KeyResolver) *Service {
	return &Service{
		clients:      make(map[string]Client),
		keys:         keys,
		fallbackKeys: make(map[string]string),
	}
}

// Register adds a provider client with its environment fallback key.
func (s *Service) Register(provider string, client Client, fallbackKey string) {
	name := strings.ToLower(provider)
	s.clients[name] = client
	s.fallbackKeys[name] = fallbackKey
}

// Known reports whether a provider name is registered.
func (s *Service) Known(provider string) bool {
	_, ok := s.clients[strings.ToLower(provider)]
	return ok
}

// Analyze builds the notes prompt from text and sends it to provider.
func (s *Service) Analyze(ctx context.Context, provider, text string) (string, error) {
	name := strings.ToLower(provider)
	client, ok := s.clients[name]
	if !ok {
		return "", fmt.Errorf("unknown analysis provider %q", provider)
	}

	key, err := s.resolveKey(name)
	if err != nil {
		return "", err
	}

	result, err := client.Generate(ctx, key, BuildPrompt(text))
	if err != nil {
		return "", fmt.Errorf("%s analysis: %w", name, err)
	}
	return strings.TrimSpace(result), nil
}

func (s *Service) resolveKey(provider string) (string, error) {
	if s.keys != nil {
		key, found, err := s.keys.Get(provider)
		if err != nil {
			return "", fmt.Errorf("resolve credential: %w", err)
		}
		if found && key != "" {
			return key, nil
		}
	}
	if key := s.fallbackKeys[provider]; key != "" {
		return key, nil
	}
	return "", ErrNoCredential
}
