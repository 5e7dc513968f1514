// Package transcribe turns uploaded audio into text, either through the
// hosted Whisper API or by driving a local faster-whisper subprocess.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoCredential is returned when neither the keystore nor the
// environment provides an API key for the remote provider.
var ErrNoCredential = errors.New("no transcription API key configured")

// KeyResolver looks up a stored credential for a provider.
type KeyResolver interface {
	Get(provider string) (key string, found bool, err error)
}

// Remote transcribes audio through the hosted Whisper API.
type Remote struct {
	keys        KeyResolver
	fallbackKey string
	model       string
	language    string
}

// NewRemote creates a remote transcriber. fallbackKey is used when the
// keystore has no "openai" entry.
func NewRemote(keys KeyResolver, fallbackKey, model, language string) *Remote {
	return &Remote{
		keys:        keys,
		fallbackKey: fallbackKey,
		model:       model,
		language:    language,
	}
}

// Transcribe sends audio bytes to the Whisper API and returns the
// trimmed transcript text.
func (r *Remote) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	key, err := r.resolveKey()
	if err != nil {
		return "", err
	}

	client := openai.NewClient(key)
	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: r.language,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("whisper api: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (r *Remote) resolveKey() (string, error) {
	if r.keys != nil {
		key, found, err := r.keys.Get("openai")
		if err != nil {
			return "", fmt.Errorf("resolve credential: %w", err)
		}
		if found && key != "" {
			return key, nil
		}
	}
	if r.fallbackKey != "" {
		return r.fallbackKey, nil
	}
	return "", ErrNoCredential
}
