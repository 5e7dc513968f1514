package analyze

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient generates notes through the chat-completion API.
type OpenAIClient struct {
	model string
}

// NewOpenAIClient creates an OpenAI analysis client.
func NewOpenAIClient(model string) *OpenAIClient {
	return &OpenAIClient{model: model}
}

// Generate sends the prompt with the fixed system instruction and
// returns the first choice's content, or "" when none is present.
func (c *OpenAIClient) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	client := openai.NewClient(apiKey)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
