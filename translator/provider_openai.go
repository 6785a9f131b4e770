package translator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient defines the slice of the OpenAI API the primary provider
// uses, so tests can inject mocks.
type OpenAIClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// OpenAIProvider implements PrimaryProvider on top of the OpenAI API: chat
// completions for translation and validation, Whisper for transcription.
type OpenAIProvider struct {
	client OpenAIClient
	model  string
}

// NewOpenAIProvider creates a provider using the given API key.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  defaultModel,
	}
}

// NewOpenAIProviderWithClient creates a provider around a custom client.
func NewOpenAIProviderWithClient(client OpenAIClient, model string) *OpenAIProvider {
	if model == "" {
		model = defaultModel
	}
	return &OpenAIProvider{client: client, model: model}
}

// Complete performs a chat completion and returns the trimmed response text.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", classifyPrimaryError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider: ServicePrimary,
			Reason:   ReasonTransient,
			Err:      errors.New("empty response with no choices"),
		}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Transcribe converts audio to text via Whisper with a medical context
// prompt and a language hint.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio []byte, languageHint, contextPrompt string, temperature float32) (Transcription, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       openai.Whisper1,
		FilePath:    "audio.wav",
		Reader:      bytes.NewReader(audio),
		Language:    languageHint,
		Prompt:      contextPrompt,
		Temperature: temperature,
		Format:      openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Transcription{}, classifyPrimaryError(err)
	}

	detected := resp.Language
	if detected == "" {
		detected = languageHint
	}
	return Transcription{
		Text:             strings.TrimSpace(resp.Text),
		Confidence:       1.0,
		DetectedLanguage: detected,
	}, nil
}

// classifyPrimaryError maps an OpenAI API error onto the failure taxonomy:
// quota exhaustion is non-retryable and triggers immediate fallback, auth
// failures are terminal for the provider, everything else is transient.
func classifyPrimaryError(err error) error {
	reason := ReasonTransient

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Type == "insufficient_quota" || strings.Contains(apiErr.Message, "insufficient_quota"):
			reason = ReasonQuotaExceeded
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			reason = ReasonAuth
		}
	}

	return &ProviderError{
		Provider: ServicePrimary,
		Reason:   reason,
		Err:      fmt.Errorf("openai request failed: %w", err),
	}
}
