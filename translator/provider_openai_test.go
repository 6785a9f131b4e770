package translator_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	openai "github.com/sashabaranov/go-openai"

	"github.com/carefluent/medtranslate/translator"
)

// mockOpenAIClient is a scriptable OpenAIClient.
type mockOpenAIClient struct {
	chatFn       func(req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	transcribeFn func(req openai.AudioRequest) (openai.AudioResponse, error)
	lastChat     openai.ChatCompletionRequest
}

func (m *mockOpenAIClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastChat = req
	if m.chatFn == nil {
		return openai.ChatCompletionResponse{}, errors.New("not scripted")
	}
	return m.chatFn(req)
}

func (m *mockOpenAIClient) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	if m.transcribeFn == nil {
		return openai.AudioResponse{}, errors.New("not scripted")
	}
	return m.transcribeFn(req)
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

var _ = Describe("OpenAIProvider", func() {
	var (
		client   *mockOpenAIClient
		provider *translator.OpenAIProvider
	)

	BeforeEach(func() {
		client = &mockOpenAIClient{}
		provider = translator.NewOpenAIProviderWithClient(client, "gpt-4")
	})

	Describe("Complete", func() {
		It("sends system and user messages and returns the trimmed reply", func() {
			client.chatFn = func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return chatResponse("  hola mundo \n"), nil
			}

			out, err := provider.Complete(context.Background(), "system", "user", 0.3, 1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("hola mundo"))

			Expect(client.lastChat.Model).To(Equal("gpt-4"))
			Expect(client.lastChat.Temperature).To(Equal(float32(0.3)))
			Expect(client.lastChat.MaxTokens).To(Equal(1000))
			Expect(client.lastChat.Messages).To(HaveLen(2))
			Expect(client.lastChat.Messages[0].Role).To(Equal(openai.ChatMessageRoleSystem))
			Expect(client.lastChat.Messages[0].Content).To(Equal("system"))
			Expect(client.lastChat.Messages[1].Role).To(Equal(openai.ChatMessageRoleUser))
			Expect(client.lastChat.Messages[1].Content).To(Equal("user"))
		})

		It("fails on a response without choices", func() {
			client.chatFn = func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, nil
			}

			_, err := provider.Complete(context.Background(), "system", "user", 0.3, 1000)
			Expect(err).To(MatchError(ContainSubstring("no choices")))
		})

		It("classifies quota exhaustion as non-retryable", func() {
			client.chatFn = func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, &openai.APIError{
					Type:    "insufficient_quota",
					Message: "You exceeded your current quota",
				}
			}

			_, err := provider.Complete(context.Background(), "system", "user", 0.3, 1000)
			Expect(translator.IsQuotaExceeded(err)).To(BeTrue())
		})

		It("classifies authentication failures", func() {
			client.chatFn = func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, &openai.APIError{
					HTTPStatusCode: 401,
					Message:        "invalid api key",
				}
			}

			_, err := provider.Complete(context.Background(), "system", "user", 0.3, 1000)
			var perr *translator.ProviderError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Provider).To(Equal(translator.ServicePrimary))
			Expect(perr.Reason).To(Equal(translator.ReasonAuth))
		})

		It("classifies other failures as transient", func() {
			client.chatFn = func(_ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
				return openai.ChatCompletionResponse{}, errors.New("connection reset")
			}

			_, err := provider.Complete(context.Background(), "system", "user", 0.3, 1000)
			var perr *translator.ProviderError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Reason).To(Equal(translator.ReasonTransient))
		})
	})

	Describe("Transcribe", func() {
		It("requests a Whisper transcription with hint, prompt, and temperature", func() {
			var captured openai.AudioRequest
			client.transcribeFn = func(req openai.AudioRequest) (openai.AudioResponse, error) {
				captured = req
				return openai.AudioResponse{Text: " patient is stable ", Language: "en"}, nil
			}

			out, err := provider.Transcribe(context.Background(), []byte("wav"), "en", "medical context", 0.2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Text).To(Equal("patient is stable"))
			Expect(out.DetectedLanguage).To(Equal("en"))

			Expect(captured.Model).To(Equal(openai.Whisper1))
			Expect(captured.Language).To(Equal("en"))
			Expect(captured.Prompt).To(Equal("medical context"))
			Expect(captured.Temperature).To(Equal(float32(0.2)))
			Expect(captured.Reader).NotTo(BeNil())
		})

		It("falls back to the language hint when none is detected", func() {
			client.transcribeFn = func(_ openai.AudioRequest) (openai.AudioResponse, error) {
				return openai.AudioResponse{Text: "hola"}, nil
			}

			out, err := provider.Transcribe(context.Background(), []byte("wav"), "es", "", 0.2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.DetectedLanguage).To(Equal("es"))
		})
	})
})
