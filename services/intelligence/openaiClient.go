package ai

import (
	"context"

	"medibot/models"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClassifier classifies messages with a chat completion model.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	return &OpenAIClassifier{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*models.Classification, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, &ClassificationError{Reason: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ClassificationError{Reason: "openai returned no choices"}
	}
	return ParseModelOutput(resp.Choices[0].Message.Content)
}
