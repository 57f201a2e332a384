package revisor

import (
	"context"
	"testing"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func prepareDeepSeek(mock *OpenAIClientMock) *DeepSeek {
	return &DeepSeek{
		log: slog.Default(),
		cl:  mock,
		cache: cache.NewCache[string, string]().
			WithLRU().
			WithMaxKeys(100),
	}
}

func TestDeepSeek_Translate(t *testing.T) {
	mock := &OpenAIClientMock{
		CreateChatCompletionFunc: func(
			_ context.Context,
			req openai.ChatCompletionRequest,
		) (openai.ChatCompletionResponse, error) {
			assert.Equal(t, modelChat, req.Model)
			assert.InDelta(t, temperature, req.Temperature, 0.001)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
			assert.Equal(t, translatePrompt, req.Messages[0].Content)
			assert.Equal(t, "中文文本", req.Messages[1].Content)
			return openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{{
					Message: openai.ChatCompletionMessage{Content: "english text"},
				}},
			}, nil
		},
	}

	resp, err := prepareDeepSeek(mock).Translate(context.Background(), "中文文本")
	require.NoError(t, err)
	assert.Equal(t, "english text", resp)
}

func TestDeepSeek_Summarize(t *testing.T) {
	mock := &OpenAIClientMock{
		CreateChatCompletionFunc: func(
			_ context.Context,
			req openai.ChatCompletionRequest,
		) (openai.ChatCompletionResponse, error) {
			assert.Equal(t, summaryPrompt, req.Messages[0].Content)
			return openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{{
					Message: openai.ChatCompletionMessage{Content: "OVERVIEW: short"},
				}},
			}, nil
		},
	}

	resp, err := prepareDeepSeek(mock).Summarize(context.Background(), "english text")
	require.NoError(t, err)
	assert.Equal(t, "OVERVIEW: short", resp)
}

func TestDeepSeek_CachesResponses(t *testing.T) {
	mock := &OpenAIClientMock{
		CreateChatCompletionFunc: func(
			context.Context,
			openai.ChatCompletionRequest,
		) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{{
					Message: openai.ChatCompletionMessage{Content: "translated"},
				}},
			}, nil
		},
	}
	ds := prepareDeepSeek(mock)

	for i := 0; i < 3; i++ {
		resp, err := ds.Translate(context.Background(), "同一段文本")
		require.NoError(t, err)
		assert.Equal(t, "translated", resp)
	}

	assert.Len(t, mock.CreateChatCompletionCalls(), 1)

	// a different input must miss the cache
	_, err := ds.Translate(context.Background(), "另一段文本")
	require.NoError(t, err)
	assert.Len(t, mock.CreateChatCompletionCalls(), 2)
}

func TestDeepSeek_NoChoices(t *testing.T) {
	mock := &OpenAIClientMock{
		CreateChatCompletionFunc: func(
			context.Context,
			openai.ChatCompletionRequest,
		) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{}, nil
		},
	}

	_, err := prepareDeepSeek(mock).Translate(context.Background(), "文本")
	assert.ErrorContains(t, err, "no choices")
}
