// Package revisor contains services for fetching, translating and
// summarizing articles.
package revisor

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"net/http"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
)

//go:embed data/translate.txt
var translatePrompt string

//go:embed data/summary.txt
var summaryPrompt string

//go:generate moq -out mock_openai_client.go . OpenAIClient
// OpenAIClient is interface for OpenAI-compatible client with the possibility to mock it
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// modelChat is the DeepSeek general-purpose chat model.
const modelChat = "deepseek-chat"

// low temperature: translation and summarization reward fidelity,
// not creativity
const temperature = 0.3

// DeepSeek is a client to make requests to the DeepSeek chat service
// through its OpenAI-compatible API.
type DeepSeek struct {
	log   *slog.Logger
	cl    OpenAIClient
	cache cache.Cache[string, string]
}

// NewDeepSeek creates new DeepSeek client.
func NewDeepSeek(lg *slog.Logger, cl *http.Client, token string) *DeepSeek {
	config := openai.DefaultConfig(token)
	config.BaseURL = "https://api.deepseek.com/v1"
	config.HTTPClient = cl

	client := openai.NewClientWithConfig(config)

	return &DeepSeek{
		log: lg,
		cl:  &loggingClient{log: lg, cl: client},
		cache: cache.NewCache[string, string]().
			WithLRU().
			WithMaxKeys(100),
	}
}

// Translate translates Chinese article text into English.
func (s *DeepSeek) Translate(ctx context.Context, text string) (string, error) {
	resp, err := s.complete(ctx, translatePrompt, text)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return resp, nil
}

// Summarize produces an executive summary of the translated article.
func (s *DeepSeek) Summarize(ctx context.Context, englishText string) (string, error) {
	resp, err := s.complete(ctx, summaryPrompt, englishText)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return resp, nil
}

// CacheStat returns cache stats.
func (s *DeepSeek) CacheStat() cache.Stats { return s.cache.Stat() }

func (s *DeepSeek) complete(ctx context.Context, system, user string) (string, error) {
	key := completionKey(system, user)
	if resp, ok := s.cache.Get(key); ok {
		return resp, nil
	}

	req := openai.ChatCompletionRequest{
		Model:       modelChat,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := s.cl.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	result := resp.Choices[0].Message.Content
	s.cache.Set(key, result, 0)
	return result, nil
}

func completionKey(system, user string) string {
	h := sha256.Sum256([]byte(system + "\x00" + user))
	return hex.EncodeToString(h[:])
}

type loggingClient struct {
	log *slog.Logger
	cl  OpenAIClient
}

func (l *loggingClient) CreateChatCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	l.log.DebugCtx(ctx, "sending request to deepseek")
	resp, err := l.cl.CreateChatCompletion(ctx, req)
	l.log.DebugCtx(ctx, "response received from deepseek")
	return resp, err
}
