package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/themeboard/internal/domain"
	"github.com/timmy/themeboard/internal/prompts"
)

// ThemeLabeler turns the member texts of one cluster into a short label.
// Failures wrap domain.ErrLabeling.
type ThemeLabeler interface {
	Label(ctx context.Context, texts []string) (string, error)
}

// LLMLabeler labels clusters through an OpenAI-compatible chat completions API.
type LLMLabeler struct {
	client       *resty.Client
	model        string
	endpoint     string
	maxTokens    int
	stop         string
	systemPrompt string
}

// LabelerConfig holds configuration for the LLM labeler.
type LabelerConfig struct {
	Model        string
	APIKey       string
	BaseURL      string
	MaxTokens    int
	Stop         string
	Timeout      time.Duration
	SystemPrompt string
}

// NewLLMLabeler creates a new LLM-backed labeler.
func NewLLMLabeler(cfg *LabelerConfig) *LLMLabeler {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = prompts.ThemeLabelSystemPrompt
	}

	return &LLMLabeler{
		client:       client,
		model:        cfg.Model,
		endpoint:     baseURL + "/chat/completions",
		maxTokens:    cfg.MaxTokens,
		stop:         cfg.Stop,
		systemPrompt: systemPrompt,
	}
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Stop                string        `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Label asks the model for one label covering texts.
func (l *LLMLabeler) Label(ctx context.Context, texts []string) (string, error) {
	if len(texts) == 0 {
		return "", fmt.Errorf("%w: no texts to label", domain.ErrLabeling)
	}

	req := chatRequest{
		Model: l.model,
		Messages: []chatMessage{
			{Role: "system", Content: l.systemPrompt},
			{Role: "user", Content: prompts.BuildThemeLabelPrompt(texts)},
		},
		MaxCompletionTokens: l.maxTokens,
		Stop:                l.stop,
	}

	var resp chatResponse
	httpResp, err := l.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(l.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion call failed: %v", domain.ErrLabeling, err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil && resp.Error.Message != "" {
			return "", &StatusError{Code: httpResp.StatusCode(), Err: fmt.Errorf("%w: %s", domain.ErrLabeling, resp.Error.Message)}
		}
		return "", &StatusError{Code: httpResp.StatusCode(), Err: fmt.Errorf("%w: status %d", domain.ErrLabeling, httpResp.StatusCode())}
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", domain.ErrLabeling)
	}
	label := prompts.CleanLabel(resp.Choices[0].Message.Content)
	if label == "" {
		return "", fmt.Errorf("%w: empty label", domain.ErrLabeling)
	}
	return label, nil
}

// StatusError carries the HTTP status of a failed labeling call so the retry
// policy can tell transient failures from permanent ones.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == 408 || e.Code == 429 || e.Code >= 500
}
