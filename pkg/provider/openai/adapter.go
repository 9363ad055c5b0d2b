package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-orchestra-be/pkg/provider"
)

const defaultModel = "gpt-4o"

type Adapter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ provider.Adapter = &Adapter{}

func New(apiKey string) *Adapter {
	return &Adapter{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   defaultModel,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
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

func (a *Adapter) ID() string {
	return "openai"
}

func (a *Adapter) Invoke(ctx context.Context, prompt string) provider.Result {
	if a.apiKey == "" {
		return provider.Failure("openai provider is not configured")
	}

	reqBody := chatRequest{
		Model:    a.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return provider.Failure("openai: marshal request: %v", err)
	}

	url := fmt.Sprintf("%s/chat/completions", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return provider.Failure("openai: create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))

	resp, err := a.client.Do(req)
	if err != nil {
		return provider.Failure("openai request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return provider.Failure("openai api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return provider.Failure("openai: decode response: %v", err)
	}
	if chatResp.Error != nil {
		return provider.Failure("openai api returned error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return provider.Failure("empty choices from openai api")
	}

	return provider.Result{Success: true, Content: chatResp.Choices[0].Message.Content}
}
