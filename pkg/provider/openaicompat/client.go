// Package openaicompat wraps vendors that expose an OpenAI-compatible
// chat completions endpoint (perplexity, grok, deepseek). Only the id,
// base URL, and default model differ per vendor.
package openaicompat

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

type Adapter struct {
	id      string
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ provider.Adapter = &Adapter{}

func New(id, apiKey, baseURL, model string) *Adapter {
	return &Adapter{
		id:      id,
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
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
	return a.id
}

func (a *Adapter) Invoke(ctx context.Context, prompt string) provider.Result {
	if a.apiKey == "" {
		return provider.Failure("%s provider is not configured", a.id)
	}

	reqBody := chatRequest{
		Model:    a.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return provider.Failure("%s: marshal request: %v", a.id, err)
	}

	url := fmt.Sprintf("%s/chat/completions", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return provider.Failure("%s: create request: %v", a.id, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.apiKey))

	resp, err := a.client.Do(req)
	if err != nil {
		return provider.Failure("%s request failed: %v", a.id, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return provider.Failure("%s api error (status %d): %s", a.id, resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return provider.Failure("%s: decode response: %v", a.id, err)
	}
	if chatResp.Error != nil {
		return provider.Failure("%s api returned error: %s", a.id, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return provider.Failure("empty choices from %s api", a.id)
	}

	return provider.Result{Success: true, Content: chatResp.Choices[0].Message.Content}
}
