package completion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/subflow/pkg/stopflag"
)

// implOpenAI talks to OpenAI-compatible chat-completions endpoints
// (DeepSeek and most hosted providers use this wire format). BaseURL is the
// full completions URL, e.g. https://api.deepseek.com/chat/completions.
type implOpenAI struct {
	provider   Provider
	httpClient *http.Client
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *implOpenAI) Complete(ctx context.Context, prompt, input string, onChunk ChunkFunc, stop *stopflag.Flag) (string, error) {
	if stop.Stopped() {
		return "", ErrCancelled
	}

	payload := chatCompletionRequest{
		Model: c.provider.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: input},
		},
		Stream: true,
	}

	resp, err := c.send(ctx, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		if stop.Stopped() || ctx.Err() != nil {
			// Closing the body (deferred) aborts the request and
			// releases the connection.
			return "", ErrCancelled
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", &ProviderError{Provider: c.provider.Name, Message: fmt.Sprintf("malformed stream payload: %v", err)}
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			if onChunk != nil {
				onChunk(text)
			}
			full.WriteString(text)
		}
	}

	if err := scanner.Err(); err != nil {
		if stop.Stopped() || ctx.Err() != nil {
			return "", ErrCancelled
		}
		return "", &NetworkError{Provider: c.provider.Name, Err: fmt.Errorf("read stream: %w", err)}
	}

	return full.String(), nil
}

// ListModels fetches the provider's model catalog. The models endpoint is
// derived from the completions URL the same way the configuration UI flow
// expects: .../chat/completions -> .../models.
func (c *implOpenAI) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelsURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("list models: new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Provider: c.provider.Name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Provider: c.provider.Name, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &ProviderError{Provider: c.provider.Name, Status: resp.StatusCode, Message: string(body)}
	}

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProviderError{Provider: c.provider.Name, Message: fmt.Sprintf("decode models response: %v", err)}
	}

	var models []string
	for _, m := range parsed.Data {
		if m.ID != "" {
			models = append(models, m.ID)
		}
	}
	return models, nil
}

// Check issues a minimal non-streaming completion to verify the key, URL and
// model are usable together.
func (c *implOpenAI) Check(ctx context.Context) error {
	payload := chatCompletionRequest{
		Model: c.provider.Model,
		Messages: []chatMessage{
			{Role: "user", Content: "Hi"},
		},
		MaxTokens: 5,
	}

	resp, err := c.send(ctx, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Provider: c.provider.Name, Err: fmt.Errorf("read body: %w", err)}
	}

	var parsed struct {
		Choices []json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &ProviderError{Provider: c.provider.Name, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return &ProviderError{Provider: c.provider.Name, Message: "response has no choices"}
	}
	return nil
}

func (c *implOpenAI) send(ctx context.Context, payload chatCompletionRequest) (*http.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, &NetworkError{Provider: c.provider.Name, Err: err}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &ProviderError{Provider: c.provider.Name, Status: resp.StatusCode, Message: string(body)}
	}

	return resp, nil
}

func (c *implOpenAI) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.provider.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *implOpenAI) modelsURL() string {
	base := strings.TrimSpace(c.provider.BaseURL)
	if strings.Contains(base, "/chat/completions") {
		return strings.Replace(base, "/chat/completions", "/models", 1)
	}
	return strings.TrimRight(base, "/") + "/models"
}
