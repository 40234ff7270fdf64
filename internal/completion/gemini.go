package completion

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/subflow/pkg/stopflag"
)

// implGemini streams completions through the Gemini API. The SDK does not
// separate transport failures from API failures, so non-cancellation errors
// are reported as provider errors.
type implGemini struct {
	provider Provider
}

func (c *implGemini) Complete(ctx context.Context, prompt, input string, onChunk ChunkFunc, stop *stopflag.Flag) (string, error) {
	if stop.Stopped() {
		return "", ErrCancelled
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.provider.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &NetworkError{Provider: c.provider.Name, Err: fmt.Errorf("create client: %w", err)}
	}

	text := prompt + "\n\n---\n\n" + input

	var full strings.Builder
	for resp, err := range client.Models.GenerateContentStream(ctx, c.provider.Model, genai.Text(text), nil) {
		if err != nil {
			if stop.Stopped() || ctx.Err() != nil {
				return "", ErrCancelled
			}
			return "", &ProviderError{Provider: c.provider.Name, Message: err.Error()}
		}
		if stop.Stopped() || ctx.Err() != nil {
			return "", ErrCancelled
		}

		chunk := responseText(resp)
		if chunk == "" {
			continue
		}
		if onChunk != nil {
			onChunk(chunk)
		}
		full.WriteString(chunk)
	}

	return full.String(), nil
}

// ListModels is not available through this backend; the Gemini model catalog
// is not served from a chat-completions style endpoint.
func (c *implGemini) ListModels(ctx context.Context) ([]string, error) {
	return nil, fmt.Errorf("provider %s: model listing is not supported for the gemini backend", c.provider.Name)
}

// Check issues a one-shot generation to verify the key and model.
func (c *implGemini) Check(ctx context.Context) error {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.provider.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &NetworkError{Provider: c.provider.Name, Err: fmt.Errorf("create client: %w", err)}
	}

	result, err := client.Models.GenerateContent(ctx, c.provider.Model, genai.Text("Hi"), nil)
	if err != nil {
		return &ProviderError{Provider: c.provider.Name, Message: err.Error()}
	}
	if result == nil || len(result.Candidates) == 0 {
		return &ProviderError{Provider: c.provider.Name, Message: "empty response"}
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}
