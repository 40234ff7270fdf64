package completion

import (
	"fmt"
	"net/http"
	"time"
)

// Streaming responses for long segments can take several minutes end to end.
const defaultHTTPTimeout = 10 * time.Minute

// Option customizes the client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client (useful for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// New constructs a Client for the provider's backend.
func New(provider Provider, opts ...Option) (Client, error) {
	o := options{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch provider.Backend {
	case "", "openai":
		return &implOpenAI{provider: provider, httpClient: o.httpClient}, nil
	case "gemini":
		return &implGemini{provider: provider}, nil
	default:
		return nil, fmt.Errorf("unknown completion backend %q", provider.Backend)
	}
}
