package completion

import (
	"context"

	"github.com/nguyentantai21042004/subflow/pkg/stopflag"
)

// Provider describes one configured completion endpoint. The pipeline treats
// it as an opaque capability to perform completions and never persists it.
type Provider struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Backend string
}

// ChunkFunc receives each streamed text increment as it arrives, in order,
// synchronously with the network read.
type ChunkFunc func(text string)

// Client performs streaming completion calls against a single provider.
//
// Complete issues one streaming request and returns the accumulated text.
// The stop flag and ctx are observed at every chunk boundary; interruption
// aborts the in-flight request and returns ErrCancelled. Transport failures
// return *NetworkError, non-success responses and malformed stream payloads
// return *ProviderError. Complete never retries; retrying is stage policy.
type Client interface {
	Complete(ctx context.Context, prompt, input string, onChunk ChunkFunc, stop *stopflag.Flag) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	Check(ctx context.Context) error
}
