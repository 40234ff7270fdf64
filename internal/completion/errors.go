package completion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled reports a cooperative stop observed mid-call. It is not a
// failure: remaining work is skipped, already produced results stay valid.
var ErrCancelled = errors.New("completion cancelled")

// NetworkError reports a transport problem (connect, timeout, dropped
// stream). Callers may retry these.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("provider %s: network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProviderError reports a non-success response or a malformed stream
// payload. These are not retried.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if e.Status != 0 {
		return fmt.Sprintf("provider %s: http %d: %s", e.Provider, e.Status, msg)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, msg)
}
