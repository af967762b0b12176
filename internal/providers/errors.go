package providers

import (
	"errors"
	"fmt"
)

// UpstreamError reports a failed call to the hosted model: transport
// failures, non-2xx statuses, and streams that break mid-answer.
type UpstreamError struct {
	Provider string
	Status   string
	Body     string
	Err      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != "" && e.Body != "":
		return fmt.Sprintf("%s returned %s: %s", e.Provider, e.Status, e.Body)
	case e.Status != "":
		return fmt.Sprintf("%s returned %s", e.Provider, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s request failed", e.Provider)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err came from the model provider.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// badResponse reports a reply the provider sent that carries no usable answer.
func badResponse(provider, format string, args ...any) error {
	return &UpstreamError{Provider: provider, Err: fmt.Errorf(format, args...)}
}
