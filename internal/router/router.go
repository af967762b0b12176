// Package router maps a query to the responder that speaks its language,
// or to a fixed fallback message when no responder does.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sasanktumpati/polyglot/internal/languages"
)

// Kind is the outcome of routing one query.
type Kind int

const (
	// Fallback means no responder speaks the query's language.
	Fallback Kind = iota
	// Dispatch means Decision.Responder answers the query.
	Dispatch
)

func (k Kind) String() string {
	switch k {
	case Dispatch:
		return "dispatch"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decision is the routing result for a single query.
type Decision struct {
	Kind       Kind
	Responder  languages.Responder
	Fallback   string
	Detected   string
	Confidence float64
}

// Dispatched reports whether a responder was selected.
func (d Decision) Dispatched() bool { return d.Kind == Dispatch }

// Registry is the read side of languages.Registry.
type Registry interface {
	Lookup(tag string) (languages.Responder, error)
	Tags() []string
}

// Router classifies queries and picks their responder.
type Router struct {
	registry Registry
	detector Detector
	log      *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for routing diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// New returns a Router over registry using detector for classification.
func New(registry Registry, detector Detector, opts ...Option) *Router {
	r := &Router{
		registry: registry,
		detector: detector,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route classifies query and returns the responder registered for its
// language. Unsupported or undetectable languages produce a Fallback
// decision, never an error. Errors come only from the detector.
func (r *Router) Route(ctx context.Context, query string) (Decision, error) {
	detection, err := r.detector.Detect(ctx, query)
	if err != nil {
		return Decision{}, fmt.Errorf("detect language: %w", err)
	}

	detected := languages.Canonical(detection.Language)
	decision := Decision{Detected: detected, Confidence: detection.Confidence}

	responder, err := r.registry.Lookup(detected)
	switch {
	case err == nil:
		decision.Kind = Dispatch
		decision.Responder = responder
	case errors.Is(err, languages.ErrNotFound):
		decision.Kind = Fallback
		decision.Fallback = FallbackMessage(r.registry.Tags())
	default:
		return Decision{}, fmt.Errorf("lookup %q: %w", detected, err)
	}

	r.log.Debug("query routed",
		"decision", decision.Kind,
		"detected", detected,
		"reported", detection.Language,
		"confidence", detection.Confidence)
	return decision, nil
}

// Languages returns the supported languages in registry order.
func (r *Router) Languages() []string {
	return r.registry.Tags()
}

// FallbackMessage is the answer given to queries in unsupported languages.
func FallbackMessage(tags []string) string {
	return fmt.Sprintf(
		"I can only answer in the following languages: %s. Please ask your question in one of these languages.",
		strings.Join(tags, ", "))
}
