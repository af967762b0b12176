// Package team answers queries by routing them to a language responder and
// asking the model on that responder's behalf.
package team

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sasanktumpati/polyglot/internal/assistant"
	"github.com/sasanktumpati/polyglot/internal/providers"
	"github.com/sasanktumpati/polyglot/internal/router"
)

// ErrEmptyQuery is returned for blank input. Callers are expected to skip it.
var ErrEmptyQuery = errors.New("query is empty")

// Router is the routing side a Team depends on.
type Router interface {
	Route(ctx context.Context, query string) (router.Decision, error)
	Languages() []string
}

// Options tunes how responders talk to the model.
type Options struct {
	Model    string
	Markdown bool
}

// Team pairs a router with the model client its responders speak through.
type Team struct {
	router Router
	client providers.Client
	opts   Options
	log    *slog.Logger
}

// New returns a Team. A nil logger discards diagnostics.
func New(r Router, client providers.Client, opts Options, log *slog.Logger) *Team {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Team{router: r, client: client, opts: opts, log: log}
}

// Languages returns the supported languages in registry order.
func (t *Team) Languages() []string {
	return t.router.Languages()
}

// Respond routes query and writes the answer to w as it arrives. Fallback
// decisions write the fixed fallback text without calling the model.
func (t *Team) Respond(ctx context.Context, query string, w io.Writer) (router.Decision, error) {
	log, decision, err := t.route(ctx, query)
	if err != nil {
		return decision, err
	}
	if !decision.Dispatched() {
		_, err := io.WriteString(w, decision.Fallback)
		return decision, err
	}

	chunks := 0
	err = t.client.Stream(ctx, t.request(decision, query), func(chunk string) error {
		chunks++
		_, werr := io.WriteString(w, chunk)
		return werr
	})
	if err != nil {
		log.Debug("responder failed", "error", err)
		return decision, fmt.Errorf("%s responder: %w", decision.Responder.Tag, err)
	}
	log.Debug("responder finished", "chunks", chunks)
	return decision, nil
}

// Answer is the buffered form of Respond.
func (t *Team) Answer(ctx context.Context, query string) (router.Decision, string, error) {
	log, decision, err := t.route(ctx, query)
	if err != nil {
		return decision, "", err
	}
	if !decision.Dispatched() {
		return decision, decision.Fallback, nil
	}

	resp, err := t.client.Ask(ctx, t.request(decision, query))
	if err != nil {
		log.Debug("responder failed", "error", err)
		return decision, "", fmt.Errorf("%s responder: %w", decision.Responder.Tag, err)
	}
	log.Debug("responder finished", "bytes", len(resp.Text))
	return decision, strings.TrimSpace(resp.Text), nil
}

func (t *Team) route(ctx context.Context, query string) (*slog.Logger, router.Decision, error) {
	log := t.log.With("request_id", uuid.NewString())
	if strings.TrimSpace(query) == "" {
		return log, router.Decision{}, ErrEmptyQuery
	}

	decision, err := t.router.Route(ctx, query)
	if err != nil {
		log.Debug("routing failed", "error", err)
		return log, decision, err
	}
	log.Debug("routing decided",
		"decision", decision.Kind,
		"language", decision.Detected,
		"confidence", decision.Confidence)
	return log, decision, nil
}

func (t *Team) request(decision router.Decision, query string) providers.AskRequest {
	return providers.AskRequest{
		Model:    t.opts.Model,
		Prompt:   assistant.ResponderPrompt(decision.Responder, t.opts.Markdown),
		Question: query,
	}
}
