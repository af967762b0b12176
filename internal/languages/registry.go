// Package languages holds the per-language responders a query can be routed to.
package languages

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned by Lookup when no responder owns the tag.
	ErrNotFound = errors.New("language not registered")
	// ErrDuplicateLanguage matches every *DuplicateLanguageError.
	ErrDuplicateLanguage = errors.New("duplicate language")
)

// DuplicateLanguageError reports a second responder claiming a tag.
type DuplicateLanguageError struct {
	Tag string
}

func (e *DuplicateLanguageError) Error() string {
	return fmt.Sprintf("language %q is already registered", e.Tag)
}

// Is lets errors.Is(err, ErrDuplicateLanguage) match.
func (e *DuplicateLanguageError) Is(target error) bool {
	return target == ErrDuplicateLanguage
}

// Responder is a persona bound to exactly one language.
type Responder struct {
	Tag          string
	Persona      string
	Instructions string
}

// Registry owns the fixed set of responders. It is populated at startup
// and only read afterwards.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byTag map[string]Responder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTag: map[string]Responder{}}
}

// FromTags registers a responder with the default persona for every tag,
// in order. The first duplicate aborts construction.
func FromTags(tags []string) (*Registry, error) {
	r := NewRegistry()
	for _, tag := range tags {
		if _, err := r.Register(tag, ""); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultPersona is the role given to the responder for tag.
func DefaultPersona(tag string) string {
	return fmt.Sprintf("You can only answer in %s", Canonical(tag))
}

// Register adds a responder for tag. The tag is stored in canonical form,
// so "english" and "English" claim the same language.
func (r *Registry) Register(tag, persona string) (Responder, error) {
	tag = Canonical(tag)
	if tag == "" {
		return Responder{}, fmt.Errorf("language tag is required")
	}
	persona = strings.TrimSpace(persona)
	if persona == "" {
		persona = DefaultPersona(tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTag[tag]; ok {
		return Responder{}, &DuplicateLanguageError{Tag: tag}
	}
	responder := Responder{
		Tag:          tag,
		Persona:      persona,
		Instructions: fmt.Sprintf("You must only respond in %s", tag),
	}
	r.byTag[tag] = responder
	r.order = append(r.order, tag)
	return responder, nil
}

// Lookup returns the responder registered for exactly tag.
func (r *Registry) Lookup(tag string) (Responder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	responder, ok := r.byTag[tag]
	if !ok {
		return Responder{}, fmt.Errorf("%w: %q", ErrNotFound, tag)
	}
	return responder, nil
}

// Tags returns the registered tags in registration order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports how many responders are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
