// Package registry routes evaluation requests to an evaluator by language.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/ports"
)

// Registry manages the available evaluators. It is itself a ports.Evaluator.
// Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[domain.Language]ports.Evaluator
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		evaluators: make(map[domain.Language]ports.Evaluator),
	}
}

// Register adds an evaluator for a language.
// If one exists for the same language, it is overwritten.
func (r *Registry) Register(lang domain.Language, ev ports.Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[lang] = ev
}

// Languages returns the registered languages, sorted.
func (r *Registry) Languages() []domain.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Language, 0, len(r.evaluators))
	for l := range r.evaluators {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Evaluate looks up the evaluator for the request's language and runs it.
func (r *Registry) Evaluate(ctx context.Context, req domain.EvalRequest) (domain.EvalResult, error) {
	r.mu.RLock()
	ev, ok := r.evaluators[req.Language]
	r.mu.RUnlock()

	if !ok {
		return domain.EvalResult{}, fmt.Errorf("no evaluator for language %q", req.Language)
	}
	return ev.Evaluate(ctx, req)
}
