package middleware

import (
	"regexp"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/persistence"
)

const redacted = "***"

type redactMiddleware struct {
	next     persistence.Codec
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks cached outputs before they are written.
// A cell whose output name matches a pattern has its whole output masked;
// inside map outputs, values under matching keys are masked at any depth.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next persistence.Codec) persistence.Codec {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Marshal(nb *domain.Notebook) ([]byte, error) {
	// The engine keeps using nb; mask a copy.
	doc := nb.Snapshot()
	for _, c := range doc.Cells {
		if c.Output == nil {
			continue
		}
		if m.matches(c.OutputName) {
			c.Output = redacted
			continue
		}
		c.Output = m.mask(c.Output)
	}
	return m.next.Marshal(doc)
}

func (m *redactMiddleware) Unmarshal(data []byte) (*domain.Notebook, error) {
	return m.next.Unmarshal(data)
}

func (m *redactMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// mask returns a masked copy of v; the input is never modified.
func (m *redactMiddleware) mask(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, sub := range t {
			if m.matches(k) {
				out[k] = redacted
				continue
			}
			out[k] = m.mask(sub)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, sub := range t {
			out[i] = m.mask(sub)
		}
		return out
	default:
		return v
	}
}
