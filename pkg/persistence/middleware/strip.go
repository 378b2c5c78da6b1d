package middleware

import (
	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/persistence"
)

type stripOutputsMiddleware struct {
	next persistence.Codec
}

// NewStripOutputsMiddleware saves notebooks without cached results: every
// cell is written expired, with no output and no captured text. Cells in
// ERROR keep their status so misconfigurations remain visible.
func NewStripOutputsMiddleware() Middleware {
	return func(next persistence.Codec) persistence.Codec {
		return &stripOutputsMiddleware{next: next}
	}
}

func (m *stripOutputsMiddleware) Marshal(nb *domain.Notebook) ([]byte, error) {
	doc := nb.Snapshot()
	for _, c := range doc.Cells {
		if c.Status == domain.StatusError {
			c.Output = nil
			c.Stdout, c.Stderr = "", ""
			continue
		}
		c.Expire()
	}
	return m.next.Marshal(doc)
}

func (m *stripOutputsMiddleware) Unmarshal(data []byte) (*domain.Notebook, error) {
	return m.next.Unmarshal(data)
}
