// Package persistence turns notebooks into bytes and back.
//
// Documents carry a schema version. Loading a document written with any
// other version fails with domain.ErrUnsupportedVersion; there is no
// migration. Cells that were running when a notebook was saved are
// written as expired, since no evaluation survives a restart.
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Codec serializes notebooks.
type Codec interface {
	Marshal(nb *domain.Notebook) ([]byte, error)
	Unmarshal(data []byte) (*domain.Notebook, error)
}

// Extension is the file extension of notebooks written with JSONCodec.
const Extension = ".cado"

// JSONCodec is the default document format.
// Numbers in outputs are decoded as json.Number so integers survive a round trip.
type JSONCodec struct {
	Indent bool
}

func (c JSONCodec) Marshal(nb *domain.Notebook) ([]byte, error) {
	doc := prepare(nb)
	if c.Indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

func (c JSONCodec) Unmarshal(data []byte) (*domain.Notebook, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var nb domain.Notebook
	if err := dec.Decode(&nb); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	return finish(&nb)
}

// YAMLCodec writes notebooks as YAML documents, handy for review in version control.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(nb *domain.Notebook) ([]byte, error) {
	return yaml.Marshal(prepare(nb))
}

func (YAMLCodec) Unmarshal(data []byte) (*domain.Notebook, error) {
	var nb domain.Notebook
	if err := yaml.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	return finish(&nb)
}

// CodecFor picks a codec from a file name: .yaml and .yml use YAMLCodec,
// everything else JSONCodec.
func CodecFor(name string) Codec {
	switch {
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		return YAMLCodec{}
	default:
		return JSONCodec{Indent: true}
	}
}

// prepare returns the copy of nb that is written to disk.
func prepare(nb *domain.Notebook) *domain.Notebook {
	doc := nb.Snapshot()
	if doc.Version == 0 {
		doc.Version = domain.SchemaVersion
	}
	for _, c := range doc.Cells {
		if c.Status == domain.StatusRunning {
			c.Expire()
		}
	}
	return doc
}

// finish validates a decoded document and fills defaults.
func finish(nb *domain.Notebook) (*domain.Notebook, error) {
	if nb.Version != domain.SchemaVersion {
		return nil, &domain.VersionError{Got: nb.Version, Want: domain.SchemaVersion}
	}
	if nb.Cells == nil {
		nb.Cells = []*domain.Cell{}
	}
	for _, c := range nb.Cells {
		if c.InputNames == nil {
			c.InputNames = []string{}
		}
		if c.Language == "" {
			c.Language = domain.DefaultLanguage
		}
		switch c.Status {
		case domain.StatusOK, domain.StatusError, domain.StatusExpired:
		default:
			c.Expire()
		}
		if c.Status != domain.StatusOK {
			c.Output = nil
		}
	}
	return nb, nil
}
