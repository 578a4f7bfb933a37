package faqrepo

import (
	"context"
	"fmt"
	"os"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// FileSource reads the catalog from a YAML seed on disk at every load.
type FileSource struct {
	path string
}

// NewFileSource constructs the source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LoadRecords implements faq.CatalogSource.
func (s *FileSource) LoadRecords(_ context.Context) ([]faq.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	return ParseSeed(data)
}

var _ faq.CatalogSource = (*FileSource)(nil)
