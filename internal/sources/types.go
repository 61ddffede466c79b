package sources

import (
	"context"
	"fmt"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/translations"
)

// Formats of the fetched source data
const (
	FormatSheet = "sheet"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

//go:generate mockgen -destination=mocks/mock_source_handler.go -package=mocks -source=types.go SourceHandler,SourceHandlerFactory

// SourceHandler is an interface with methods to fetch data from external data sources
type SourceHandler interface {
	// FetchDocument retrieves the translation document from the source
	FetchDocument(ctx context.Context, cfg *config.Config) (*FetchResult, error)

	// Validate validates the source configuration
	Validate(cfg *config.Config) error
}

// FetchResult contains the result of a fetch operation
type FetchResult struct {
	// Document is the fetched translation document, tags entry included
	Document translations.Document

	// Hash is the SHA256 hash of the canonical document encoding
	Hash string

	// KeyCount is the number of translation values across all locales
	KeyCount int

	// Format indicates the original format of the source data
	Format string
}

// NewFetchResult creates a new FetchResult, hashing the document
func NewFetchResult(doc translations.Document, format string) (*FetchResult, error) {
	if doc == nil {
		doc = translations.Document{}
	}

	hash, err := doc.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash document: %w", err)
	}

	return &FetchResult{
		Document: doc,
		Hash:     hash,
		KeyCount: doc.CountKeys(),
		Format:   format,
	}, nil
}

// SourceHandlerFactory creates source handlers based on source type
type SourceHandlerFactory interface {
	// CreateHandler creates a source handler for the given source type
	CreateHandler(sourceType string) (SourceHandler, error)
}
