package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/translations"
)

// fileSourceHandler handles translation documents stored in local files
type fileSourceHandler struct{}

// NewFileSourceHandler creates a new file source handler
func NewFileSourceHandler() SourceHandler {
	return &fileSourceHandler{}
}

// Validate validates the file source configuration
func (*fileSourceHandler) Validate(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if cfg.Source.Type != config.SourceTypeFile {
		return fmt.Errorf("invalid source type: expected %s, got %s",
			config.SourceTypeFile, cfg.Source.Type)
	}

	if cfg.Source.File == nil {
		return fmt.Errorf("file configuration is required")
	}

	if cfg.Source.File.Path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	return nil
}

// FetchDocument reads and decodes the translation document from the local file
func (h *fileSourceHandler) FetchDocument(ctx context.Context, cfg *config.Config) (*FetchResult, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if err := h.Validate(cfg); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}

	filePath := cfg.Source.File.Path

	//nolint:gosec // File path comes from user configuration, this is expected behavior
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", filePath)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	doc, format, err := decodeDocument(data, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filePath, err)
	}

	logger.V(1).Info("Read translations file", "path", filePath, "format", format, "bytes", len(data))

	return NewFetchResult(doc, format)
}

// decodeDocument decodes JSON or YAML data based on the file extension
func decodeDocument(data []byte, filePath string) (translations.Document, string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, "", fmt.Errorf("invalid YAML: %w", err)
		}
		if raw == nil {
			return translations.Document{}, FormatYAML, nil
		}
		doc, err := translations.Normalize(raw)
		if err != nil {
			return nil, "", err
		}
		return doc, FormatYAML, nil
	default:
		var doc translations.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, "", fmt.Errorf("invalid JSON: %w", err)
		}
		if doc == nil {
			doc = translations.Document{}
		}
		return doc, FormatJSON, nil
	}
}
