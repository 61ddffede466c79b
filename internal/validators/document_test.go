package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/translations-sync/internal/translations"
)

func TestValidateDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         translations.Document
		maxSize     int
		wantErr     bool
		errContains string
	}{
		{
			name: "valid document with list tags",
			doc: translations.Document{
				"en":   map[string]any{"common": map[string]any{"hello": "Hello"}},
				"tags": map[string]any{"common.hello": []any{"web"}},
			},
		},
		{
			name: "valid document with comma separated tags",
			doc: translations.Document{
				"en":   map[string]any{"hello": "Hello"},
				"tags": map[string]any{"hello": "web, mobile"},
			},
		},
		{
			name: "valid document without tags",
			doc: translations.Document{
				"en": map[string]any{"count": 3.0, "enabled": true, "items": []any{"a", "b"}},
			},
		},
		{
			name: "empty document",
			doc:  translations.Document{},
		},
		{
			name:        "nil document",
			doc:         nil,
			wantErr:     true,
			errContains: "cannot be nil",
		},
		{
			name:        "tags is not an object",
			doc:         translations.Document{"en": map[string]any{}, "tags": []any{"web"}},
			wantErr:     true,
			errContains: "translations schema",
		},
		{
			name: "tag labels are not strings",
			doc: translations.Document{
				"en":   map[string]any{"hello": "Hello"},
				"tags": map[string]any{"hello": []any{1.0}},
			},
			wantErr:     true,
			errContains: "translations schema",
		},
		{
			name:        "locale is not a group",
			doc:         translations.Document{"en": "Hello"},
			wantErr:     true,
			errContains: "translations schema",
		},
		{
			name: "null leaf",
			doc: translations.Document{
				"en": map[string]any{"hello": nil},
			},
			wantErr:     true,
			errContains: "translations schema",
		},
		{
			name: "document exceeds size limit",
			doc: translations.Document{
				"en": map[string]any{"hello": "Hello, this is a long translation"},
			},
			maxSize:     10,
			wantErr:     true,
			errContains: "exceeds maximum allowed size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateDocument(tt.doc, tt.maxSize)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInvalidLocales(t *testing.T) {
	t.Parallel()

	doc := translations.Document{
		"en":             map[string]any{},
		"pt-BR":          map[string]any{},
		"not a language": map[string]any{},
		"tags":           map[string]any{},
	}

	assert.Equal(t, []string{"not a language"}, InvalidLocales(doc))
}
