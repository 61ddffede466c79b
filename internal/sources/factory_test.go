package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/translations-sync/internal/config"
)

func TestDefaultSourceHandlerFactory_CreateHandler(t *testing.T) {
	t.Parallel()

	factory := NewSourceHandlerFactory()

	tests := []struct {
		name          string
		sourceType    string
		expectError   bool
		expectedType  interface{}
		errorContains string
	}{
		{
			name:         "sheets source type",
			sourceType:   config.SourceTypeSheets,
			expectedType: &sheetsSourceHandler{},
		},
		{
			name:         "file source type",
			sourceType:   config.SourceTypeFile,
			expectedType: &fileSourceHandler{},
		},
		{
			name:         "git source type",
			sourceType:   config.SourceTypeGit,
			expectedType: &gitSourceHandler{},
		},
		{
			name:          "unsupported source type",
			sourceType:    "ftp",
			expectError:   true,
			errorContains: "unsupported source type",
		},
		{
			name:          "empty source type",
			sourceType:    "",
			expectError:   true,
			errorContains: "unsupported source type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, err := factory.CreateHandler(tt.sourceType)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, handler)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			assert.NoError(t, err)
			assert.IsType(t, tt.expectedType, handler)
		})
	}
}
