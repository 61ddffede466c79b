package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/translations-sync/internal/translations"
)

func TestRowsToDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		rows          [][]string
		want          translations.Document
		wantErr       error
		errorContains string
	}{
		{
			name: "empty sheet",
			rows: nil,
			want: translations.Document{},
		},
		{
			name: "header only",
			rows: [][]string{{"key", "en"}},
			want: translations.Document{},
		},
		{
			name: "nested keys and locales",
			rows: [][]string{
				{"key", "en", "de"},
				{"common.hello", "Hello", "Hallo"},
				{"common.bye", "Bye", "Tschüss"},
				{"title", "Title", "Titel"},
			},
			want: translations.Document{
				"en": map[string]any{
					"common": map[string]any{"hello": "Hello", "bye": "Bye"},
					"title":  "Title",
				},
				"de": map[string]any{
					"common": map[string]any{"hello": "Hallo", "bye": "Tschüss"},
					"title":  "Titel",
				},
			},
		},
		{
			name: "tags column, case insensitive headers and blank header",
			rows: [][]string{
				{"Key", "Tags", "", "en"},
				{"home.title", "web, mobile", "ignored", "Home"},
				{"legal", "", "ignored", "Terms"},
			},
			want: translations.Document{
				"en": map[string]any{
					"home":  map[string]any{"title": "Home"},
					"legal": "Terms",
				},
				translations.TagsKey: map[string]any{
					"home.title": []any{"web", "mobile"},
				},
			},
		},
		{
			name: "empty keys, empty cells and short rows are skipped",
			rows: [][]string{
				{"key", "en", "de"},
				{"", "Orphan", "Waise"},
				{"hello", "Hello"},
				{"bye", "", "Tschüss"},
			},
			want: translations.Document{
				"en": map[string]any{"hello": "Hello"},
				"de": map[string]any{"bye": "Tschüss"},
			},
		},
		{
			name: "later rows win",
			rows: [][]string{
				{"key", "en"},
				{"hello", "Hello"},
				{"hello", "Hi"},
			},
			want: translations.Document{"en": map[string]any{"hello": "Hi"}},
		},
		{
			name: "leaf and group conflict",
			rows: [][]string{
				{"key", "en"},
				{"common", "Common"},
				{"common.hello", "Hello"},
			},
			wantErr:       translations.ErrKeyConflict,
			errorContains: "row 3",
		},
		{
			name: "invalid key path",
			rows: [][]string{
				{"key", "en"},
				{"common..hello", "Hello"},
			},
			wantErr: translations.ErrInvalidKey,
		},
		{
			name:    "missing key column",
			rows:    [][]string{{"id", "en"}},
			wantErr: ErrMissingKeyColumn,
		},
		{
			name:          "duplicate locale column",
			rows:          [][]string{{"key", "en", "EN"}},
			errorContains: "duplicate column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := RowsToDocument(tt.rows)

			if tt.wantErr != nil || tt.errorContains != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc)
		})
	}
}

func TestParseValues(t *testing.T) {
	t.Parallel()

	rows, err := parseValues([]byte(`{"range":"Sheet1!A1:C3","majorDimension":"ROWS","values":[["key","en"],["count",3],["flag",true]]}`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"key", "en"}, {"count", "3"}, {"flag", "true"}}, rows)

	rows, err = parseValues([]byte(`{"range":"Sheet1!A1:Z1000","majorDimension":"ROWS"}`))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = parseValues([]byte(`{"values":`))
	assert.ErrorContains(t, err, "not valid JSON")

	_, err = parseValues([]byte(`{"values":"cells"}`))
	assert.ErrorContains(t, err, "must be an array")
}
