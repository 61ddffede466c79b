package sources

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stacklok/translations-sync/internal/translations"
)

const (
	// KeyColumn is the header of the column holding the translation key path
	KeyColumn = "key"

	// TagsColumn is the header of the optional column holding comma separated labels
	TagsColumn = "tags"
)

// ErrMissingKeyColumn is returned when the header row has no key column
var ErrMissingKeyColumn = errors.New("sheet header has no key column")

// sheetLayout maps the header row to column indexes
type sheetLayout struct {
	key     int
	tags    int
	locales map[int]string
}

func parseHeader(header []string) (*sheetLayout, error) {
	layout := &sheetLayout{key: -1, tags: -1, locales: make(map[int]string)}
	seen := make(map[string]int)

	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if prev, ok := seen[strings.ToLower(name)]; ok {
			return nil, fmt.Errorf("duplicate column %q in columns %d and %d", name, prev+1, i+1)
		}
		seen[strings.ToLower(name)] = i

		switch strings.ToLower(name) {
		case KeyColumn:
			layout.key = i
		case TagsColumn:
			layout.tags = i
		default:
			layout.locales[i] = name
		}
	}

	if layout.key < 0 {
		return nil, ErrMissingKeyColumn
	}
	return layout, nil
}

// RowsToDocument converts spreadsheet rows into a translation document.
//
// The first row is the header: the key column holds the dot separated key
// path, the optional tags column holds comma separated labels, and every
// other non-empty header names a locale. Rows with an empty key are skipped,
// empty cells are omitted and later rows win on duplicate keys.
func RowsToDocument(rows [][]string) (translations.Document, error) {
	doc := translations.Document{}
	if len(rows) == 0 {
		return doc, nil
	}

	layout, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	tags := make(map[string]any)
	for i, row := range rows[1:] {
		rowNumber := i + 2
		key := strings.TrimSpace(cell(row, layout.key))
		if key == "" {
			continue
		}

		for col, locale := range layout.locales {
			value := cell(row, col)
			if value == "" {
				continue
			}
			if err := doc.Set(locale, key, value); err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNumber, err)
			}
		}

		if layout.tags >= 0 {
			if labels := translations.ParseLabels(cell(row, layout.tags)); len(labels) > 0 {
				values := make([]any, len(labels))
				for j, label := range labels {
					values[j] = label
				}
				tags[key] = values
			}
		}
	}

	if len(tags) > 0 {
		doc[translations.TagsKey] = tags
	}
	return doc, nil
}

// cell returns the cell at col, or an empty string for short rows
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
