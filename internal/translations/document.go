// Package translations defines the translation document exchanged between
// source handlers, the mask transformer and the snapshot storage.
//
// A document maps a locale code to a nested tree of translation keys:
//
//	{
//	  "en": {"common": {"hello": "Hello", "bye": "Bye"}},
//	  "de": {"common": {"hello": "Hallo", "bye": "Tschüss"}},
//	  "tags": {"common.hello": ["web", "mobile"], "common": "email"}
//	}
//
// The "tags" entry is out-of-band metadata: it maps a key path, relative to
// each locale root, to the labels attached to that key or group.
package translations

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

const (
	// TagsKey is the document entry holding the tag metadata
	TagsKey = "tags"

	// PathSeparator separates the segments of a translation key path
	PathSeparator = "."
)

var (
	// ErrKeyConflict is returned when a key path is used both as a leaf and as a group
	ErrKeyConflict = errors.New("translation key conflict")

	// ErrInvalidKey is returned for key paths with empty segments
	ErrInvalidKey = errors.New("invalid translation key")
)

// Document is a translation document as decoded from JSON
type Document map[string]any

// Tags maps a key path to the labels attached to it
type Tags map[string][]string

// Split separates the tags entry from the translation content.
// The returned content is a shallow copy; the receiver is not modified.
func (d Document) Split() (Document, any) {
	content := make(Document, len(d))
	var tags any
	for k, v := range d {
		if k == TagsKey {
			tags = v
			continue
		}
		content[k] = v
	}
	return content, tags
}

// Content returns the document without its tags entry
func (d Document) Content() Document {
	content, _ := d.Split()
	return content
}

// Tags parses the tags entry of the document. Values that are neither a
// string nor a list of strings are ignored.
func (d Document) Tags() Tags {
	_, raw := d.Split()
	return ParseTags(raw)
}

// Locales returns the locale codes present in the document content
func (d Document) Locales() []string {
	locales := make([]string, 0, len(d))
	for k := range d {
		if k != TagsKey {
			locales = append(locales, k)
		}
	}
	return locales
}

// CountKeys returns the number of leaf values across all locales
func (d Document) CountKeys() int {
	count := 0
	for k, v := range d {
		if k == TagsKey {
			continue
		}
		count += countLeaves(v)
	}
	return count
}

func countLeaves(v any) int {
	node, ok := v.(map[string]any)
	if !ok {
		return 1
	}
	count := 0
	for _, child := range node {
		count += countLeaves(child)
	}
	return count
}

// Set stores value at the dot separated path below locale, creating the
// intermediate groups. A path crossing an existing leaf, or a leaf replacing
// an existing group, yields ErrKeyConflict.
func (d Document) Set(locale, path string, value any) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}

	root, ok := d[locale].(map[string]any)
	if !ok {
		if _, exists := d[locale]; exists {
			return fmt.Errorf("%w: locale %q is not a group", ErrKeyConflict, locale)
		}
		root = make(map[string]any)
		d[locale] = root
	}

	node := root
	for i, segment := range segments[:len(segments)-1] {
		child, exists := node[segment]
		if !exists {
			group := make(map[string]any)
			node[segment] = group
			node = group
			continue
		}
		group, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %q is a value, cannot hold %q",
				ErrKeyConflict, strings.Join(segments[:i+1], PathSeparator), path)
		}
		node = group
	}

	last := segments[len(segments)-1]
	if _, isGroup := node[last].(map[string]any); isGroup {
		return fmt.Errorf("%w: %q is a group", ErrKeyConflict, path)
	}
	node[last] = value
	return nil
}

// SplitPath splits a dot separated key path into its segments
func SplitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidKey)
	}
	segments := strings.Split(path, PathSeparator)
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidKey, path)
		}
		segments[i] = segment
	}
	return segments, nil
}

// ParseTags converts a raw tags entry into Tags
func ParseTags(raw any) Tags {
	tags := make(Tags)
	switch entries := raw.(type) {
	case map[string]any:
		for key, value := range entries {
			if labels := ParseLabels(value); len(labels) > 0 {
				tags[key] = labels
			}
		}
	case Tags:
		for key, labels := range entries {
			tags[key] = append([]string(nil), labels...)
		}
	case map[string][]string:
		for key, labels := range entries {
			tags[key] = append([]string(nil), labels...)
		}
	}
	return tags
}

// ParseLabels converts a label list or a comma separated string into a
// trimmed list of labels
func ParseLabels(value any) []string {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	default:
		return nil
	}

	labels := make([]string, 0, len(raw))
	for _, label := range raw {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// Normalize converts any JSON-serializable value into a Document holding
// only JSON-decoded types (map[string]any, []any, string, float64, bool, nil)
func Normalize(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	return doc, nil
}

// Hash returns the hex encoded SHA256 of the canonical JSON encoding
func (d Document) Hash() (string, error) {
	// encoding/json sorts map keys, which makes the encoding canonical
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Equal reports whether two documents hold the same JSON content.
// A nil document equals an empty one.
func Equal(a, b Document) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	na, errA := Normalize(a)
	nb, errB := Normalize(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

// EqualTags reports whether two tag sets hold the same labels in the same order
func EqualTags(a, b Tags) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
