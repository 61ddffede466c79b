package mask

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/stacklok/translations-sync/internal/translations"
)

// Transformer projects translation documents according to a tag query
type Transformer interface {
	// Transform returns the document content restricted to the keys selected by filterTags.
	// An empty filter returns the full content without the tags entry.
	Transform(ctx context.Context, doc translations.Document, filterTags []string) translations.Document
}

// defaultTransformer implements Transformer on top of Transform
type defaultTransformer struct{}

// NewTransformer creates the default Transformer
func NewTransformer() Transformer {
	return &defaultTransformer{}
}

// Transform applies the tag query to the document and logs the outcome
func (*defaultTransformer) Transform(
	ctx context.Context, doc translations.Document, filterTags []string,
) translations.Document {
	logger := logr.FromContextOrDiscard(ctx)

	sel := NewSelector(filterTags)
	if sel.Empty() {
		logger.V(1).Info("No tag filter specified, keeping full document")
		return doc.Content()
	}

	content, rawTags := doc.Split()
	m := FromTags(sel, translations.ParseTags(rawTags))
	result := Apply(content, m)

	logger.V(1).Info("Applied tag mask",
		"tags", sel.Tags(),
		"mask", m.String(),
		"originalKeyCount", content.CountKeys(),
		"maskedKeyCount", result.CountKeys())

	return result
}

// Transform is the pure form of the mask transformation
func Transform(doc translations.Document, filterTags []string) translations.Document {
	sel := NewSelector(filterTags)
	if sel.Empty() {
		return doc.Content()
	}
	content, rawTags := doc.Split()
	return Apply(content, FromTags(sel, translations.ParseTags(rawTags)))
}

// SelectLocale returns a document holding only the given locale.
// The boolean is false when the locale is not present.
func SelectLocale(doc translations.Document, locale string) (translations.Document, bool) {
	if locale == translations.TagsKey {
		return nil, false
	}
	subtree, ok := doc[locale]
	if !ok {
		return nil, false
	}
	return translations.Document{locale: subtree}, true
}
