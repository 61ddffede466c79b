// Package mask projects a translation document down to the keys selected by
// a tag query.
//
// The transformation runs in three steps:
//
//  1. The requested tags become a Selector.
//  2. The Selector and the document's tags entry become a Mask: a tree
//     mirroring the shape of a locale subtree, where a node marked as "all"
//     keeps its whole subtree.
//  3. The Mask is applied to every locale of the document content.
//
// # Tag Matching
//
// A key is kept when it, or one of its ancestor groups, carries at least one
// requested tag. Keys with no tag entry are dropped as soon as a filter is
// requested. An empty request keeps the full content:
//
//	doc := translations.Document{
//		"en":   map[string]any{"home": map[string]any{"title": "Home"}, "legal": "Terms"},
//		"tags": map[string]any{"home": []any{"web"}},
//	}
//
//	mask.Transform(doc, []string{"web"})
//	// {"en": {"home": {"title": "Home"}}}
//
//	mask.Transform(doc, nil)
//	// {"en": {"home": {"title": "Home"}, "legal": "Terms"}}
//
// Requested tags containing glob syntax select by pattern, so "mobile-*"
// keeps keys tagged "mobile-ios" or "mobile-android".
//
// The tags entry is never part of the output.
package mask
