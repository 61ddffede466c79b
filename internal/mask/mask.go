package mask

import (
	"sort"
	"strings"

	"github.com/stacklok/translations-sync/internal/translations"
)

// Mask is a structural inclusion tree. A node marked as all keeps its whole
// subtree; otherwise only the listed children survive.
type Mask struct {
	all      bool
	children map[string]*Mask
}

// New returns an empty mask that keeps nothing
func New() *Mask {
	return &Mask{}
}

// FromTags builds the mask selecting every tagged key whose labels match the
// selector. Key paths that cannot be parsed are skipped.
func FromTags(sel Selector, tags translations.Tags) *Mask {
	m := New()
	for path, labels := range tags {
		if ok, _ := sel.Match(labels); !ok {
			continue
		}
		segments, err := translations.SplitPath(path)
		if err != nil {
			continue
		}
		m.Include(segments)
	}
	return m
}

// Include marks the subtree at the given path as kept
func (m *Mask) Include(segments []string) {
	node := m
	for _, segment := range segments {
		if node.all {
			return
		}
		if node.children == nil {
			node.children = make(map[string]*Mask)
		}
		child, ok := node.children[segment]
		if !ok {
			child = New()
			node.children[segment] = child
		}
		node = child
	}
	node.all = true
	node.children = nil
}

// Empty reports whether the mask keeps nothing
func (m *Mask) Empty() bool {
	return m == nil || (!m.all && len(m.children) == 0)
}

// String renders the mask in the field selection syntax used by json-mask,
// e.g. "common(hello,bye),home"
func (m *Mask) String() string {
	if m == nil {
		return ""
	}
	if m.all {
		return "*"
	}
	keys := make([]string, 0, len(m.children))
	for key := range m.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		child := m.children[key]
		if child.all {
			parts = append(parts, key)
			continue
		}
		parts = append(parts, key+"("+child.String()+")")
	}
	return strings.Join(parts, ",")
}

// Apply prunes every locale of the content with the mask. Locales where
// nothing survives are omitted. Matched values are shared with the input,
// which is never modified.
func Apply(content translations.Document, m *Mask) translations.Document {
	result := make(translations.Document)
	if m.Empty() {
		return result
	}
	for locale, subtree := range content {
		if locale == translations.TagsKey {
			continue
		}
		if pruned, ok := applyNode(subtree, m); ok {
			result[locale] = pruned
		}
	}
	return result
}

func applyNode(value any, m *Mask) (any, bool) {
	if m.all {
		return value, true
	}
	node, ok := value.(map[string]any)
	if !ok {
		// the mask descends below a leaf value
		return nil, false
	}
	out := make(map[string]any)
	for key, child := range m.children {
		v, exists := node[key]
		if !exists {
			continue
		}
		if pruned, ok := applyNode(v, child); ok {
			out[key] = pruned
		}
	}
	return out, len(out) > 0
}
