package mask

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// globChars are the characters that turn a requested tag into a pattern
const globChars = "*?[{"

// Selector is the set of tags requested by a filter.
// Tags containing glob syntax (e.g. "mobile-*") match labels by pattern.
type Selector struct {
	tags     map[string]struct{}
	patterns map[string]glob.Glob
}

// NewSelector builds a Selector from the requested tags. Blank entries are
// ignored and patterns that fail to compile are matched literally.
func NewSelector(filterTags []string) Selector {
	sel := Selector{
		tags:     make(map[string]struct{}, len(filterTags)),
		patterns: make(map[string]glob.Glob),
	}
	for _, tag := range filterTags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if strings.ContainsAny(tag, globChars) {
			if compiled, err := glob.Compile(tag); err == nil {
				sel.patterns[tag] = compiled
				continue
			}
		}
		sel.tags[tag] = struct{}{}
	}
	return sel
}

// Empty reports whether the selector requests no tags
func (s Selector) Empty() bool {
	return len(s.tags) == 0 && len(s.patterns) == 0
}

// Tags returns the requested tags and patterns in sorted order
func (s Selector) Tags() []string {
	tags := make([]string, 0, len(s.tags)+len(s.patterns))
	for tag := range s.tags {
		tags = append(tags, tag)
	}
	for pattern := range s.patterns {
		tags = append(tags, pattern)
	}
	sort.Strings(tags)
	return tags
}

// Match determines if a key carrying the given labels is selected.
// Returns (selected bool, reason string)
func (s Selector) Match(labels []string) (bool, string) {
	if s.Empty() {
		return true, "no tag filters specified"
	}
	for _, label := range labels {
		if _, ok := s.tags[label]; ok {
			return true, fmt.Sprintf("selected by tag '%s'", label)
		}
	}
	for _, pattern := range s.sortedPatterns() {
		for _, label := range labels {
			if s.patterns[pattern].Match(label) {
				return true, fmt.Sprintf("selected by pattern '%s' on tag '%s'", pattern, label)
			}
		}
	}
	return false, fmt.Sprintf("no matching tags found in %v (key tags: %v)", s.Tags(), labels)
}

func (s Selector) sortedPatterns() []string {
	patterns := make([]string, 0, len(s.patterns))
	for pattern := range s.patterns {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}
