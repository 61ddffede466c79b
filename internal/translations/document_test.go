package translations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Split(t *testing.T) {
	t.Parallel()

	doc := Document{
		"en":    map[string]any{"hello": "Hello"},
		TagsKey: map[string]any{"hello": "web"},
	}

	content, tags := doc.Split()

	assert.Equal(t, Document{"en": map[string]any{"hello": "Hello"}}, content)
	assert.Equal(t, map[string]any{"hello": "web"}, tags)
	assert.Contains(t, doc, TagsKey, "input must not be modified")
}

func TestDocument_Tags(t *testing.T) {
	t.Parallel()

	doc := Document{
		"en": map[string]any{},
		TagsKey: map[string]any{
			"common.hello": []any{"web", " mobile "},
			"common":       "email, sms",
			"broken":       42,
			"blank":        " , ",
		},
	}

	assert.Equal(t, Tags{
		"common.hello": {"web", "mobile"},
		"common":       {"email", "sms"},
	}, doc.Tags())
}

func TestDocument_CountKeysAndLocales(t *testing.T) {
	t.Parallel()

	doc := Document{
		"en": map[string]any{
			"common": map[string]any{"hello": "Hello", "bye": "Bye"},
			"title":  "Title",
		},
		"de":    map[string]any{"title": "Titel"},
		TagsKey: map[string]any{"title": "web"},
	}

	assert.Equal(t, 4, doc.CountKeys())
	assert.ElementsMatch(t, []string{"en", "de"}, doc.Locales())
	assert.Equal(t, 0, Document{}.CountKeys())
}

func TestDocument_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial Document
		locale  string
		path    string
		value   any
		want    Document
		wantErr error
	}{
		{
			name:   "creates nested groups",
			locale: "en", path: "common.greeting.hello", value: "Hello",
			want: Document{"en": map[string]any{
				"common": map[string]any{"greeting": map[string]any{"hello": "Hello"}},
			}},
		},
		{
			name:    "overwrites an existing leaf",
			initial: Document{"en": map[string]any{"hello": "Hi"}},
			locale:  "en", path: "hello", value: "Hello",
			want: Document{"en": map[string]any{"hello": "Hello"}},
		},
		{
			name:    "leaf cannot hold children",
			initial: Document{"en": map[string]any{"common": "Common"}},
			locale:  "en", path: "common.hello", value: "Hello",
			wantErr: ErrKeyConflict,
		},
		{
			name:    "group cannot become a leaf",
			initial: Document{"en": map[string]any{"common": map[string]any{"hello": "Hello"}}},
			locale:  "en", path: "common", value: "Common",
			wantErr: ErrKeyConflict,
		},
		{
			name:   "empty segment",
			locale: "en", path: "common..hello", value: "Hello",
			wantErr: ErrInvalidKey,
		},
		{
			name:   "empty path",
			locale: "en", path: "  ", value: "Hello",
			wantErr: ErrInvalidKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := tt.initial
			if doc == nil {
				doc = Document{}
			}

			err := doc.Set(tt.locale, tt.path, tt.value)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc)
		})
	}
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	segments, err := SplitPath(" common . hello ")
	require.NoError(t, err)
	assert.Equal(t, []string{"common", "hello"}, segments)

	_, err = SplitPath("common.")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	doc, err := Normalize(map[string]any{
		"en": map[string]string{"count": "1"},
		"de": map[string]int{"count": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, Document{
		"en": map[string]any{"count": "1"},
		"de": map[string]any{"count": float64(1)},
	}, doc)

	_, err = Normalize([]string{"not", "an", "object"})
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Document
		want bool
	}{
		{name: "nil and empty", a: nil, b: Document{}, want: true},
		{
			name: "same content with different Go types",
			a:    Document{"en": map[string]any{"a": 1}},
			b:    Document{"en": map[string]any{"a": float64(1)}},
			want: true,
		},
		{
			name: "different value",
			a:    Document{"en": map[string]any{"a": 1}},
			b:    Document{"en": map[string]any{"a": 2}},
			want: false,
		},
		{
			name: "extra locale",
			a:    Document{"en": map[string]any{"a": "A"}},
			b:    Document{"en": map[string]any{"a": "A"}, "de": map[string]any{"a": "A"}},
			want: false,
		},
		{
			name: "empty and populated",
			a:    Document{},
			b:    Document{"en": map[string]any{}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestEqualTags(t *testing.T) {
	t.Parallel()

	assert.True(t, EqualTags(nil, Tags{}))
	assert.True(t, EqualTags(Tags{"a": {"web"}}, Tags{"a": {"web"}}))
	assert.False(t, EqualTags(Tags{"a": {"web"}}, Tags{"a": {"mobile"}}))
	assert.False(t, EqualTags(Tags{"a": {"web"}}, nil))
}

func TestDocument_Hash(t *testing.T) {
	t.Parallel()

	a := Document{"en": map[string]any{"a": "A", "b": "B"}}
	b := Document{"en": map[string]any{"b": "B", "a": "A"}}
	c := Document{"en": map[string]any{"a": "A"}}

	hashA, err := a.Hash()
	require.NoError(t, err)
	hashB, err := b.Hash()
	require.NoError(t, err)
	hashC, err := c.Hash()
	require.NoError(t, err)

	assert.Len(t, hashA, 64)
	assert.Equal(t, hashA, hashB)
	assert.NotEqual(t, hashA, hashC)
}
