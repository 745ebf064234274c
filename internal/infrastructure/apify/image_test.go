package apify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeImage(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"nil", nil, ""},
		{"empty string", "", ""},
		{"string", "https://images.tokopedia.net/a.jpg", "https://images.tokopedia.net/a.jpg"},
		{"empty list", []any{}, ""},
		{"list takes first", []any{"a", "b"}, "a"},
		{"list of objects", []any{map[string]any{"src": "s1"}, map[string]any{"src": "s2"}}, "s1"},
		{"thumbnail only", map[string]any{"thumbnail": "x"}, "x"},
		{"url wins over thumbnail", map[string]any{"thumbnail": "x", "url": "u"}, "u"},
		{"alias order", map[string]any{"large": "l", "image_url": "iu", "imageUrl": "iU"}, "iU"},
		{"empty alias skipped", map[string]any{"url": "", "src": "s"}, "s"},
		{"nested object value", map[string]any{"url": map[string]any{"large": "deep"}}, "deep"},
		{"unknown keys", map[string]any{"href": "h"}, ""},
		{"number", 42.0, ""},
		{"bool", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeImage(tt.raw))
		})
	}
}

func TestNormalizeImage_DepthLimit(t *testing.T) {
	// four levels of nesting resolve, deeper ones are treated as absent
	shallow := []any{[]any{[]any{[]any{"ok"}}}}
	assert.Equal(t, "ok", NormalizeImage(shallow))

	deep := []any{[]any{[]any{[]any{[]any{"too deep"}}}}}
	assert.Equal(t, "", NormalizeImage(deep))
}

func TestParseImageField(t *testing.T) {
	field := ParseImageField(map[string]any{"src": "s", "other": "o"})

	assert.Equal(t, ImageObject, field.Kind)
	assert.Len(t, field.Fields, 1)
	assert.Equal(t, ImageString, field.Fields["src"].Kind)

	assert.Equal(t, ImageList, ParseImageField([]any{"a"}).Kind)
	assert.Equal(t, ImageNone, ParseImageField(nil).Kind)
}
