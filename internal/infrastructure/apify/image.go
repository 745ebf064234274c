package apify

// imageURLKeys are the alias keys of a structured image object, in resolution order.
var imageURLKeys = []string{"url", "src", "imageUrl", "image_url", "large", "thumbnail"}

// maxImageDepth bounds recursive descent into nested image values from upstream.
const maxImageDepth = 4

// ImageKind tags the shape of a raw image value.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageString
	ImageList
	ImageObject
)

// ImageField is a parsed raw image value.
type ImageField struct {
	Kind   ImageKind
	URL    string
	Items  []ImageField
	Fields map[string]ImageField
}

// ParseImageField classifies a decoded JSON value. Values nested deeper than maxImageDepth
// are treated as absent.
func ParseImageField(raw any) ImageField {
	return parseImageField(raw, 0)
}

func parseImageField(raw any, depth int) ImageField {
	if depth > maxImageDepth {
		return ImageField{Kind: ImageNone}
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return ImageField{Kind: ImageNone}
		}
		return ImageField{Kind: ImageString, URL: v}
	case []any:
		field := ImageField{Kind: ImageList}
		if len(v) > 0 {
			field.Items = []ImageField{parseImageField(v[0], depth+1)}
		}
		return field
	case map[string]any:
		field := ImageField{Kind: ImageObject, Fields: make(map[string]ImageField)}
		for _, key := range imageURLKeys {
			if inner, ok := v[key]; ok && present(inner) {
				field.Fields[key] = parseImageField(inner, depth+1)
			}
		}
		return field
	default:
		return ImageField{Kind: ImageNone}
	}
}

// Resolve returns the best-effort URL held by the field, "" when there is none.
func (f ImageField) Resolve() string {
	switch f.Kind {
	case ImageString:
		return f.URL
	case ImageList:
		if len(f.Items) == 0 {
			return ""
		}
		return f.Items[0].Resolve()
	case ImageObject:
		for _, key := range imageURLKeys {
			inner, ok := f.Fields[key]
			if !ok {
				continue
			}
			if url := inner.Resolve(); url != "" {
				return url
			}
		}
		return ""
	default:
		return ""
	}
}

// NormalizeImage turns a raw upstream image value (string, list or object) into a single URL.
func NormalizeImage(raw any) string {
	return ParseImageField(raw).Resolve()
}
