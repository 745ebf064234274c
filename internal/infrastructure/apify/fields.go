package apify

import (
	"encoding/json"
	"fmt"
)

// present mirrors JSON truthiness: null, false, 0, "" and empty containers count as absent.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// firstPresent returns the value of the first key holding a present value, or nil.
func firstPresent(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := obj[key]; ok && present(v) {
			return v
		}
	}
	return nil
}

// firstString is firstPresent rendered as a string, "" when nothing is present.
func firstString(obj map[string]any, keys ...string) string {
	switch v := firstPresent(obj, keys...).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
