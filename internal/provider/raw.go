package provider

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Lookup walks a dotted path ("taxon.default_photo.medium_url") through
// nested objects. Numeric segments index into arrays.
func (r RawItem) Lookup(path string) (any, bool) {
	if path == "" {
		return map[string]any(r), true
	}
	var cur any = map[string]any(r)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		case RawItem:
			v, ok := node[seg]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// Object returns the sub-object at path.
func (r RawItem) Object(path string) (RawItem, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return RawItem(m), true
	case RawItem:
		return m, true
	}
	return nil, false
}

// String returns the value at path as a trimmed string. Only JSON strings
// count; numbers and objects yield "".
func (r RawItem) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// ID returns the value at path as an identifier. Unlike String, numbers are
// formatted.
func (r RawItem) ID(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	}
	return ""
}

// First returns the first non-empty string among paths.
func (r RawItem) First(paths ...string) string {
	for _, p := range paths {
		if s := r.String(p); s != "" {
			return s
		}
	}
	return ""
}
