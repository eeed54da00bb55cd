package espn

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is a decoded provider response. Its schema is not validated; every
// read goes through the guarded accessors below.
type Payload map[string]any

// Events returns the objects of the top-level events array. A missing or
// non-array value is treated as empty.
func (p Payload) Events() []map[string]any {
	return objects(p["events"])
}

// IsEmpty reports whether the payload carries no fields at all.
func (p Payload) IsEmpty() bool {
	return len(p) == 0
}

func asMap(raw any) map[string]any {
	obj, _ := raw.(map[string]any)
	return obj
}

// objects keeps only the object elements of an array value.
func objects(raw any) []map[string]any {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj := asMap(item); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// lookup walks nested objects by key.
func lookup(src map[string]any, keys ...string) any {
	var cur any = src
	for _, key := range keys {
		obj := asMap(cur)
		if obj == nil {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func objectAt(src map[string]any, keys ...string) map[string]any {
	return asMap(lookup(src, keys...))
}

// firstObject returns the first element of an array field when it is an object.
func firstObject(src map[string]any, keys ...string) map[string]any {
	items, ok := lookup(src, keys...).([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	return asMap(items[0])
}

// stringAt reads a scalar as text. Numbers are rendered without exponent so
// numeric ids such as 13 become "13"; objects, arrays and null read as "".
func stringAt(src map[string]any, keys ...string) string {
	switch typed := lookup(src, keys...).(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if item != "" {
			return item
		}
	}
	return ""
}
