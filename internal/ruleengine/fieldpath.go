package ruleengine

import (
	"reflect"
	"strconv"
	"strings"
)

// resolveFieldPath walks a dot-separated path into fields, descending into
// nested maps and, when a segment parses as an integer, indexing into
// slices/arrays. A missing key, an out-of-range index, or a path that tries
// to descend through a non-container value yields nil: a missing
// field resolves to null rather than erroring.
func resolveFieldPath(fields Fields, path string) any {
	if path == "" {
		return nil
	}
	var current any = map[string]any(fields)
	for _, segment := range strings.Split(path, ".") {
		if current == nil {
			return nil
		}
		if idx, err := strconv.Atoi(segment); err == nil {
			current = indexSequence(current, idx)
			continue
		}
		current = lookupKey(current, segment)
	}
	return current
}

func lookupKey(container any, key string) any {
	switch m := container.(type) {
	case map[string]any:
		return m[key]
	case Fields:
		return m[key]
	}

	v := reflect.ValueOf(container)
	if v.Kind() != reflect.Map {
		return nil
	}
	if v.Type().Key().Kind() != reflect.String {
		return nil
	}
	val := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
	if !val.IsValid() {
		return nil
	}
	return val.Interface()
}

func indexSequence(container any, idx int) any {
	v := reflect.ValueOf(container)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if idx < 0 || idx >= v.Len() {
			return nil
		}
		return v.Index(idx).Interface()
	default:
		return nil
	}
}
