package ruleengine

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// applyTransform applies one of the 8 pure unary transforms to a resolved
// field value before operator comparison. An empty Transform is a
// pass-through.
func applyTransform(t seomodel.Transform, v any) any {
	switch t {
	case "":
		return v
	case seomodel.TransformLen:
		return sequenceLength(v)
	case seomodel.TransformCount:
		return sequenceLength(v)
	case seomodel.TransformLower:
		if s, ok := v.(string); ok {
			return strings.ToLower(s)
		}
		return v
	case seomodel.TransformUpper:
		if s, ok := v.(string); ok {
			return strings.ToUpper(s)
		}
		return v
	case seomodel.TransformStrip:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return v
	case seomodel.TransformBool:
		return toBool(v)
	case seomodel.TransformInt:
		f, ok := toFloat(v)
		if !ok {
			return v
		}
		return int64(f)
	case seomodel.TransformFloat:
		f, ok := toFloat(v)
		if !ok {
			return v
		}
		return f
	default:
		return v
	}
}

// sequenceLength returns string rune length, or slice/map/array element
// count. Any other type (or nil) yields nil, matched against length
// operators' null-operand rules.
func sequenceLength(v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return int64(len([]rune(s)))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return int64(rv.Len())
	default:
		return nil
	}
}

func toBool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len() > 0
		}
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
