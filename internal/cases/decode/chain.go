package decode

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"legaltrack/pkg/rawvalue"
)

// Interpretation is one attempt at reading a raw JSON value as T.
type Interpretation[T any] func(json.RawMessage) (T, bool)

// FirstOf applies the chain left to right and returns the first accepted value.
func FirstOf[T any](raw json.RawMessage, chain ...Interpretation[T]) (T, bool) {
	for _, try := range chain {
		if v, ok := try(raw); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// BoolLikeChain reads flags that arrive as booleans, integers or strings.
var BoolLikeChain = []Interpretation[bool]{
	boolFromBool,
	boolFromInteger,
	boolFromString,
}

// BoolLike resolves a boolean-like field. Anything outside the accepted
// encodings is absent.
func BoolLike(raw json.RawMessage) (bool, bool) {
	return FirstOf(raw, BoolLikeChain...)
}

func boolFromBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if isNull(raw) || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}

func boolFromInteger(raw json.RawMessage) (bool, bool) {
	var n int64
	if isNull(raw) || json.Unmarshal(raw, &n) != nil {
		return false, false
	}
	return n != 0, true
}

func boolFromString(raw json.RawMessage) (bool, bool) {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return false, false
	}
	return boolText(s)
}

func boolText(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// AsText reads strings as-is and renders numbers in decimal form.
func AsText(raw json.RawMessage) (string, bool) {
	v, err := rawvalue.Decode(raw)
	if err != nil {
		return "", false
	}
	switch v.Kind() {
	case rawvalue.KindString, rawvalue.KindInt, rawvalue.KindFloat:
		return v.Text()
	case rawvalue.KindNull, rawvalue.KindBool, rawvalue.KindSeq, rawvalue.KindMap:
		return "", false
	default:
		return "", false
	}
}

// AsInteger reads integers, integral floats and numeric strings.
func AsInteger(raw json.RawMessage) (int64, bool) {
	v, err := rawvalue.Decode(raw)
	if err != nil {
		return 0, false
	}
	return integerOf(v)
}

func integerOf(v rawvalue.Value) (int64, bool) {
	switch v.Kind() {
	case rawvalue.KindInt:
		return v.AsInt()
	case rawvalue.KindFloat:
		f, _ := v.AsFloat()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	case rawvalue.KindString:
		s, _ := v.AsString()
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case rawvalue.KindNull, rawvalue.KindBool, rawvalue.KindSeq, rawvalue.KindMap:
		return 0, false
	default:
		return 0, false
	}
}

// AsFloat reads numbers and numeric strings.
func AsFloat(raw json.RawMessage) (float64, bool) {
	v, err := rawvalue.Decode(raw)
	if err != nil {
		return 0, false
	}
	switch v.Kind() {
	case rawvalue.KindInt, rawvalue.KindFloat:
		return v.AsFloat()
	case rawvalue.KindString:
		s, _ := v.AsString()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case rawvalue.KindNull, rawvalue.KindBool, rawvalue.KindSeq, rawvalue.KindMap:
		return 0, false
	default:
		return 0, false
	}
}

// AsStrings reads an array of strings, skipping non-text elements.
func AsStrings(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil || items == nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := AsText(it); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// textOf is AsText for an already decoded value.
func textOf(v rawvalue.Value, key string) string {
	f, ok := v.Field(key)
	if !ok {
		return ""
	}
	switch f.Kind() {
	case rawvalue.KindString, rawvalue.KindInt, rawvalue.KindFloat:
		s, _ := f.Text()
		return s
	case rawvalue.KindNull, rawvalue.KindBool, rawvalue.KindSeq, rawvalue.KindMap:
		return ""
	default:
		return ""
	}
}
