// Package rawvalue decodes JSON values whose type is not fixed by the wire format.
//
// A Value is an immutable tagged union over null, bool, integer, float, string,
// sequence and mapping. Consumers switch on Kind and use the matching accessor.
package rawvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// ErrUnrecognizedShape is returned when no interpretation applies to the input.
var ErrUnrecognizedShape = errors.New("unrecognized value shape")

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the decoded form of an arbitrary JSON value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    map[string]Value
}

func Null() Value              { return Value{} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func Seq(items ...Value) Value { return Value{kind: KindSeq, seq: slices.Clone(items)} }

// Map builds a mapping value. The input map is copied.
func Map(fields map[string]Value) Value {
	return Value{kind: KindMap, m: maps.Clone(fields)}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat reports integers as floats as well.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsSeq returns a copy of the sequence elements.
func (v Value) AsSeq() ([]Value, bool) {
	if v.kind != KindSeq {
		return nil, false
	}
	return slices.Clone(v.seq), true
}

// AsMap returns a copy of the mapping.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return maps.Clone(v.m), true
}

// Len is the element count of a sequence or mapping, zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindSeq:
		return len(v.seq)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Index returns the i-th sequence element.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSeq || i < 0 || i >= len(v.seq) {
		return Value{}, false
	}
	return v.seq[i], true
}

// Field returns a mapping member.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.m[name]
	return f, ok
}

// Text renders scalar values as text: strings as-is, numbers in decimal form.
// Null, sequences and mappings yield false.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindInt:
		return strconv.FormatInt(v.i, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	case KindNull, KindSeq, KindMap:
		return "", false
	default:
		return "", false
	}
}

func (v Value) String() string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(b)
}

// Equal reports deep equality. Int and Float are distinct even for equal numbers.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindSeq:
		return slices.EqualFunc(v.seq, o.seq, Value.Equal)
	case KindMap:
		return maps.EqualFunc(v.m, o.m, Value.Equal)
	default:
		return false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		b, err := json.Marshal(v.f)
		if err != nil {
			return nil, err
		}
		// Integral floats keep a fraction so they decode back as floats.
		if !bytes.ContainsAny(b, ".eE") {
			b = append(b, '.', '0')
		}
		return b, nil
	case KindString:
		return json.Marshal(v.s)
	case KindSeq:
		if v.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.seq)
	case KindMap:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("marshal %s: %w", v.kind, ErrUnrecognizedShape)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

type interpretation func([]byte) (Value, bool)

// Decode interprets data as bool, integer, float, string, sequence or mapping,
// in that order. Nested sequences and mappings are decoded recursively.
func Decode(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	// Built per call: asSeq and asMap recurse into Decode, so a package-level
	// table would form an initialization cycle.
	interpretations := [...]interpretation{asNull, asBool, asInt, asFloat, asString, asSeq, asMap}
	for _, try := range interpretations {
		if v, ok := try(trimmed); ok {
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("decode %q: %w", abbreviate(trimmed), ErrUnrecognizedShape)
}

// MustDecode is Decode for literals in tests and fixtures.
func MustDecode(data string) Value {
	v, err := Decode([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

func asNull(b []byte) (Value, bool) {
	return Value{}, bytes.Equal(b, []byte("null"))
}

func asBool(b []byte) (Value, bool) {
	var x bool
	if err := json.Unmarshal(b, &x); err != nil {
		return Value{}, false
	}
	return Bool(x), true
}

func asInt(b []byte) (Value, bool) {
	var x int64
	if err := json.Unmarshal(b, &x); err != nil {
		return Value{}, false
	}
	return Int(x), true
}

func asFloat(b []byte) (Value, bool) {
	var x float64
	if err := json.Unmarshal(b, &x); err != nil {
		return Value{}, false
	}
	return Float(x), true
}

func asString(b []byte) (Value, bool) {
	var x string
	if err := json.Unmarshal(b, &x); err != nil {
		return Value{}, false
	}
	return String(x), true
}

func asSeq(b []byte) (Value, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return Value{}, false
	}
	items := make([]Value, 0, len(raw))
	for _, r := range raw {
		item, err := Decode(r)
		if err != nil {
			return Value{}, false
		}
		items = append(items, item)
	}
	return Value{kind: KindSeq, seq: items}, true
}

func asMap(b []byte) (Value, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return Value{}, false
	}
	fields := make(map[string]Value, len(raw))
	for k, r := range raw {
		item, err := Decode(r)
		if err != nil {
			return Value{}, false
		}
		fields[k] = item
	}
	return Value{kind: KindMap, m: fields}, true
}

func abbreviate(b []byte) string {
	const limit = 32
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
