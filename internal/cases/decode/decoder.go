// Package decode turns backend payloads into raw typed records, one field at a
// time. A field whose value does not match any accepted interpretation is
// degraded to its empty value and logged; only an envelope without a usable
// identity fails the record.
package decode

import (
	"encoding/json"
	"errors"
	"log/slog"
)

// ErrMalformedRecord is returned when the top-level shape cannot be recognized.
var ErrMalformedRecord = errors.New("malformed record")

// Decoder holds no mutable state and is safe for concurrent use.
type Decoder struct {
	logger *slog.Logger
}

type Option func(*Decoder)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

func New(opts ...Option) *Decoder {
	d := &Decoder{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// degraded records a field that was present but matched no interpretation.
func (d *Decoder) degraded(entity string, id int64, field string, raw json.RawMessage) {
	d.logger.Debug("field decode degraded",
		"entity", entity,
		"id", id,
		"field", field,
		"raw", abbreviate(raw),
	)
}

// object is a JSON object whose members are decoded lazily.
type object map[string]json.RawMessage

func parseObject(raw json.RawMessage) (object, bool) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return nil, false
	}
	return o, true
}

// present reports whether key exists with a non-null value.
func (o object) present(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// field resolves key with the given chain and reports degradation to d.
func field[T any](d *Decoder, o object, entity string, id int64, key string, chain ...Interpretation[T]) (T, bool) {
	var zero T
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return zero, false
	}
	v, ok := FirstOf(raw, chain...)
	if !ok {
		d.degraded(entity, id, key, raw)
		return zero, false
	}
	return v, true
}

func (d *Decoder) text(o object, entity string, id int64, key string) string {
	s, _ := field[string](d, o, entity, id, key, AsText)
	return s
}

// textAny returns the first key holding usable text.
func (d *Decoder) textAny(o object, entity string, id int64, keys ...string) string {
	for _, k := range keys {
		if s := d.text(o, entity, id, k); s != "" {
			return s
		}
	}
	return ""
}

func (d *Decoder) integer(o object, entity string, id int64, key string) int64 {
	n, _ := field[int64](d, o, entity, id, key, AsInteger)
	return n
}

func (d *Decoder) boolLike(o object, entity string, id int64, key string) *bool {
	b, ok := field(d, o, entity, id, key, BoolLikeChain...)
	if !ok {
		return nil
	}
	return &b
}

func (d *Decoder) flag(o object, entity string, id int64, key string) bool {
	b := d.boolLike(o, entity, id, key)
	return b != nil && *b
}

func abbreviate(raw json.RawMessage) string {
	const limit = 64
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
