// Package codec translates SmartObjects entities to and from the JSON wire
// format of the platform REST API.
//
// Each entity has a FieldMap listing its reserved fields. Every other key of
// a wire object is a caller-defined attribute whose primitive type is
// inferred from the JSON value; floats are always written with a decimal
// point so that integers and floats survive a round trip.
//
// Codecs hold no mutable state and are safe for concurrent use.
package codec

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/smartobjects/internal/model"
)

// Record is the entity-neutral view exchanged between a Codec and an entity:
// reserved values keyed by domain field name plus the attribute map.
type Record struct {
	values     map[string]any
	Attributes model.Attributes
}

func newRecord() Record {
	return Record{values: make(map[string]any), Attributes: model.Attributes{}}
}

func (r *Record) set(name string, v any) { r.values[name] = v }

func (r Record) Text(name string) (string, bool)    { return lookup[string](r, name) }
func (r Record) Time(name string) (time.Time, bool) { return lookup[time.Time](r, name) }
func (r Record) GUID(name string) (uuid.UUID, bool) { return lookup[uuid.UUID](r, name) }
func (r Record) Number(name string) (float64, bool) { return lookup[float64](r, name) }
func (r Record) Bool(name string) (bool, bool)      { return lookup[bool](r, name) }

func lookup[T any](r Record, name string) (T, bool) {
	v, ok := r.values[name].(T)
	return v, ok
}

// Codec serializes and deserializes one entity type E.
type Codec[E any] struct {
	name    string
	fields  FieldMap
	toRec   func(E, *Record)
	fromRec func(Record) E
}

// Name returns the entity name used in error contexts.
func (c *Codec[E]) Name() string { return c.name }

// Fields returns a copy of the entity's field map.
func (c *Codec[E]) Fields() FieldMap { return append(FieldMap(nil), c.fields...) }

// Serialize renders e as a flat JSON object: reserved fields first in field
// map order, then attributes sorted by name.
func (c *Codec[E]) Serialize(e E) ([]byte, error) {
	rec := newRecord()
	c.toRec(e, &rec)
	out, err := encode(c.fields, rec)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", c.name, err)
	}
	return out, nil
}

// Deserialize parses a JSON object into a new entity. It returns a
// *ValidationError when a reserved field has the wrong type and a
// *ParseError for malformed input or unsupported attribute values.
func (c *Codec[E]) Deserialize(data []byte) (E, error) {
	rec, err := decode(c.fields, data)
	if err != nil {
		var zero E
		return zero, err
	}
	return c.fromRec(rec), nil
}

// SerializeBatch renders a JSON array of entities.
func (c *Codec[E]) SerializeBatch(items []E) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		out, err := c.Serialize(item)
		if err != nil {
			return nil, fmt.Errorf("%ss[%d]: %w", c.name, i, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(out)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// DeserializeBatch parses a JSON array of objects. The first failing element
// aborts the batch; its error is wrapped with the element index.
func (c *Codec[E]) DeserializeBatch(data []byte) ([]E, error) {
	trimmed := bytes.TrimSpace(data)
	if kindOf(trimmed) != kindArray {
		return nil, &ParseError{Reason: "document is not a JSON array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &ParseError{Reason: "malformed JSON document", Err: err}
	}
	out := make([]E, 0, len(items))
	for i, item := range items {
		e, err := c.Deserialize(item)
		if err != nil {
			return nil, fmt.Errorf("%ss[%d]: %w", c.name, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
