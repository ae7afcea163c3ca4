package codec

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/smartobjects/internal/model"
)

type jsonKind int

const (
	kindInvalid jsonKind = iota
	kindString
	kindNumber
	kindBool
	kindNull
	kindArray
	kindObject
)

// kindOf classifies a raw JSON value by its first byte. The value has
// already been accepted by the JSON parser.
func kindOf(raw []byte) jsonKind {
	if len(raw) == 0 {
		return kindInvalid
	}
	switch c := raw[0]; {
	case c == '"':
		return kindString
	case c == 't' || c == 'f':
		return kindBool
	case c == 'n':
		return kindNull
	case c == '[':
		return kindArray
	case c == '{':
		return kindObject
	case c == '-' || (c >= '0' && c <= '9'):
		return kindNumber
	}
	return kindInvalid
}

var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// wellFormed checks the token grammar of a raw value. Splitting an object
// into raw members accepts number tokens such as "01", "1." or "-", so every
// member is checked before any type inference.
func wellFormed(raw []byte) error {
	switch kindOf(raw) {
	case kindString:
		return nil
	case kindNumber:
		if !numberLiteral.Match(raw) {
			return fmt.Errorf("invalid number %q", raw)
		}
		return nil
	case kindBool:
		if string(raw) != "true" && string(raw) != "false" {
			return fmt.Errorf("invalid literal %q", raw)
		}
		return nil
	case kindNull:
		if string(raw) != "null" {
			return fmt.Errorf("invalid literal %q", raw)
		}
		return nil
	case kindArray:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return err
		}
		for _, e := range elems {
			if err := wellFormed(bytes.TrimSpace(e)); err != nil {
				return err
			}
		}
		return nil
	case kindObject:
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return err
		}
		for _, m := range members {
			if err := wellFormed(bytes.TrimSpace(m)); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("invalid token %q", raw)
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if !utf8.Valid(trimmed) {
		return nil, &ParseError{Reason: "document is not valid UTF-8"}
	}
	if kindOf(trimmed) != kindObject {
		if err := json.Unmarshal(trimmed, new(any)); err != nil {
			return nil, &ParseError{Reason: "malformed JSON document", Err: err}
		}
		return nil, &ParseError{Reason: "document is not a JSON object"}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ParseError{Reason: "malformed JSON document", Err: err}
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if err := wellFormed(bytes.TrimSpace(raw[key])); err != nil {
			return nil, &ParseError{Key: key, Reason: "malformed JSON value", Err: err}
		}
	}
	return raw, nil
}

func decode(fields FieldMap, data []byte) (Record, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return Record{}, err
	}

	rec := newRecord()
	for _, f := range fields {
		v, ok := raw[f.Key]
		if !ok {
			continue
		}
		val, err := decodeReserved(f, bytes.TrimSpace(v))
		if err != nil {
			return Record{}, err
		}
		rec.values[f.Name] = val
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		if !fields.Reserved(key) {
			keys = append(keys, key)
		}
	}
	// Sorted so the reported error is the same on every run.
	slices.Sort(keys)
	for _, key := range keys {
		val, err := decodeAttribute(key, bytes.TrimSpace(raw[key]))
		if err != nil {
			return Record{}, err
		}
		rec.Attributes[key] = val
	}
	return rec, nil
}

func decodeReserved(f Field, raw []byte) (any, error) {
	mismatch := &ValidationError{Key: f.Key, Type: f.Type}
	switch f.Type {
	case TypeText:
		if s, ok := unquote(raw); ok {
			return s, nil
		}
	case TypeDateTime:
		if s, ok := unquote(raw); ok {
			if t, err := time.Parse(DateTimeLayout, s); err == nil {
				return t, nil
			}
		}
	case TypeGUID:
		// uuid.Parse also accepts urn and braced forms; the wire only
		// carries the 36-character hyphenated form.
		if s, ok := unquote(raw); ok && len(s) == 36 {
			if id, err := uuid.Parse(s); err == nil {
				return id, nil
			}
		}
	case TypeNumber:
		if kindOf(raw) == kindNumber {
			if n, err := strconv.ParseFloat(string(raw), 64); err == nil {
				return n, nil
			}
		}
	case TypeBoolean:
		if kindOf(raw) == kindBool {
			return raw[0] == 't', nil
		}
	}
	return nil, mismatch
}

func decodeAttribute(key string, raw []byte) (model.Value, error) {
	switch kindOf(raw) {
	case kindString:
		if s, ok := unquote(raw); ok {
			return model.Text(s), nil
		}
	case kindBool:
		return model.Bool(raw[0] == 't'), nil
	case kindNumber:
		if bytes.ContainsAny(raw, ".eE") {
			f, err := strconv.ParseFloat(string(raw), 64)
			if err != nil {
				return nil, &ParseError{Key: key, Reason: "invalid floating point number", Err: err}
			}
			return model.Float(f), nil
		}
		i, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, &ParseError{Key: key, Reason: "integer out of range", Err: err}
		}
		return model.Int(i), nil
	case kindArray:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, &ParseError{Key: key, Reason: "invalid array", Err: err}
		}
		list := make(model.TextList, 0, len(elems))
		for _, e := range elems {
			s, ok := unquote(bytes.TrimSpace(e))
			if !ok {
				return nil, &ParseError{Key: key, Reason: "array must contain only strings"}
			}
			list = append(list, s)
		}
		return list, nil
	case kindNull:
		return nil, &ParseError{Key: key, Reason: "null is not a supported value"}
	case kindObject:
		return nil, &ParseError{Key: key, Reason: "nested objects are not supported"}
	}
	return nil, &ParseError{Key: key, Reason: "unsupported value"}
}

func unquote(raw []byte) (string, bool) {
	if kindOf(raw) != kindString {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
