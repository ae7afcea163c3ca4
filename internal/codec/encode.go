package codec

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/smartobjects/internal/model"
)

// objectWriter emits a flat JSON object member by member so that key order
// follows the field map.
type objectWriter struct {
	buf     bytes.Buffer
	members int
}

func (w *objectWriter) begin() { w.buf.WriteByte('{') }

func (w *objectWriter) end() []byte {
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}

func (w *objectWriter) member(key string, value []byte) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	if w.members > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(value)
	w.members++
	return nil
}

func encode(fields FieldMap, rec Record) ([]byte, error) {
	var w objectWriter
	w.begin()
	for _, f := range fields {
		v, ok := rec.values[f.Name]
		if !ok {
			continue
		}
		raw, err := encodeReserved(f, v)
		if err != nil {
			return nil, err
		}
		if err := w.member(f.Key, raw); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(rec.Attributes))
	for name := range rec.Attributes {
		if fields.Reserved(name) {
			return nil, fmt.Errorf("attribute '%s': %w", name, ErrReservedAttribute)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		raw, err := encodeAttribute(rec.Attributes[name])
		if err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", name, err)
		}
		if err := w.member(name, raw); err != nil {
			return nil, err
		}
	}
	return w.end(), nil
}

func encodeReserved(f Field, v any) ([]byte, error) {
	switch f.Type {
	case TypeText:
		if s, ok := v.(string); ok {
			return json.Marshal(s)
		}
	case TypeDateTime:
		if t, ok := v.(time.Time); ok {
			return json.Marshal(t.UTC().Format(DateTimeLayout))
		}
	case TypeGUID:
		if id, ok := v.(uuid.UUID); ok {
			return json.Marshal(id.String())
		}
	case TypeNumber:
		if n, ok := v.(float64); ok {
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("field '%s': non-finite number %v", f.Key, n)
			}
			return []byte(strconv.FormatFloat(n, 'f', -1, 64)), nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return []byte(strconv.FormatBool(b)), nil
		}
	}
	return nil, fmt.Errorf("field '%s': cannot encode %T as %s", f.Key, v, f.Type)
}

func encodeAttribute(v model.Value) ([]byte, error) {
	switch a := v.(type) {
	case model.Text:
		return json.Marshal(string(a))
	case model.Bool:
		return []byte(strconv.FormatBool(bool(a))), nil
	case model.Int:
		return []byte(strconv.FormatInt(int64(a), 10)), nil
	case model.Float:
		return formatFloat(float64(a))
	case model.TextList:
		if a == nil {
			return []byte("[]"), nil
		}
		return json.Marshal([]string(a))
	case nil:
		return nil, fmt.Errorf("nil value")
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// formatFloat always keeps a decimal point so that whole floats decode back
// as floats.
func formatFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v", f)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return []byte(s), nil
}
