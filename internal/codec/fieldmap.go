package codec

// DateTimeLayout is the wire layout for every timestamp field of every
// entity. Output is always rendered in UTC.
const DateTimeLayout = "2006-01-02T15:04:05Z07:00"

// WireType is the JSON kind a reserved field must carry on the wire.
type WireType string

const (
	TypeText     WireType = "TEXT"
	TypeDateTime WireType = "DATETIME"
	TypeGUID     WireType = "GUID"
	TypeNumber   WireType = "NUMBER"
	TypeBoolean  WireType = "BOOLEAN"
)

// Field maps one reserved domain field to its wire key.
type Field struct {
	Name string   // domain field name
	Key  string   // JSON object key
	Type WireType // expected wire type
}

// FieldMap is the ordered set of reserved fields of an entity. Serialization
// emits reserved fields in this order and deserialization validates them in
// this order.
type FieldMap []Field

// ByKey returns the field mapped to the given wire key.
func (m FieldMap) ByKey(key string) (Field, bool) {
	for _, f := range m {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// ByName returns the field for a domain field name.
func (m FieldMap) ByName(name string) (Field, bool) {
	for _, f := range m {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Reserved reports whether key is claimed by a reserved field.
func (m FieldMap) Reserved(key string) bool {
	_, ok := m.ByKey(key)
	return ok
}

// Keys returns the wire keys in declaration order.
func (m FieldMap) Keys() []string {
	out := make([]string, len(m))
	for i, f := range m {
		out[i] = f.Key
	}
	return out
}
