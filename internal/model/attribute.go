package model

import (
	"fmt"
	"slices"
)

// Value is a dynamically typed attribute value. The set of implementations
// is closed: Text, Bool, Int, Float and TextList.
type Value interface {
	// Kind returns the primitive classification of the value.
	Kind() Kind
	attributeValue()
}

// Kind classifies an attribute value.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindInt
	KindFloat
	KindTextList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindTextList:
		return "text_list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Text is a string attribute.
type Text string

// Bool is a boolean attribute.
type Bool bool

// Int is a 64-bit integer attribute.
type Int int64

// Float is a double-precision attribute. A whole number stored as Float stays
// a Float across the wire.
type Float float64

// TextList is an ordered sequence of strings.
type TextList []string

func (Text) Kind() Kind     { return KindText }
func (Bool) Kind() Kind     { return KindBool }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (TextList) Kind() Kind { return KindTextList }

func (Text) attributeValue()     {}
func (Bool) attributeValue()     {}
func (Int) attributeValue()      {}
func (Float) attributeValue()    {}
func (TextList) attributeValue() {}

// Attributes maps attribute names to values.
type Attributes map[string]Value

// Clone returns a deep copy; a nil receiver yields an empty map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		if l, ok := v.(TextList); ok {
			v = slices.Clone(l)
		}
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same names with values of the
// same kind and content.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ValuesEqual(av, bv) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two attribute values including their kind, so Int(10)
// and Float(10) are different.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if al, ok := a.(TextList); ok {
		return slices.Equal(al, b.(TextList))
	}
	return a == b
}
