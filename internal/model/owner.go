package model

import (
	"time"

	"github.com/google/uuid"
)

// Owner is a platform user who owns smart objects. Reserved fields are
// optional; use the accessors' ok result to tell absent from zero.
type Owner struct {
	username         *string
	password         *string
	registrationDate *time.Time
	eventID          *uuid.UUID
	attributes       Attributes
}

func (o *Owner) Username() (string, bool)            { return deref(o.username) }
func (o *Owner) Password() (string, bool)            { return deref(o.password) }
func (o *Owner) RegistrationDate() (time.Time, bool) { return deref(o.registrationDate) }
func (o *Owner) EventID() (uuid.UUID, bool)          { return deref(o.eventID) }

// Attributes returns a copy of the owner's attributes. Never nil.
func (o *Owner) Attributes() Attributes { return o.attributes.Clone() }

// Attribute returns a single attribute value.
func (o *Owner) Attribute(name string) (Value, bool) {
	v, ok := o.attributes[name]
	return v, ok
}

// OwnerBuilder accumulates fields for an Owner. The zero value is ready to use.
type OwnerBuilder struct {
	o Owner
}

func NewOwnerBuilder() *OwnerBuilder { return &OwnerBuilder{} }

func (b *OwnerBuilder) Username(v string) *OwnerBuilder {
	b.o.username = &v
	return b
}

func (b *OwnerBuilder) Password(v string) *OwnerBuilder {
	b.o.password = &v
	return b
}

func (b *OwnerBuilder) RegistrationDate(v time.Time) *OwnerBuilder {
	b.o.registrationDate = &v
	return b
}

func (b *OwnerBuilder) EventID(v uuid.UUID) *OwnerBuilder {
	b.o.eventID = &v
	return b
}

// Attribute sets one attribute, replacing any previous value under name.
func (b *OwnerBuilder) Attribute(name string, v Value) *OwnerBuilder {
	if b.o.attributes == nil {
		b.o.attributes = Attributes{}
	}
	b.o.attributes[name] = v
	return b
}

// Attributes merges attrs into the builder.
func (b *OwnerBuilder) Attributes(attrs Attributes) *OwnerBuilder {
	for k, v := range attrs {
		b.Attribute(k, v)
	}
	return b
}

// Build returns an immutable Owner. The builder may be reused afterwards
// without affecting the returned value.
func (b *OwnerBuilder) Build() *Owner {
	o := b.o
	o.attributes = b.o.attributes.Clone()
	return &o
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
