package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is a time-stamped occurrence reported by a device.
type Event struct {
	eventID    *uuid.UUID
	eventType  *string
	timestamp  *time.Time
	deviceID   *string
	attributes Attributes
}

func (e *Event) EventID() (uuid.UUID, bool)   { return deref(e.eventID) }
func (e *Event) EventType() (string, bool)    { return deref(e.eventType) }
func (e *Event) Timestamp() (time.Time, bool) { return deref(e.timestamp) }
func (e *Event) DeviceID() (string, bool)     { return deref(e.deviceID) }

// Attributes returns a copy of the event's attributes. Never nil.
func (e *Event) Attributes() Attributes { return e.attributes.Clone() }

func (e *Event) Attribute(name string) (Value, bool) {
	v, ok := e.attributes[name]
	return v, ok
}

// ToBuilder returns a builder seeded with a copy of e, used to derive a
// modified event (for example to assign a missing id).
func (e *Event) ToBuilder() *EventBuilder {
	b := &EventBuilder{e: *e}
	b.e.attributes = e.attributes.Clone()
	return b
}

// EventBuilder accumulates fields for an Event.
type EventBuilder struct {
	e Event
}

func NewEventBuilder() *EventBuilder { return &EventBuilder{} }

func (b *EventBuilder) EventID(v uuid.UUID) *EventBuilder {
	b.e.eventID = &v
	return b
}

func (b *EventBuilder) EventType(v string) *EventBuilder {
	b.e.eventType = &v
	return b
}

func (b *EventBuilder) Timestamp(v time.Time) *EventBuilder {
	b.e.timestamp = &v
	return b
}

func (b *EventBuilder) DeviceID(v string) *EventBuilder {
	b.e.deviceID = &v
	return b
}

func (b *EventBuilder) Attribute(name string, v Value) *EventBuilder {
	if b.e.attributes == nil {
		b.e.attributes = Attributes{}
	}
	b.e.attributes[name] = v
	return b
}

func (b *EventBuilder) Attributes(attrs Attributes) *EventBuilder {
	for k, v := range attrs {
		b.Attribute(k, v)
	}
	return b
}

func (b *EventBuilder) Build() *Event {
	e := b.e
	e.attributes = b.e.attributes.Clone()
	return &e
}
