package codec

import "github.com/gyaneshwarpardhi/smartobjects/internal/model"

// EventFields is the reserved field map of an Event.
var EventFields = FieldMap{
	{Name: "eventId", Key: "event_id", Type: TypeGUID},
	{Name: "eventType", Key: "x_event_type", Type: TypeText},
	{Name: "timestamp", Key: "x_timestamp", Type: TypeDateTime},
	{Name: "deviceId", Key: "x_device_id", Type: TypeText},
}

// Events is the Event codec.
var Events = &Codec[*model.Event]{
	name:   "event",
	fields: EventFields,
	toRec: func(e *model.Event, rec *Record) {
		if v, ok := e.EventID(); ok {
			rec.set("eventId", v)
		}
		if v, ok := e.EventType(); ok {
			rec.set("eventType", v)
		}
		if v, ok := e.Timestamp(); ok {
			rec.set("timestamp", v)
		}
		if v, ok := e.DeviceID(); ok {
			rec.set("deviceId", v)
		}
		rec.Attributes = e.Attributes()
	},
	fromRec: func(rec Record) *model.Event {
		b := model.NewEventBuilder()
		if v, ok := rec.GUID("eventId"); ok {
			b.EventID(v)
		}
		if v, ok := rec.Text("eventType"); ok {
			b.EventType(v)
		}
		if v, ok := rec.Time("timestamp"); ok {
			b.Timestamp(v)
		}
		if v, ok := rec.Text("deviceId"); ok {
			b.DeviceID(v)
		}
		return b.Attributes(rec.Attributes).Build()
	},
}

func SerializeEvent(e *model.Event) ([]byte, error) { return Events.Serialize(e) }

func DeserializeEvent(data []byte) (*model.Event, error) { return Events.Deserialize(data) }
