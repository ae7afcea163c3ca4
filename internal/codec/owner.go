package codec

import "github.com/gyaneshwarpardhi/smartobjects/internal/model"

// OwnerFields is the reserved field map of an Owner.
var OwnerFields = FieldMap{
	{Name: "username", Key: "username", Type: TypeText},
	{Name: "registrationDate", Key: "x_registration_date", Type: TypeDateTime},
	{Name: "password", Key: "x_password", Type: TypeText},
	{Name: "eventId", Key: "event_id", Type: TypeGUID},
}

// Owners is the Owner codec.
var Owners = &Codec[*model.Owner]{
	name:   "owner",
	fields: OwnerFields,
	toRec: func(o *model.Owner, rec *Record) {
		if v, ok := o.Username(); ok {
			rec.set("username", v)
		}
		if v, ok := o.RegistrationDate(); ok {
			rec.set("registrationDate", v)
		}
		if v, ok := o.Password(); ok {
			rec.set("password", v)
		}
		if v, ok := o.EventID(); ok {
			rec.set("eventId", v)
		}
		rec.Attributes = o.Attributes()
	},
	fromRec: func(rec Record) *model.Owner {
		b := model.NewOwnerBuilder()
		if v, ok := rec.Text("username"); ok {
			b.Username(v)
		}
		if v, ok := rec.Time("registrationDate"); ok {
			b.RegistrationDate(v)
		}
		if v, ok := rec.Text("password"); ok {
			b.Password(v)
		}
		if v, ok := rec.GUID("eventId"); ok {
			b.EventID(v)
		}
		return b.Attributes(rec.Attributes).Build()
	},
}

func SerializeOwner(o *model.Owner) ([]byte, error) { return Owners.Serialize(o) }

func DeserializeOwner(data []byte) (*model.Owner, error) { return Owners.Deserialize(data) }
