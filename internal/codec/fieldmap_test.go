package codec

import (
	"testing"
)

// probe exercises the NUMBER and BOOLEAN wire types, which no shipped
// entity uses yet.
var probe = &Codec[Record]{
	name: "probe",
	fields: FieldMap{
		{Name: "level", Key: "x_level", Type: TypeNumber},
		{Name: "active", Key: "x_active", Type: TypeBoolean},
	},
	toRec: func(in Record, out *Record) {
		for k, v := range in.values {
			out.set(k, v)
		}
		out.Attributes = in.Attributes
	},
	fromRec: func(r Record) Record { return r },
}

func TestNumberAndBooleanFields(t *testing.T) {
	rec, err := probe.Deserialize([]byte(`{"x_level":3,"x_active":true,"x_level_note":"ok"}`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if v, ok := rec.Number("level"); !ok || v != 3 {
		t.Errorf("level = %v, %v", v, ok)
	}
	if v, ok := rec.Bool("active"); !ok || !v {
		t.Errorf("active = %v, %v", v, ok)
	}
	out, err := probe.Serialize(rec)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(out) != `{"x_level":3,"x_active":true,"x_level_note":"ok"}` {
		t.Errorf("got %s", out)
	}
}

func TestNumberAndBooleanMismatch(t *testing.T) {
	cases := []struct {
		json string
		want string
	}{
		{`{"x_level":"3"}`, "Field 'x_level' does not match TYPE 'NUMBER'"},
		{`{"x_level":[3]}`, "Field 'x_level' does not match TYPE 'NUMBER'"},
		{`{"x_active":1}`, "Field 'x_active' does not match TYPE 'BOOLEAN'"},
		{`{"x_active":"true"}`, "Field 'x_active' does not match TYPE 'BOOLEAN'"},
	}
	for _, tc := range cases {
		_, err := probe.Deserialize([]byte(tc.json))
		if err == nil || err.Error() != tc.want {
			t.Errorf("%s: got %v, want %q", tc.json, err, tc.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]jsonKind{
		`"x"`:   kindString,
		`-1`:    kindNumber,
		`0.5`:   kindNumber,
		`true`:  kindBool,
		`false`: kindBool,
		`null`:  kindNull,
		`[]`:    kindArray,
		`{}`:    kindObject,
		``:      kindInvalid,
	}
	for in, want := range cases {
		if got := kindOf([]byte(in)); got != want {
			t.Errorf("kindOf(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldMapLookup(t *testing.T) {
	if f, ok := OwnerFields.ByKey("x_password"); !ok || f.Name != "password" || f.Type != TypeText {
		t.Errorf("ByKey(x_password) = %+v, %v", f, ok)
	}
	if _, ok := OwnerFields.ByKey("password"); ok {
		t.Error("domain name must not resolve as a wire key")
	}
	if f, ok := OwnerFields.ByName("eventId"); !ok || f.Key != "event_id" {
		t.Errorf("ByName(eventId) = %+v, %v", f, ok)
	}
	want := []string{"username", "x_registration_date", "x_password", "event_id"}
	got := OwnerFields.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
