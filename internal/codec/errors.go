package codec

import (
	"errors"
	"fmt"
)

// ErrReservedAttribute is returned when serializing an entity that carries an
// attribute whose name is a reserved wire key.
var ErrReservedAttribute = errors.New("attribute name is a reserved wire key")

// ValidationError reports a reserved field whose JSON value does not have the
// expected wire type. The message format is relied upon by API clients.
type ValidationError struct {
	Key  string
	Type WireType
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Field '%s' does not match TYPE '%s'", e.Key, e.Type)
}

// ParseError reports input that is not a well-formed JSON object, or an
// attribute whose value has an unsupported shape.
type ParseError struct {
	Key    string // member key, empty for document-level failures
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.Key != "" {
		msg = fmt.Sprintf("field '%s': %s", e.Key, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
