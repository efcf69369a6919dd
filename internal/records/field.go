package records

import "fmt"

const (
	absentFieldRenderingConstant  = "<absent>"
	nullFieldRenderingConstant    = "<null>"
	presentFieldRenderingTemplate = "%q"
)

// FieldState enumerates the three observable states of a stored field.
type FieldState int

// Supported field states.
const (
	FieldStateAbsent FieldState = iota
	FieldStateNull
	FieldStatePresent
)

// Field is a tagged variant: Present(value) | Null | Absent.
type Field struct {
	state FieldState
	value string
}

// PresentField returns a field holding value.
func PresentField(value string) Field {
	return Field{state: FieldStatePresent, value: value}
}

// NullField returns a field explicitly stored as null.
func NullField() Field {
	return Field{state: FieldStateNull}
}

// AbsentField returns a field missing from the stored document.
func AbsentField() Field {
	return Field{state: FieldStateAbsent}
}

// State reports which variant the field holds.
func (field Field) State() FieldState {
	return field.state
}

// Value returns the stored value and whether the field is present.
func (field Field) Value() (string, bool) {
	if field.state != FieldStatePresent {
		return "", false
	}
	return field.value, true
}

// IsAbsent reports whether the field was missing.
func (field Field) IsAbsent() bool {
	return field.state == FieldStateAbsent
}

// IsNull reports whether the field was stored as null.
func (field Field) IsNull() bool {
	return field.state == FieldStateNull
}

// IsEmptyString reports whether the field is present and holds "".
// Whitespace-only values are not empty.
func (field Field) IsEmptyString() bool {
	return field.state == FieldStatePresent && len(field.value) == 0
}

// String renders the field for report lines.
func (field Field) String() string {
	switch field.state {
	case FieldStateNull:
		return nullFieldRenderingConstant
	case FieldStatePresent:
		return fmt.Sprintf(presentFieldRenderingTemplate, field.value)
	default:
		return absentFieldRenderingConstant
	}
}
