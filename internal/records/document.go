package records

import "fmt"

// Document is a stored record as returned by a document store.
type Document map[string]any

type hexEncoder interface {
	Hex() string
}

// Lookup returns the raw value stored under field and whether the key exists.
func (document Document) Lookup(field string) (any, bool) {
	if document == nil {
		return nil, false
	}
	value, exists := document[field]
	return value, exists
}

// Field converts the value stored under name into a Field.
func (document Document) Field(name string) Field {
	value, exists := document.Lookup(name)
	if !exists {
		return AbsentField()
	}
	if value == nil {
		return NullField()
	}
	return PresentField(stringifyValue(value))
}

func stringifyValue(value any) string {
	switch typedValue := value.(type) {
	case string:
		return typedValue
	case hexEncoder:
		return typedValue.Hex()
	default:
		return fmt.Sprint(typedValue)
	}
}
