package annotation

import "fmt"

// SchemaError is returned when an unknown annotation kind is queried.
type SchemaError struct {
	Kind string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unknown annotation kind %q", e.Kind)
}

// AttributeError is returned when a loosely typed attribute value cannot be
// converted to the type declared by the schema.
type AttributeError struct {
	Kind      Kind
	Attribute string
	Value     any
	Reason    string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s: attribute %q (value %v): %s", e.Kind, e.Attribute, e.Value, e.Reason)
}
