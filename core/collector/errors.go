package collector

import (
	"fmt"

	"github.com/stokaro/ormeta/core/annotation"
)

// UnsupportedTargetError is returned when an annotation is found on an element
// kind its schema does not allow.
type UnsupportedTargetError struct {
	Kind    annotation.Kind
	Element ElementRef
	Allowed annotation.Target
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("annotation %s is not allowed on %s %s (allowed: %s)", e.Kind, e.Element.Kind, e.Element, e.Allowed)
}
