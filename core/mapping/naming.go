package mapping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stokaro/ormeta/config"
)

// Namer synthesizes default identifiers. Explicitly declared names are never
// passed through it.
//
// A Namer wraps a cases.Caser, which keeps state; use one Namer per goroutine.
type Namer struct {
	caser    cases.Caser
	preserve bool
}

// NewNamer returns a namer for the configured identifier case.
func NewNamer(identifierCase string) Namer {
	switch identifierCase {
	case config.IdentifierCasePreserve:
		return Namer{preserve: true}
	case config.IdentifierCaseLower:
		return Namer{caser: cases.Lower(language.Und)}
	default:
		return Namer{caser: cases.Upper(language.Und)}
	}
}

// Identifier joins parts with "_" and applies the identifier case.
func (n Namer) Identifier(parts ...string) string {
	joined := strings.Join(parts, "_")
	if n.preserve {
		return joined
	}
	return n.caser.String(joined)
}
