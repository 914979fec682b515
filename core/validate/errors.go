package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Violation is one failed check.
type Violation struct {
	Rule    Rule
	Element string // "Class" or "Class.Member"
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Rule, v.Element, v.Message)
}

// ValidationError lists every violated check of one class, grouped by rule.
// Within a rule violations keep the order in which they were found.
type ValidationError struct {
	Entity     string
	Violations map[Rule][]Violation
}

func newValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Violations: map[Rule][]Violation{}}
}

func (e *ValidationError) add(rule Rule, element, format string, args ...any) {
	e.Violations[rule] = append(e.Violations[rule], Violation{
		Rule:    rule,
		Element: element,
		Message: fmt.Sprintf(format, args...),
	})
}

// Has reports whether at least one violation of rule was found.
func (e *ValidationError) Has(rule Rule) bool {
	return len(e.Violations[rule]) > 0
}

// Rules returns the violated rules in name order.
func (e *ValidationError) Rules() []Rule {
	rules := make([]Rule, 0, len(e.Violations))
	for rule, list := range e.Violations {
		if len(list) > 0 {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	return rules
}

// All returns every violation, ordered by rule name.
func (e *ValidationError) All() []Violation {
	var all []Violation
	for _, rule := range e.Rules() {
		all = append(all, e.Violations[rule]...)
	}
	return all
}

func (e *ValidationError) Error() string {
	var msg strings.Builder
	all := e.All()
	msg.WriteString(fmt.Sprintf("invalid mapping metadata for %s (%d violations):", e.Entity, len(all)))
	for i, v := range all {
		msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, v))
	}
	return msg.String()
}

// CyclicReferenceError reports a dependency cycle between classes. Cycle
// starts and ends with the same class name.
type CyclicReferenceError struct {
	Cycle []string
}

func (e *CyclicReferenceError) Error() string {
	return "cyclic reference: " + strings.Join(e.Cycle, " -> ")
}
