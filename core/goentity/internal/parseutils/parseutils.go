// Package parseutils parses the key="value" attribute lists of //orm:
// comment directives.
package parseutils

import (
	"strings"
	"unicode"
)

// DirectivePrefix starts every mapping directive comment.
const DirectivePrefix = "//orm:"

// ParseDirective splits a comment such as
//
//	//orm:secondary_table name="CUST_DETAIL" foreign_key.name="FK_DETAIL"
//
// into the directive name and its attributes. ok is false when the comment
// is not a mapping directive.
func ParseDirective(comment string) (name string, attrs map[string]string, ok bool) {
	rest, found := strings.CutPrefix(comment, DirectivePrefix)
	if !found {
		return "", nil, false
	}
	name, args, _ := strings.Cut(rest, " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, false
	}
	return name, ParseKeyValueComment(args), true
}

// ParseKeyValueComment parses space separated key=value pairs. Values are
// either double quoted, with \" and \\ escapes, or run to the next space.
// A key without "=" is stored with the value "true".
func ParseKeyValueComment(s string) map[string]string {
	kv := make(map[string]string)
	i := 0
	for {
		for i < len(s) && unicode.IsSpace(rune(s[i])) {
			i++
		}
		if i >= len(s) {
			return kv
		}

		start := i
		for i < len(s) && s[i] != '=' && !unicode.IsSpace(rune(s[i])) {
			i++
		}
		key := s[start:i]
		if i >= len(s) || s[i] != '=' {
			kv[key] = "true"
			continue
		}
		i++ // '='

		if i < len(s) && s[i] == '"' {
			var value strings.Builder
			i++
			for i < len(s) && s[i] != '"' {
				if s[i] == '\\' && i+1 < len(s) {
					i++
				}
				value.WriteByte(s[i])
				i++
			}
			i++ // closing quote
			kv[key] = value.String()
			continue
		}

		start = i
		for i < len(s) && !unicode.IsSpace(rune(s[i])) {
			i++
		}
		kv[key] = s[start:i]
	}
}
