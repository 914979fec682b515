package decl

import "strings"

// IsMap reports whether the Go type expression denotes a map, ignoring pointers.
func IsMap(typ string) bool {
	return strings.HasPrefix(strings.TrimLeft(strings.TrimSpace(typ), "*"), "map[")
}

// MapKeyType returns the key type expression of a map type, or empty when
// typ is not a map.
func MapKeyType(typ string) string {
	t := strings.TrimLeft(strings.TrimSpace(typ), "*")
	if !strings.HasPrefix(t, "map[") {
		return ""
	}
	end := matchingBracket(t, len("map"))
	if end < 0 {
		return ""
	}
	return t[len("map["):end]
}

// ElementTypeName returns the class name a type expression refers to, looking
// through pointers, slices, arrays and map values and dropping any package
// qualifier:
//
//	"*CustomerKey"          -> "CustomerKey"
//	"[]Order"               -> "Order"
//	"map[string]*img.Image" -> "Image"
func ElementTypeName(typ string) string {
	t := strings.TrimSpace(typ)
	for {
		switch {
		case strings.HasPrefix(t, "*"):
			t = t[1:]
		case strings.HasPrefix(t, "map["):
			end := matchingBracket(t, len("map"))
			if end < 0 {
				return ""
			}
			t = t[end+1:]
		case strings.HasPrefix(t, "["):
			end := matchingBracket(t, 0)
			if end < 0 {
				return ""
			}
			t = t[end+1:]
		default:
			if i := strings.LastIndex(t, "."); i >= 0 {
				t = t[i+1:]
			}
			return t
		}
	}
}

func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
