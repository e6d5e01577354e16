package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ClassID accepts short slug-style identifiers ("cs101", "math-7b").
func ClassID(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 64 {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
