package parser

import "unicode"

// ContainsChinese reports whether s has at least one CJK ideograph.
func ContainsChinese(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// ContainsEnglish reports whether s has at least one ASCII letter.
func ContainsEnglish(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
