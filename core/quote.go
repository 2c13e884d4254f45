package core

import "strings"

// Quote escapes token so a POSIX shell parses it as exactly one word. The
// empty string quotes to '', and embedded single quotes use the '"'"'
// splice. Tokens made only of unambiguous characters pass through untouched.
func Quote(token string) string {
	if token == "" {
		return "''"
	}
	if !needsQuoting(token) {
		return token
	}
	return "'" + strings.ReplaceAll(token, "'", `'"'"'`) + "'"
}

// needsQuoting reports whether token contains anything outside the ASCII
// set that every common shell treats literally.
func needsQuoting(token string) bool {
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case strings.IndexByte("_@%+=:,./-", c) >= 0:
		default:
			return true
		}
	}
	return false
}
