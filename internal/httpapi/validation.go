package httpapi

import "strings"

func validUsername(s string) bool {
	if len(s) < 3 || len(s) > 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// validEmail is a shape check, not RFC parsing; deliverability is proven
// by the verification code anyway.
func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	rest := s[at+1:]
	if strings.IndexByte(rest, '@') != -1 {
		return false
	}
	dot := strings.LastIndexByte(rest, '.')
	return dot > 0 && dot < len(rest)-1
}
