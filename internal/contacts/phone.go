package contacts

import "strings"

// NormalizePhone rewrites a phone number to the domestic leading-zero
// form: "+62 812-3456" and "62812..." both become "0812...". Inputs with
// no digits come back empty.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "62") && len(s) > 4 {
		return "0" + s[2:]
	}
	if !strings.HasPrefix(s, "0") {
		return "0" + s
	}
	return s
}
