package refill

import (
	"regexp"
	"strings"
)

// expirationReformatLength is the length of "MM/YYYY"
const expirationReformatLength = 7

var expirationPattern = regexp.MustCompile(`^(\d\d)(\s?[/-]?\s?)?(\d\d|\d\d\d\d)$`)

// RepairExpiration detects a page script that cut a 4-digit year down to
// its first two digits, e.g. "05/2099" rewritten to "05 / 20", and returns
// the value that should be forced instead ("05 / 99").
func RepairExpiration(oldValue, newValue string) (string, bool) {
	if len(oldValue) != expirationReformatLength || oldValue == newValue {
		return "", false
	}
	m := expirationPattern.FindStringSubmatch(newValue)
	if m == nil || len(m[3]) != 2 {
		return "", false
	}
	if !strings.HasPrefix(oldValue, m[1]) {
		return "", false
	}
	year := oldValue[len(oldValue)-4:]
	for _, r := range year {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return newValue[:len(newValue)-2] + year[2:], true
}
