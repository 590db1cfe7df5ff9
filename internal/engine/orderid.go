package engine

import "strings"

// IDOutcome tags the result of parsing a location-style order header,
// so Confirmed and Unconfirmed are structurally distinguished rather
// than hanging off an empty string.
type IDOutcome int

const (
	// IDPresent means the trailing path segment is a valid numeric id.
	IDPresent IDOutcome = iota
	// IDAbsent means no location header was returned at all.
	IDAbsent
	// IDMalformed means a header was returned but its trailing segment
	// is not a numeric order id.
	IDMalformed
)

func (o IDOutcome) String() string {
	switch o {
	case IDPresent:
		return "present"
	case IDAbsent:
		return "absent"
	case IDMalformed:
		return "malformed"
	}
	return "unknown"
}

// ParseOrderID extracts the order identifier from a location-style
// header: the final path segment, which must be a non-empty run of
// digits. Anything else yields an empty id and a non-present outcome.
func ParseOrderID(location string) (string, IDOutcome) {
	if strings.TrimSpace(location) == "" {
		return "", IDAbsent
	}

	trimmed := strings.TrimRight(location, "/")
	seg := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if seg == "" || !isDigits(seg) {
		return "", IDMalformed
	}
	return seg, IDPresent
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
