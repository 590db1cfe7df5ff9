package engine

import "testing"

func TestParseOrderID(t *testing.T) {
	cases := []struct {
		location string
		id       string
		outcome  IDOutcome
	}{
		{"https://api.example.com/v1/accounts/H/orders/98765", "98765", IDPresent},
		{"https://api.example.com/v1/accounts/H/orders/98765/", "98765", IDPresent},
		{"/orders/1", "1", IDPresent},
		{"", "", IDAbsent},
		{"   ", "", IDAbsent},
		{"https://api.example.com/orders/abc123", "", IDMalformed},
		{"https://api.example.com/orders/", "", IDMalformed},
		{"no-slashes-here", "", IDMalformed},
	}

	for _, c := range cases {
		id, outcome := ParseOrderID(c.location)
		if id != c.id || outcome != c.outcome {
			t.Errorf("ParseOrderID(%q) = (%q, %s), want (%q, %s)",
				c.location, id, outcome, c.id, c.outcome)
		}
	}
}
