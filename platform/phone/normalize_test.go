package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"070-123 45 67", "+46701234567"},
		{"0701234567", "+46701234567"},
		{"+46 70 123 45 67", "+46701234567"},
		{"+4670123456789012", "+4670123456789012"}, // invalid, passes through
		{"  070-123 45 67  ", "+46701234567"},
		{"internal ext 42", "internal ext 42"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
