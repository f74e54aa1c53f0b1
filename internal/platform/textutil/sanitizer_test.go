package textutil

import "testing"

func TestAnswerSanitizerStripsMarkup(t *testing.T) {
	s := NewAnswerSanitizer()

	cases := map[string]string{
		"plain text":                          "plain text",
		"  padded  ":                          "padded",
		"<script>alert(1)</script>tenant":     "tenant",
		"<b>flat 2</b>, high street":          "flat 2, high street",
		`<a href="https://x.example">rent</a>`: "rent",
	}
	for input, expected := range cases {
		if got := s.Sanitize(input); got != expected {
			t.Fatalf("Sanitize(%q) = %q, expected %q", input, got, expected)
		}
	}
}
