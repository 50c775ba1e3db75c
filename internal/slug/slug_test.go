package slug

import "testing"

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Electronics":           "electronics",
		"  Mugs & Cups  ":       "mugs-cups",
		"NUC 11 Mini PC":        "nuc-11-mini-pc",
		"plain":                 "plain",
		"Trailing punctuation!": "trailing-punctuation",
		"---":                   "",
		"":                      "",
		"Café au lait":          "caf-au-lait",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}
