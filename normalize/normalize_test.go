package normalize

import "testing"

func TestWord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"boode", "boode"},
		{"generakv", "generakū"},   // v convention for ū
		{"generakû", "generakū"},   // circumflex convention
		{"xun", "šun"},             // x convention for š
		{"shun", "šun"},            // digraph convention
		{"Arambi", "arambi"},       // case folding
		{"gisūn", "gisūn"},         // canonical ū untouched
		{"hūlāmbi", "hūlambi"},     // macron folded to plain vowel
		{"mēde", "mede"},
	}
	for _, tt := range tests {
		if got := Word(tt.in); got != tt.want {
			t.Errorf("Word(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWordCombiningMarks(t *testing.T) {
	// u + combining macron (U+0304) must compose to ū before mapping.
	in := "gisūn"
	if got := Word(in); got != "gisūn" {
		t.Errorf("Word(%q) = %q, want gisūn", in, got)
	}
}

func TestWordDigraphAfterRuneMapping(t *testing.T) {
	// The s+h sequence must survive the rune pass and then collapse, even
	// when the h came from an uppercase original.
	if got := Word("SHanggan"); got != "šanggan" {
		t.Errorf("Word(SHanggan) = %q", got)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"bi boode genembi", "bi boode genembi"},
		{"Bi  generakv", "bi generakū"},      // whitespace collapsed
		{"xun   be\ttuwambi", "šun be tuwambi"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
