package shared

import "testing"

func TestNormalizeTrackKey(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		title  string
		want   string
	}{
		{"lowercases both parts", "Daft Punk", "Around The World", "daft punk:around the world"},
		{"trims surrounding whitespace", "  Miles Davis ", " So What ", "miles davis:so what"},
		{"empty artist", "", "Untitled", ":untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTrackKey(tt.artist, tt.title); got != tt.want {
				t.Errorf("NormalizeTrackKey(%q, %q) = %q, want %q", tt.artist, tt.title, got, tt.want)
			}
		})
	}
}

func TestStripOrdinalPrefix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dot ordinal", "1. Nirvana - Lithium", "Nirvana - Lithium"},
		{"paren ordinal", "12) Pixies - Debaser", "Pixies - Debaser"},
		{"leading whitespace", "  3.  Hole - Violet", "Hole - Violet"},
		{"no ordinal untouched", "Nirvana - Lithium", "Nirvana - Lithium"},
		{"number inside title untouched", "Blink 182 - Dammit", "Blink 182 - Dammit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripOrdinalPrefix(tt.input); got != tt.want {
				t.Errorf("StripOrdinalPrefix(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
