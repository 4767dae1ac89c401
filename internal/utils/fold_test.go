package utils

import (
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Café", "cafe"},
		{"Pokémon Figure", "pokemon figure"},
		{"ORGANIZER", "organizer"},
		{"Décoration", "decoration"},
		{"print-in-place", "print-in-place"},
		{"", ""},
	}

	for _, test := range tests {
		result := Fold(test.input)
		if result != test.expected {
			t.Errorf("Fold(%q) = %q; expected %q", test.input, result, test.expected)
		}
	}
}
