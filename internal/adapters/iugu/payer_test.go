package iugu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitHolderName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{"first and last", "JOAO SILVA", "JOAO", "SILVA"},
		{"middle names join", "JOAO DA SILVA JR", "JOAO", "DA SILVA JR"},
		{"single token", "CHER", "CHER", ""},
		{"empty", "", "", ""},
		{"extra whitespace", "  JOAO   SILVA  ", "JOAO", "SILVA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := splitHolderName(tt.input)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestSplitPhone(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPrefix string
		wantLocal  string
	}{
		{"formatted number", "(11) 98888-7777", "11", "98888-7777"},
		{"no parenthesis passes through", "11988887777", "", "11988887777"},
		{"empty", "", "", ""},
		{"too short to slice", "(11)", "", "(11)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, local := splitPhone(tt.input)
			assert.Equal(t, tt.wantPrefix, prefix)
			assert.Equal(t, tt.wantLocal, local)
		})
	}
}
