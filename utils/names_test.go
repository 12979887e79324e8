package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Zoë García", "zoe garcia"},
		{"  Anna   van der Merwe ", "anna van der merwe"},
		{"MÜLLER", "muller"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input=%q", tt.in)
	}
}
