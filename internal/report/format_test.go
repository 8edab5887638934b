package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"380", "R$ 380,00"},
		{"120.5", "R$ 120,50"},
		{"1234.567", "R$ 1.234,57"},
		{"-120", "-R$ 120,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBRL(dec(tt.in)), tt.in)
	}
}
