package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"formatted", "111.444.777-35", "11144477735"},
		{"already clean", "11144477735", "11144477735"},
		{"mixed garbage", "111a444b777c35", "11144477735"},
		{"empty", "", ""},
		{"only punctuation", "..-/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCPF(tt.input))
		})
	}
}

func TestCleanCPFIdempotent(t *testing.T) {
	inputs := []string{"111.444.777-35", "abc123", "", "529.982.247-25"}
	for _, in := range inputs {
		once := CleanCPF(in)
		assert.Equal(t, once, CleanCPF(once))
	}
}

func TestFormatCPF(t *testing.T) {
	assert.Equal(t, "111.444.777-35", FormatCPF("11144477735"))
	assert.Equal(t, "529.982.247-25", FormatCPF("52998224725"))

	// Lenient fallback: wrong digit count returns the input unchanged
	assert.Equal(t, "123", FormatCPF("123"))
	assert.Equal(t, "", FormatCPF(""))
}

func TestFormatCPFLength(t *testing.T) {
	// format(clean(x)) has fixed length 14 whenever the cleaned string has
	// exactly 11 digits
	formatted := FormatCPF(CleanCPF("111.444.777-35"))
	assert.Len(t, formatted, 14)
}

func TestIsValidCPF(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
		want bool
	}{
		{"known valid", "11144477735", true},
		{"known valid formatted", "111.444.777-35", true},
		{"second check digit flipped", "11144477736", false},
		{"first check digit flipped", "11144477745", false},
		{"valid 52998224725", "52998224725", true},
		{"valid 15350946056", "15350946056", true},
		{"valid 12345678909", "12345678909", true},
		{"too short", "1114447773", false},
		{"too long", "111444777350", false},
		{"empty", "", false},
		{"letters only", "abcdefghijk", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCPF(tt.cpf))
		})
	}
}

func TestIsValidCPFRepeatedDigits(t *testing.T) {
	// Every single-repeated-digit sequence must be rejected, even the ones
	// that satisfy the check-digit arithmetic
	for d := '0'; d <= '9'; d++ {
		cpf := strings.Repeat(string(d), 11)
		assert.False(t, IsValidCPF(cpf), "expected %s to be invalid", cpf)
	}
}

func TestGetCPFValidationError(t *testing.T) {
	assert.Equal(t, "Informe o CPF", GetCPFValidationError(""))
	assert.Equal(t, "Informe o CPF", GetCPFValidationError(".-"))
	assert.Equal(t, "CPF deve conter 11 dígitos", GetCPFValidationError("123"))
	assert.Equal(t, "CPF inválido", GetCPFValidationError("11144477736"))
	assert.Equal(t, "CPF inválido", GetCPFValidationError("11111111111"))
	assert.Empty(t, GetCPFValidationError("111.444.777-35"))
}

func TestNormalizeCPF(t *testing.T) {
	cleaned, valid := NormalizeCPF("111.444.777-35")
	assert.Equal(t, "11144477735", cleaned)
	assert.True(t, valid)

	cleaned, valid = NormalizeCPF("111.444.777-36")
	assert.Equal(t, "11144477736", cleaned)
	assert.False(t, valid)
}

func TestAnalyzeCPF(t *testing.T) {
	info := AnalyzeCPF("111.444.777-35")
	assert.Equal(t, "111.444.777-35", info.Original)
	assert.Equal(t, "11144477735", info.Cleaned)
	assert.Equal(t, "111.444.777-35", info.Formatted)
	assert.True(t, info.Valid)

	info = AnalyzeCPF("11144477736")
	assert.False(t, info.Valid)
	assert.Empty(t, info.Formatted)
}
