package utils

import (
	"regexp"
	"strconv"
)

var nonDigits = regexp.MustCompile(`\D`)

// CleanCNPJ removes all non-numeric characters from CNPJ
func CleanCNPJ(cnpj string) string {
	return nonDigits.ReplaceAllString(cnpj, "")
}

// FormatCNPJ formats CNPJ with dots, slash and dash (XX.XXX.XXX/XXXX-XX)
func FormatCNPJ(cnpj string) string {
	cleaned := CleanCNPJ(cnpj)
	if len(cleaned) != 14 {
		return cnpj // Return original if invalid length
	}

	return cleaned[:2] + "." + cleaned[2:5] + "." + cleaned[5:8] + "/" + cleaned[8:12] + "-" + cleaned[12:14]
}

// IsValidCNPJ validates CNPJ using the official algorithm
func IsValidCNPJ(cnpj string) bool {
	cleaned := CleanCNPJ(cnpj)

	if len(cleaned) != 14 {
		return false
	}

	// Sequences like 00000000000000 pass the check-digit math but are not
	// assignable CNPJs
	if isAllSameDigit(cleaned) {
		return false
	}

	digits := make([]int, 14)
	for i, char := range cleaned {
		digit, err := strconv.Atoi(string(char))
		if err != nil {
			return false
		}
		digits[i] = digit
	}

	// Validate first check digit
	if !isValidCheckDigit(digits[:12], digits[12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) {
		return false
	}

	// Validate second check digit
	if !isValidCheckDigit(digits[:13], digits[13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) {
		return false
	}

	return true
}

// GetCNPJValidationError returns a user-facing message describing why the
// CNPJ is invalid, or an empty string when it is valid.
func GetCNPJValidationError(cnpj string) string {
	cleaned := CleanCNPJ(cnpj)

	switch {
	case cleaned == "":
		return "Informe o CNPJ"
	case len(cleaned) != 14:
		return "CNPJ deve conter 14 dígitos"
	case !IsValidCNPJ(cleaned):
		return "CNPJ inválido"
	}
	return ""
}

// isAllSameDigit checks if all digits in the string are the same
func isAllSameDigit(s string) bool {
	if len(s) == 0 {
		return false
	}

	first := s[0]
	for _, char := range s {
		if byte(char) != first {
			return false
		}
	}
	return true
}

// isValidCheckDigit validates a check digit using the given weights
func isValidCheckDigit(digits []int, checkDigit int, weights []int) bool {
	sum := 0
	for i, digit := range digits {
		sum += digit * weights[i]
	}

	remainder := sum % 11
	expectedDigit := 0
	if remainder >= 2 {
		expectedDigit = 11 - remainder
	}

	return expectedDigit == checkDigit
}

// NormalizeCNPJ normalizes CNPJ by cleaning and validating
func NormalizeCNPJ(cnpj string) (string, bool) {
	cleaned := CleanCNPJ(cnpj)
	valid := IsValidCNPJ(cleaned)
	return cleaned, valid
}

// CNPJInfo holds information about a CNPJ
type CNPJInfo struct {
	Original  string `json:"original"`
	Cleaned   string `json:"cleaned"`
	Formatted string `json:"formatted"`
	Valid     bool   `json:"valid"`
}

// AnalyzeCNPJ analyzes a CNPJ string and returns detailed information
func AnalyzeCNPJ(cnpj string) CNPJInfo {
	cleaned := CleanCNPJ(cnpj)
	valid := IsValidCNPJ(cleaned)
	formatted := ""

	if valid {
		formatted = FormatCNPJ(cleaned)
	}

	return CNPJInfo{
		Original:  cnpj,
		Cleaned:   cleaned,
		Formatted: formatted,
		Valid:     valid,
	}
}

// GetCNPJType returns the type of CNPJ (MATRIZ or FILIAL)
func GetCNPJType(cnpj string) string {
	cleaned := CleanCNPJ(cnpj)
	if len(cleaned) != 14 {
		return "INVALID"
	}

	// The branch number is positions 8-11 (0-indexed)
	branchNumber := cleaned[8:12]

	if branchNumber == "0001" {
		return "MATRIZ"
	}
	return "FILIAL"
}

// GetCNPJRoot returns the root CNPJ (first 8 digits)
func GetCNPJRoot(cnpj string) string {
	cleaned := CleanCNPJ(cnpj)
	if len(cleaned) != 14 {
		return ""
	}

	return cleaned[:8]
}

// GetCNPJBranch returns the branch number (positions 8-11)
func GetCNPJBranch(cnpj string) string {
	cleaned := CleanCNPJ(cnpj)
	if len(cleaned) != 14 {
		return ""
	}

	return cleaned[8:12]
}

// AreSameCNPJRoot checks if two CNPJs belong to the same company (same root)
func AreSameCNPJRoot(cnpj1, cnpj2 string) bool {
	root1 := GetCNPJRoot(cnpj1)
	root2 := GetCNPJRoot(cnpj2)

	return root1 != "" && root2 != "" && root1 == root2
}
