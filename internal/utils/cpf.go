package utils

// CleanCPF removes all non-numeric characters from CPF
func CleanCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}

// FormatCPF formats CPF with dots and dash (XXX.XXX.XXX-XX)
func FormatCPF(cpf string) string {
	cleaned := CleanCPF(cpf)
	if len(cleaned) != 11 {
		return cpf // Return original if invalid length
	}

	return cleaned[:3] + "." + cleaned[3:6] + "." + cleaned[6:9] + "-" + cleaned[9:11]
}

// IsValidCPF validates CPF using the official algorithm
func IsValidCPF(cpf string) bool {
	cleaned := CleanCPF(cpf)

	if len(cleaned) != 11 {
		return false
	}

	// Sequences like 00000000000 pass the check-digit math but are not
	// assignable CPFs
	if isAllSameDigit(cleaned) {
		return false
	}

	// First check digit: weights 10 down to 2 over the first 9 digits
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cleaned[i]-'0') * (10 - i)
	}
	if cpfCheckDigit(sum) != int(cleaned[9]-'0') {
		return false
	}

	// Second check digit: weights 11 down to 2 over the first 10 digits
	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(cleaned[i]-'0') * (11 - i)
	}
	return cpfCheckDigit(sum) == int(cleaned[10]-'0')
}

// cpfCheckDigit computes (sum * 10) mod 11, mapping 10 to 0
func cpfCheckDigit(sum int) int {
	digit := (sum * 10) % 11
	if digit == 10 {
		return 0
	}
	return digit
}

// GetCPFValidationError returns a user-facing message describing why the
// CPF is invalid, or an empty string when it is valid.
func GetCPFValidationError(cpf string) string {
	cleaned := CleanCPF(cpf)

	switch {
	case cleaned == "":
		return "Informe o CPF"
	case len(cleaned) != 11:
		return "CPF deve conter 11 dígitos"
	case !IsValidCPF(cleaned):
		return "CPF inválido"
	}
	return ""
}

// NormalizeCPF normalizes CPF by cleaning and validating
func NormalizeCPF(cpf string) (string, bool) {
	cleaned := CleanCPF(cpf)
	valid := IsValidCPF(cleaned)
	return cleaned, valid
}

// CPFInfo holds information about a CPF
type CPFInfo struct {
	Original  string `json:"original"`
	Cleaned   string `json:"cleaned"`
	Formatted string `json:"formatted"`
	Valid     bool   `json:"valid"`
}

// AnalyzeCPF analyzes a CPF string and returns detailed information
func AnalyzeCPF(cpf string) CPFInfo {
	cleaned := CleanCPF(cpf)
	valid := IsValidCPF(cleaned)
	formatted := ""

	if valid {
		formatted = FormatCPF(cleaned)
	}

	return CPFInfo{
		Original:  cpf,
		Cleaned:   cleaned,
		Formatted: formatted,
		Valid:     valid,
	}
}
