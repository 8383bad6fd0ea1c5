package validator

import "github.com/GustavoBertuzzi/API-Kolado/pkg/constants"

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidCheckDigits verifies the two trailing check digits of a digits-only
// CPF or CNPJ. Sequences of a single repeated digit are rejected.
func ValidCheckDigits(digits string) bool {
	if !allDigits(digits) || repeated(digits) {
		return false
	}
	switch len(digits) {
	case constants.CPFLength:
		return validCPF(digits)
	case constants.CNPJLength:
		return validCNPJ(digits)
	default:
		return false
	}
}

func validCPF(d string) bool {
	for _, n := range []int{9, 10} {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(d[i]-'0') * (n + 1 - i)
		}
		check := sum * 10 % 11 % 10
		if check != int(d[n]-'0') {
			return false
		}
	}
	return true
}

func validCNPJ(d string) bool {
	for _, weights := range [][]int{cnpjFirstWeights, cnpjSecondWeights} {
		sum := 0
		for i, w := range weights {
			sum += int(d[i]-'0') * w
		}
		check := 0
		if r := sum % 11; r >= 2 {
			check = 11 - r
		}
		if check != int(d[len(weights)]-'0') {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func repeated(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
