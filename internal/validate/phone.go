// Package validate holds input validation helpers shared by the HTTP handlers
// and the checkout flow.
package validate

import (
	"regexp"
	"strings"
)

// drcPattern matches DRC mobile numbers: international form (243 plus nine
// digits) or national form (0 plus nine digits).
var drcPattern = regexp.MustCompile(`^(243[0-9]{9}|0[0-9]{9})$`)

// Mobile operator names by number prefix.
const (
	OperatorAirtel  = "Airtel Money"
	OperatorOrange  = "Orange Money"
	OperatorMPesa   = "M-PESA"
	OperatorAfri    = "AfriMoney"
	OperatorUnknown = "Opérateur Mobile"
)

// cleanNumber strips spaces, dashes, and parentheses.
func cleanNumber(mobileNumber string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, mobileNumber)
}

// IsValidDRCMobileNumber reports whether the number is a DRC mobile number in
// international or national form.
func IsValidDRCMobileNumber(mobileNumber string) bool {
	return drcPattern.MatchString(cleanNumber(mobileNumber))
}

// FormatMobileNumber converts a national-form number to international form.
// Numbers already in international form pass through unchanged.
func FormatMobileNumber(mobileNumber string) string {
	n := cleanNumber(mobileNumber)
	if strings.HasPrefix(n, "0") {
		return "243" + n[1:]
	}
	return n
}

// MobileOperator returns the operator name for a DRC mobile number based on
// the three digits after the country code.
func MobileOperator(mobileNumber string) string {
	n := FormatMobileNumber(mobileNumber)
	if len(n) < 6 {
		return OperatorUnknown
	}
	switch n[3:5] {
	case "81":
		return OperatorAirtel
	case "82":
		return OperatorOrange
	case "97":
		return OperatorMPesa
	case "90":
		return OperatorAfri
	default:
		return OperatorUnknown
	}
}

// MaskMobileNumber hides the middle of a number for logging.
func MaskMobileNumber(mobileNumber string) string {
	if len(mobileNumber) < 8 {
		return mobileNumber
	}
	return mobileNumber[:3] + "****" + mobileNumber[len(mobileNumber)-3:]
}
