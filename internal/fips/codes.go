package fips

import "strings"

// PadStateCode left-pads a state FIPS code to 2 digits.
func PadStateCode(code string) string {
	return padCode(code, 2)
}

// PadCountyCode left-pads a county FIPS code to 3 digits.
func PadCountyCode(code string) string {
	return padCode(code, 3)
}

// padCode restores leading zeros that spreadsheet tools strip from numeric
// codes. Empty input stays empty.
func padCode(code string, width int) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}
