package model

import "strconv"

// FormatYear renders a signed year. Negative years are BCE: -431 -> "431 BC".
func FormatYear(year int) string {
	if year < 0 {
		return strconv.Itoa(-year) + " BC"
	}
	return strconv.Itoa(year)
}

// FormatLifespan renders "birth – death" with BCE formatting on both ends.
// A zero death year is treated as unknown.
func FormatLifespan(birth, death int) string {
	if death == 0 {
		return FormatYear(birth) + " – ?"
	}
	return FormatYear(birth) + " – " + FormatYear(death)
}
