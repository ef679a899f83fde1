package pipeline

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// fallbackHotelCode is used when the hotel name yields no usable characters
const fallbackHotelCode = "HTL"

// HotelCode derives the three-letter code embedded in quotation references:
// the upper-cased first three letters or digits of the hotel name.
func HotelCode(hotelName string) string {
	var b strings.Builder
	taken := 0
	for _, r := range hotelName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			taken++
			if taken == 3 {
				break
			}
		}
	}
	if taken < 3 {
		return fallbackHotelCode
	}
	return b.String()
}

// Period returns the calendar-month bucket, e.g. "2608" for August 2026.
// Reference sequences restart at 1 in each period.
func Period(t time.Time) string {
	return t.Format("0601")
}

// FormatReference builds a quotation reference of the shape
// Q-<HOTELCODE>-<YYMM>-<SEQ> with a 4-digit zero-padded sequence.
func FormatReference(hotelName string, t time.Time, seq int64) string {
	return fmt.Sprintf("Q-%s-%s-%04d", HotelCode(hotelName), Period(t), seq)
}
