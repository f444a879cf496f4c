package document

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder is printed for missing dates and values.
const Placeholder = "—"

// Money formats d as US dollars with thousands separators and exactly two
// decimals, e.g. US$1,234.56.  The zero value prints as US$0.00.
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("US$")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// PrettyDate formats t as "17 FEBRUARY 2026".  A nil date prints as the
// placeholder.
func PrettyDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	return strings.ToUpper(t.UTC().Format("02 January 2006"))
}

// Nights returns the number of started days between checkIn and checkOut.
// Zero and negative spans give 0.
func Nights(checkIn, checkOut time.Time) int {
	span := checkOut.Sub(checkIn)
	if span <= 0 {
		return 0
	}
	n := int(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		n++
	}
	return n
}

func paxLabel(pax int) string {
	if pax <= 0 {
		return Placeholder
	}
	return strconv.Itoa(pax)
}
