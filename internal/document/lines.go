package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// Line is one printed row of the invoice table.
type Line struct {
	Date    *time.Time
	Service string
	Pax     int
	CostPP  decimal.Decimal
	Amount  decimal.Decimal
	// Summary marks the single row printed for a booking without line
	// items; it has no per-pax cost.
	Summary bool
}

// InvoiceLines returns the rows printed on the invoice of d and their
// total.  The total is the sum of the printed rows and ignores the stored
// booking total when the two disagree.  A booking without line items is
// printed as one accommodation row worth its stored total.
func InvoiceLines(d *model.BookingDetail) ([]Line, decimal.Decimal) {
	var lines []Line
	if len(d.Items) == 0 {
		checkIn := d.CheckIn
		lines = []Line{{
			Date:    &checkIn,
			Service: accommodationSummary(d),
			Amount:  d.TotalAmount,
			Summary: true,
		}}
	} else {
		lines = make([]Line, 0, len(d.Items))
		for _, it := range d.Items {
			lines = append(lines, Line{
				Date:    it.Date,
				Service: it.Service,
				Pax:     it.Pax,
				CostPP:  it.CostPerPax,
				Amount:  it.Amount,
			})
		}
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return lines, total
}

func accommodationSummary(d *model.BookingDetail) string {
	nights := Nights(d.CheckIn, d.CheckOut)
	return fmt.Sprintf("Accommodation at %s, %s, %s",
		strings.TrimSpace(d.Hotel.Name), plural(nights, "night"), plural(d.Rooms, "room"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
