package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// Blank is printed in place of empty voucher fields so they can be
// completed by hand.
const Blank = "______________________________"

var voucherTerms = []string{
	"Please present this voucher upon arrival.",
	"This voucher is valid only for the services and dates stated above. " +
		"Extra services not listed here are payable directly to the hotel by the guest.",
	"Amendments and cancellations must be made in writing by the issuing tour operator.",
}

// Voucher renders the hotel voucher of d.
func (r *Renderer) Voucher(d *model.BookingDetail) ([]byte, error) {
	return output(r.voucherPage(d))
}

func (r *Renderer) voucherPage(d *model.BookingDetail) *page {
	now := r.now()
	voucherNo := Placeholder
	if d.Voucher != nil && d.Voucher.VoucherNumber != "" {
		voucherNo = d.Voucher.VoucherNumber
	}

	p := r.newPage("Voucher "+voucherNo, now)
	p.pdf.AddPage()
	r.header(p)

	p.font("B", 16)
	p.cell(contentW, 22, "HOTEL VOUCHER", 1, "C")
	p.font("", 10)
	p.cell(contentW, 14, "Voucher No: "+voucherNo, 1, "R")
	p.pdf.Ln(10)

	checkIn, checkOut := d.CheckIn, d.CheckOut
	const labelW = 140
	p.field("GUEST NAME:", strings.ToUpper(orPlaceholder(d.Client.Name)), labelW)
	p.field("HOTEL:", strings.ToUpper(orPlaceholder(d.Hotel.Name)), labelW)
	if strings.TrimSpace(d.Hotel.Location) != "" {
		p.field("LOCATION:", d.Hotel.Location, labelW)
	}
	p.field("ACCOMMODATION:", strings.ToUpper(plural(d.Rooms, "room")), labelW)
	p.field("CHECK-IN:", PrettyDate(&checkIn), labelW)
	p.field("CHECK-OUT:", PrettyDate(&checkOut), labelW)
	p.field("NIGHTS:", strconv.Itoa(Nights(checkIn, checkOut)), labelW)
	p.field("MEAL PLAN:", orBlank(d.MealPlan), labelW)

	p.font("B", 10)
	p.cell(labelW, 14, "SPECIAL REQUESTS:", 1, "L")
	p.font("", 10)
	overflow := func() {
		p.pdf.AddPage()
		p.pdf.SetY(margin)
		p.font("", 10)
	}
	p.paragraph(orBlank(d.SpecialRequests), 13, overflow)

	if contact := hotelContact(d.Hotel); contact != "" {
		p.pdf.Ln(6)
		p.font("I", 9)
		p.cell(contentW, 12, "Hotel contact: "+contact, 1, "L")
	}

	p.pdf.Ln(16)
	p.font("", 9)
	for _, term := range voucherTerms {
		p.paragraph(term, 12, overflow)
		p.pdf.Ln(3)
	}

	// Reference line at the bottom of the last page.
	ref := fmt.Sprintf("Ref: %s | Booking #%d | Invoice: %s | Generated %s",
		voucherNo, d.ID, invoiceNumberOr(d, Placeholder), strings.ToUpper(now.UTC().Format("02 January 2006 15:04 MST")))
	if !p.fits(24) {
		overflow()
	}
	p.pdf.SetXY(margin, bottomLimit-12)
	p.font("", 8)
	p.pdf.SetTextColor(90, 90, 90)
	p.cell(contentW, 12, ref, 1, "L")
	p.pdf.SetTextColor(0, 0, 0)
	return p
}

func hotelContact(h model.Hotel) string {
	var parts []string
	for _, s := range []string{h.Phone, h.Email} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " / ")
}

func invoiceNumberOr(d *model.BookingDetail, def string) string {
	if d.Invoice != nil && d.Invoice.InvoiceNumber != "" {
		return d.Invoice.InvoiceNumber
	}
	return def
}

func orBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return Blank
	}
	return s
}
