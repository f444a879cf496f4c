package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

type column struct {
	title string
	width float64
	align string
}

var invoiceColumns = [...]column{
	{"Date", 95, "L"},
	{"Service Detail", 175, "L"},
	{"# Pax", 45, "C"},
	{"Cost P.P.", 90, "R"},
	{"Amount US$", 90, "R"},
}

const (
	rowLineH     = 12.0
	rowPadding   = 4.0
	headerRowH   = 18.0
	totalBlockH  = 30.0
	serviceIndex = 1
)

// Invoice renders the proforma invoice of d.
func (r *Renderer) Invoice(d *model.BookingDetail) ([]byte, error) {
	return output(r.invoicePage(d))
}

func (r *Renderer) invoicePage(d *model.BookingDetail) *page {
	now := r.now()
	number := invoiceNumberOr(d, Placeholder)

	p := r.newPage("Invoice "+number, now)
	p.pdf.AddPage()
	r.header(p)

	p.font("B", 13)
	p.cell(contentW, 18, "PROFORMA INVOICE", 1, "C")
	badgeY := p.pdf.GetY() + 6
	p.badge(d.Status, pageWidth-margin-80, badgeY)
	p.pdf.SetXY(margin, badgeY)

	// Meta block.
	p.field("INVOICE NUMBER:", number, 150)
	p.field("INVOICE DATE:", PrettyDate(&now), 150)
	p.field("LAST DATE OF PAYMENT:", PrettyDate(d.LastPaymentDate), 150)
	p.pdf.Ln(8)

	// Billed to.
	p.font("B", 10)
	p.cell(contentW, 14, "BILLED TO :", 1, "L")
	p.font("", 10)
	p.cell(contentW, 13, orPlaceholder(d.Client.Name), 1, "L")
	for _, extra := range []string{d.Client.Company, d.Client.Email, d.Client.Phone, d.Client.Country} {
		if strings.TrimSpace(extra) != "" {
			p.cell(contentW, 13, extra, 1, "L")
		}
	}
	p.pdf.Ln(8)

	// Stay summary.
	checkIn, checkOut := d.CheckIn, d.CheckOut
	p.field("HOTEL:", strings.ToUpper(orPlaceholder(d.Hotel.Name)), 100)
	p.field("CHECK-IN:", PrettyDate(&checkIn), 100)
	p.field("CHECK-OUT:", PrettyDate(&checkOut), 100)
	p.field("NIGHTS / ROOMS:", fmt.Sprintf("%d / %d", Nights(checkIn, checkOut), d.Rooms), 100)
	p.pdf.Ln(8)

	// Reference line.
	refY := p.pdf.GetY()
	invoiceRef := invoiceNumberOr(d, strconv.FormatUint(d.ID, 10))
	p.font("B", 10)
	p.pdf.SetXY(margin, refY)
	p.cell(150, 14, "Ref: "+orPlaceholder(d.Ref), 0, "L")
	p.cell(200, 14, "Name: "+orPlaceholder(d.Client.Name), 0, "L")
	p.cell(contentW-350, 14, "Invoice #: "+invoiceRef, 1, "L")
	p.pdf.Ln(10)

	lines, total := InvoiceLines(d)
	continued := func() {
		p.pdf.AddPage()
		p.pdf.SetY(margin)
		p.font("I", 9)
		p.cell(contentW, 14, fmt.Sprintf("PROFORMA INVOICE %s (continued)", number), 1, "L")
		p.pdf.Ln(4)
	}

	p.tableHeader()
	for _, l := range lines {
		cells, serviceLines := p.rowCells(l)
		h := float64(len(serviceLines))*rowLineH + rowPadding
		if !p.fits(h) {
			continued()
			p.tableHeader()
		}
		p.row(cells, serviceLines, h)
	}

	if !p.fits(totalBlockH) {
		continued()
	}
	p.totalRow(total)

	if strings.TrimSpace(d.Notes) != "" {
		p.pdf.Ln(10)
		if !p.fits(28) {
			continued()
		}
		p.font("B", 10)
		p.cell(contentW, 14, "NOTES:", 1, "L")
		p.font("", 10)
		p.paragraph(d.Notes, 13, func() { continued(); p.font("", 10) })
	}

	p.pdf.Ln(16)
	if !p.fits(60) {
		continued()
	}
	p.depositBlock(d, total)
	return p
}

func (p *page) tableHeader() {
	p.font("B", 9)
	p.pdf.SetFillColor(235, 235, 235)
	for _, c := range invoiceColumns {
		p.pdf.CellFormat(c.width, headerRowH, p.tr(c.title), "B", 0, c.align, true, 0, "")
	}
	p.pdf.Ln(headerRowH)
	p.font("", 9)
}

// rowCells returns the translated cell texts of l and its service column
// split into lines that fit the column.
func (p *page) rowCells(l Line) ([len(invoiceColumns)]string, []string) {
	p.font("", 9)
	cost := Money(l.CostPP)
	if l.Summary {
		cost = Placeholder
	}
	cells := [len(invoiceColumns)]string{
		p.tr(PrettyDate(l.Date)),
		"",
		p.tr(paxLabel(l.Pax)),
		p.tr(cost),
		p.tr(Money(l.Amount)),
	}
	service := strings.TrimSpace(l.Service)
	if service == "" {
		service = Placeholder
	}
	serviceLines := p.pdf.SplitText(p.tr(service), invoiceColumns[serviceIndex].width-6)
	if len(serviceLines) == 0 {
		serviceLines = []string{""}
	}
	return cells, serviceLines
}

func (p *page) row(cells [len(invoiceColumns)]string, serviceLines []string, h float64) {
	y := p.pdf.GetY()
	x := margin
	p.font("", 9)
	for i, c := range invoiceColumns {
		if i == serviceIndex {
			for j, line := range serviceLines {
				p.pdf.SetXY(x, y+rowPadding/2+float64(j)*rowLineH)
				p.pdf.CellFormat(c.width, rowLineH, line, "", 0, c.align, false, 0, "")
			}
		} else {
			p.pdf.SetXY(x, y+rowPadding/2)
			p.pdf.CellFormat(c.width, rowLineH, cells[i], "", 0, c.align, false, 0, "")
		}
		x += c.width
	}
	p.pdf.SetDrawColor(225, 225, 225)
	p.pdf.Line(margin, y+h, margin+tableWidth(), y+h)
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.SetXY(margin, y+h)
}

func (p *page) totalRow(total decimal.Decimal) {
	y := p.pdf.GetY() + 5
	amountX := margin + tableWidth() - invoiceColumns[len(invoiceColumns)-1].width
	labelX := amountX - invoiceColumns[len(invoiceColumns)-2].width
	p.pdf.Line(labelX, y, margin+tableWidth(), y)
	p.font("B", 12)
	p.pdf.SetXY(labelX, y+6)
	p.cell(invoiceColumns[len(invoiceColumns)-2].width, 16, "Total", 0, "R")
	p.cell(invoiceColumns[len(invoiceColumns)-1].width, 16, Money(total), 1, "R")
}

// depositBlock prints the payment position of the booking.
func (p *page) depositBlock(d *model.BookingDetail, total decimal.Decimal) {
	p.pdf.SetX(margin)
	p.font("B", 10)
	p.cell(contentW, 14, "Deposit Payment", 1, "L")
	p.font("", 10)
	if d.Payment != nil {
		line := fmt.Sprintf("Received %s by %s", Money(d.Payment.Amount), d.Payment.Method)
		if d.Receipt != nil {
			line += ", receipt " + d.Receipt.ReceiptNumber
		}
		p.cell(contentW, 13, line, 1, "L")
		return
	}
	p.cell(contentW, 13, "Amount due: "+Money(total), 1, "L")
	if d.LastPaymentDate != nil {
		p.cell(contentW, 13, "Payable on or before "+PrettyDate(d.LastPaymentDate), 1, "L")
	}
}

func tableWidth() float64 {
	var w float64
	for _, c := range invoiceColumns {
		w += c.width
	}
	return w
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
