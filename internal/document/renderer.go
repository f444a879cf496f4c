// Package document renders booking invoices and hotel vouchers as PDF.
// Rendering is a pure function of the booking, the issuer letterhead and
// the clock: it touches no shared state and is safe to run concurrently.
package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// A4 portrait in points.
const (
	pageWidth   = 595.28
	pageHeight  = 841.89
	margin      = 50.0
	contentW    = pageWidth - 2*margin
	bottomLimit = pageHeight - margin
	fontFamily  = "Helvetica"
	logoHeight  = 48.0
)

// Kind names a document variant.  It doubles as the filename prefix.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindVoucher Kind = "voucher"
)

// Issuer is the letterhead printed at the top of every document.
type Issuer struct {
	Name     string
	Address  []string
	LogoPath string
}

type Renderer struct {
	issuer   Issuer
	now      func() time.Time
	log      *zap.Logger
	compress bool
}

func NewRenderer(issuer Issuer, log *zap.Logger) *Renderer {
	return &Renderer{issuer: issuer, now: time.Now, log: log.Named("document"), compress: true}
}

// WithClock returns a copy of r that reads the issue time from now.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	c := *r
	c.now = now
	return &c
}

// Render dispatches to the invoice or voucher renderer.
func (r *Renderer) Render(kind Kind, d *model.BookingDetail) ([]byte, error) {
	switch kind {
	case KindInvoice:
		return r.Invoice(d)
	case KindVoucher:
		return r.Voucher(d)
	}
	return nil, fmt.Errorf("unknown document kind %q", kind)
}

// Filename returns the attachment name of a document: the invoice number
// when the booking has one, the booking ID otherwise.
func Filename(kind Kind, d *model.BookingDetail) string {
	return fmt.Sprintf("%s-%s.pdf", kind, invoiceNumberOr(d, strconv.FormatUint(d.ID, 10)))
}

// BadgeColor returns the fill colour of the status badge.
func BadgeColor(s model.BookingStatus) (r, g, b int) {
	switch s {
	case model.BookingPending:
		return 245, 158, 11 // amber
	case model.BookingPaid:
		return 22, 163, 74 // green
	case model.BookingCancelled:
		return 220, 38, 38 // red
	}
	return 107, 114, 128
}

// page wraps the drawing primitive with the cp1252 translator the core
// fonts need.
type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *Renderer) newPage(title string, now time.Time) *page {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle(title, true)
	pdf.SetCreator(r.issuer.Name, true)
	pdf.AliasNbPages("")

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-35)
		p.font("I", 8)
		pdf.SetTextColor(120, 120, 120)
		p.cell(contentW, 10, fmt.Sprintf("%s | Page %d of {nb}", r.issuer.Name, pdf.PageNo()), 0, "C")
		pdf.SetTextColor(0, 0, 0)
	})
	return p
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont(fontFamily, style, size)
}

func (p *page) cell(w, h float64, s string, ln int, align string) {
	p.pdf.CellFormat(w, h, p.tr(s), "", ln, align, false, 0, "")
}

// fits reports whether h more points fit on the current page.
func (p *page) fits(h float64) bool {
	return p.pdf.GetY()+h <= bottomLimit
}

func (p *page) rule() {
	y := p.pdf.GetY() + 4
	p.pdf.SetDrawColor(200, 200, 200)
	p.pdf.Line(margin, y, pageWidth-margin, y)
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.SetY(y + 8)
}

// header draws the issuer letterhead.  A logo that cannot be loaded is
// skipped and logged.
func (r *Renderer) header(p *page) {
	top := margin
	logo := false
	if r.issuer.LogoPath != "" {
		p.pdf.ImageOptions(r.issuer.LogoPath, margin, top, 0, logoHeight, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
		if p.pdf.Err() {
			r.log.Warn("logo skipped", zap.String("path", r.issuer.LogoPath), zap.Error(p.pdf.Error()))
			p.pdf.ClearError()
		} else {
			logo = true
		}
	}

	p.pdf.SetXY(margin, top)
	p.font("B", 14)
	p.cell(contentW, 18, r.issuer.Name, 1, "C")
	p.font("", 10)
	for _, line := range r.issuer.Address {
		p.cell(contentW, 13, line, 1, "C")
	}
	if logo && p.pdf.GetY() < top+logoHeight {
		p.pdf.SetY(top + logoHeight)
	}
	p.rule()
}

// badge draws the booking status as a filled label at (x, y).
func (p *page) badge(status model.BookingStatus, x, y float64) {
	r, g, b := BadgeColor(status)
	p.pdf.SetFillColor(r, g, b)
	p.pdf.SetTextColor(255, 255, 255)
	p.font("B", 9)
	p.pdf.SetXY(x, y)
	p.pdf.CellFormat(80, 16, p.tr(string(status)), "", 0, "C", true, 0, "")
	p.pdf.SetTextColor(0, 0, 0)
}

// field prints "LABEL value" on one line.
func (p *page) field(label, value string, labelW float64) {
	p.font("B", 10)
	p.cell(labelW, 14, label, 0, "L")
	p.font("", 10)
	p.cell(contentW-labelW, 14, value, 1, "L")
}

// paragraph prints text wrapped to the content width, continuing on a new
// page when the current one is full.  newPage is called after each page
// break.
func (p *page) paragraph(text string, lineH float64, newPage func()) {
	for _, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		lines := p.pdf.SplitText(p.tr(raw), contentW)
		if len(lines) == 0 {
			lines = []string{""}
		}
		for _, line := range lines {
			if !p.fits(lineH) {
				newPage()
			}
			p.pdf.CellFormat(contentW, lineH, line, "", 1, "L", false, 0, "")
		}
	}
}

func output(p *page) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
