package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/document"
	"github.com/iliyamo/safari-backoffice/internal/model"
	"github.com/iliyamo/safari-backoffice/internal/repository"
	"github.com/iliyamo/safari-backoffice/internal/utils"
)

// Renderer turns a loaded booking into a PDF.
type Renderer interface {
	Render(kind document.Kind, d *model.BookingDetail) ([]byte, error)
}

// Document is a rendered PDF ready to be sent as an attachment.
type Document struct {
	Filename string
	Body     []byte
}

// DocumentService renders invoices and hotel vouchers for an operator's
// bookings.
type DocumentService struct {
	bookings *repository.BookingRepo
	vouchers *repository.VoucherRepo
	render   Renderer
	numbers  NumberGenerator
	now      func() time.Time
}

func NewDocumentService(bookings *repository.BookingRepo, vouchers *repository.VoucherRepo, render Renderer, numbers NumberGenerator) *DocumentService {
	return &DocumentService{bookings: bookings, vouchers: vouchers, render: render, numbers: numbers, now: time.Now}
}

// Invoice renders the proforma invoice of booking id.
func (s *DocumentService) Invoice(ctx context.Context, actor, id uint64) (*Document, error) {
	d, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.output(document.KindInvoice, d)
}

// Voucher renders the hotel voucher of booking id, issuing its voucher
// number on the first download.
func (s *DocumentService) Voucher(ctx context.Context, actor, id uint64) (*Document, error) {
	d, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.Voucher == nil {
		v, err := s.issueVoucher(ctx, d.ID)
		if err != nil {
			return nil, wrap("issue voucher", err)
		}
		d.Voucher = v
	}
	return s.output(document.KindVoucher, d)
}

func (s *DocumentService) load(ctx context.Context, actor, id uint64) (*model.BookingDetail, error) {
	d, err := s.bookings.GetDetailByIDAndOwner(ctx, id, actor)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, apperror.NotFound("Booking")
	}
	if err != nil {
		return nil, wrap("load booking", err)
	}
	return d, nil
}

// issueVoucher stores a new voucher for bookingID.  When a concurrent
// download won the race its voucher is returned instead.
func (s *DocumentService) issueVoucher(ctx context.Context, bookingID uint64) (*model.Voucher, error) {
	v := model.Voucher{BookingID: bookingID, CreatedAt: utcNow(s.now)}
	err := issueNumber(s.numbers, utils.PrefixVoucher, func(n string) error {
		v.VoucherNumber = n
		return s.vouchers.Create(ctx, &v)
	})
	if errors.Is(err, repository.ErrVoucherExists) {
		return s.vouchers.GetByBooking(ctx, bookingID)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *DocumentService) output(kind document.Kind, d *model.BookingDetail) (*Document, error) {
	body, err := s.render.Render(kind, d)
	if err != nil {
		return nil, apperror.Internal("render "+string(kind), err)
	}
	return &Document{Filename: document.Filename(kind, d), Body: body}, nil
}
