package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/document"
	"github.com/iliyamo/safari-backoffice/internal/model"
	"github.com/iliyamo/safari-backoffice/internal/queue"
	"github.com/iliyamo/safari-backoffice/internal/repository"
	"github.com/iliyamo/safari-backoffice/internal/utils"
	"github.com/iliyamo/safari-backoffice/internal/validation"
)

const (
	msgBookingFieldsRequired = "All booking fields are required"
	msgInvalidBooking        = "Invalid booking details"
)

// BookingInput is a request to create a booking.  Either Items or both
// Rooms and TotalAmount must be given.  With items, Rooms defaults to 1,
// an item without an amount costs pax x costPP x max(nights, 1) and a
// missing TotalAmount is the sum of the item amounts.
type BookingInput struct {
	ClientID        uint64           `json:"clientId" validate:"required"`
	HotelID         uint64           `json:"hotelId" validate:"required"`
	CheckIn         *time.Time       `json:"checkIn" validate:"required"`
	CheckOut        *time.Time       `json:"checkOut" validate:"required"`
	Rooms           int              `json:"rooms" validate:"gte=0"`
	TotalAmount     *decimal.Decimal `json:"totalAmount" validate:"omitempty,gte=0"`
	Items           []LineItemInput  `json:"items" validate:"max=500,dive"`
	Ref             string           `json:"ref" validate:"max=64"`
	Notes           string           `json:"notes" validate:"max=5000"`
	MealPlan        string           `json:"mealPlan" validate:"max=255"`
	SpecialRequests string           `json:"specialRequests" validate:"max=5000"`
	LastPaymentDate *time.Time       `json:"lastPaymentDate"`
}

// LineItemInput is one billable row of a new booking.
type LineItemInput struct {
	Date       *time.Time       `json:"date"`
	Service    string           `json:"service" validate:"max=255"`
	Pax        int              `json:"pax" validate:"gte=0"`
	CostPerPax decimal.Decimal  `json:"costPP" validate:"gte=0"`
	Amount     *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
}

// BookingResult is the outcome of a successful booking creation.
type BookingResult struct {
	Booking model.Booking `json:"booking"`
	Invoice model.Invoice `json:"invoice"`
}

type BookingService struct {
	db       *sql.DB
	bookings *repository.BookingRepo
	clients  *repository.ClientRepo
	hotels   *repository.HotelRepo
	invoices *repository.InvoiceRepo
	numbers  NumberGenerator
	events   EventPublisher
	validate *validation.Validator
	now      func() time.Time
	log      *zap.Logger
}

func NewBookingService(db *sql.DB, numbers NumberGenerator, events EventPublisher, v *validation.Validator, log *zap.Logger) *BookingService {
	return &BookingService{
		db:       db,
		bookings: repository.NewBookingRepo(db),
		clients:  repository.NewClientRepo(db),
		hotels:   repository.NewHotelRepo(db),
		invoices: repository.NewInvoiceRepo(),
		numbers:  numbers,
		events:   events,
		validate: v,
		now:      time.Now,
		log:      log.Named("booking"),
	}
}

// Create validates in, checks that the client and hotel belong to actor
// and stores the booking, its line items and its invoice in one
// transaction.  Nothing is stored when any step fails.
func (s *BookingService) Create(ctx context.Context, actor uint64, in BookingInput) (*BookingResult, error) {
	booking, err := s.prepare(actor, in)
	if err != nil {
		return nil, err
	}

	var (
		invoice model.Invoice
		client  *model.Client
		hotel   *model.Hotel
	)
	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		client, err = s.clients.GetByIDAndOwnerTx(ctx, tx, in.ClientID, actor)
		if errors.Is(err, repository.ErrClientNotFound) {
			return apperror.MissingReference("Client")
		}
		if err != nil {
			return err
		}
		hotel, err = s.hotels.GetByIDAndOwnerTx(ctx, tx, in.HotelID, actor)
		if errors.Is(err, repository.ErrHotelNotFound) {
			return apperror.MissingReference("Hotel")
		}
		if err != nil {
			return err
		}

		if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
			return err
		}
		if err := s.bookings.CreateItemsTx(ctx, tx, booking.ID, booking.Items); err != nil {
			return err
		}

		invoice = model.Invoice{BookingID: booking.ID, CreatedAt: booking.CreatedAt}
		return issueNumber(s.numbers, utils.PrefixInvoice, func(n string) error {
			invoice.InvoiceNumber = n
			return s.invoices.CreateTx(ctx, tx, &invoice)
		})
	})
	if err != nil {
		return nil, wrap("create booking", err)
	}

	ev := queue.BookingCreatedEvent{
		BookingID:     booking.ID,
		OwnerID:       actor,
		ClientID:      client.ID,
		ClientName:    client.Name,
		HotelID:       hotel.ID,
		HotelName:     hotel.Name,
		CheckIn:       booking.CheckIn.Format(time.DateOnly),
		CheckOut:      booking.CheckOut.Format(time.DateOnly),
		TotalAmount:   booking.TotalAmount.StringFixed(2),
		InvoiceNumber: invoice.InvoiceNumber,
		CreatedAt:     booking.CreatedAt.Format(time.RFC3339),
	}
	if err := s.events.PublishBookingCreated(ctx, ev); err != nil {
		s.log.Warn("booking.created not published", zap.Uint64("booking_id", booking.ID), zap.Error(err))
	}

	return &BookingResult{Booking: *booking, Invoice: invoice}, nil
}

// prepare validates in and builds the booking row with its derived
// values filled in.
func (s *BookingService) prepare(actor uint64, in BookingInput) (*model.Booking, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err, in)
	}
	hasItems := len(in.Items) > 0
	if !hasItems && (in.Rooms <= 0 || in.TotalAmount == nil) {
		return nil, apperror.Validation(msgBookingFieldsRequired)
	}

	checkIn, checkOut := in.CheckIn.UTC(), in.CheckOut.UTC()
	nights := document.Nights(checkIn, checkOut)
	if nights < 1 {
		nights = 1
	}

	items := make([]model.LineItem, 0, len(in.Items))
	sum := decimal.Zero
	for _, it := range in.Items {
		amount := it.CostPerPax.Mul(decimal.NewFromInt(int64(it.Pax))).Mul(decimal.NewFromInt(int64(nights)))
		if it.Amount != nil {
			amount = *it.Amount
		}
		amount = amount.Round(2)
		sum = sum.Add(amount)
		items = append(items, model.LineItem{
			Date:       utcPtr(it.Date),
			Service:    it.Service,
			Pax:        it.Pax,
			CostPerPax: it.CostPerPax.Round(2),
			Amount:     amount,
		})
	}

	rooms := in.Rooms
	if rooms <= 0 {
		rooms = 1
	}
	total := sum
	if in.TotalAmount != nil {
		total = in.TotalAmount.Round(2)
	}

	now := utcNow(s.now)
	return &model.Booking{
		OwnerID:         actor,
		ClientID:        in.ClientID,
		HotelID:         in.HotelID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Rooms:           rooms,
		TotalAmount:     total,
		Status:          model.BookingPending,
		Ref:             in.Ref,
		Notes:           in.Notes,
		MealPlan:        in.MealPlan,
		SpecialRequests: in.SpecialRequests,
		LastPaymentDate: utcPtr(in.LastPaymentDate),
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
	}, nil
}

// List returns every booking of actor, newest first, fully loaded.
func (s *BookingService) List(ctx context.Context, actor uint64) ([]model.BookingDetail, error) {
	out, err := s.bookings.ListDetailsByOwner(ctx, actor)
	if err != nil {
		return nil, wrap("list bookings", err)
	}
	return out, nil
}

// Get returns one booking of actor, fully loaded.
func (s *BookingService) Get(ctx context.Context, actor, id uint64) (*model.BookingDetail, error) {
	d, err := s.bookings.GetDetailByIDAndOwner(ctx, id, actor)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, apperror.NotFound("Booking")
	}
	if err != nil {
		return nil, wrap("get booking", err)
	}
	return d, nil
}

// validationError maps validator failures: a missing required field gets
// the generic message, anything else the field-level details.
func validationError(err error, in BookingInput) error {
	var ferrs validation.FieldErrors
	if !errors.As(err, &ferrs) {
		return apperror.Internal("validate booking", err)
	}
	if in.ClientID == 0 || in.HotelID == 0 || in.CheckIn == nil || in.CheckOut == nil {
		return apperror.Validation(msgBookingFieldsRequired).WithDetails(ferrs.Details())
	}
	return apperror.Validation(msgInvalidBooking).WithDetails(ferrs.Details())
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
