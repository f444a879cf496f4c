package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/model"
	"github.com/iliyamo/safari-backoffice/internal/queue"
	"github.com/iliyamo/safari-backoffice/internal/repository"
	"github.com/iliyamo/safari-backoffice/internal/utils"
	"github.com/iliyamo/safari-backoffice/internal/validation"
)

const (
	msgPaymentFieldsRequired = "bookingId, amount and method are required"
	msgInvalidPaymentMethod  = "Invalid payment method"
	msgPaymentRecorded       = "Payment already recorded"
)

// PaymentInput is a request to settle a booking.
type PaymentInput struct {
	BookingID     uint64           `json:"bookingId" validate:"required"`
	Amount        *decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method        string           `json:"method" validate:"required,payment_method"`
	TransactionID string           `json:"transactionId" validate:"max=128"`
}

// PaymentResult is the outcome of a successful payment.
type PaymentResult struct {
	Payment model.Payment `json:"payment"`
	Receipt model.Receipt `json:"receipt"`
}

type PaymentService struct {
	db       *sql.DB
	bookings *repository.BookingRepo
	payments *repository.PaymentRepo
	receipts *repository.ReceiptRepo
	numbers  NumberGenerator
	events   EventPublisher
	validate *validation.Validator
	now      func() time.Time
	log      *zap.Logger
}

func NewPaymentService(db *sql.DB, numbers NumberGenerator, events EventPublisher, v *validation.Validator, log *zap.Logger) *PaymentService {
	return &PaymentService{
		db:       db,
		bookings: repository.NewBookingRepo(db),
		payments: repository.NewPaymentRepo(),
		receipts: repository.NewReceiptRepo(),
		numbers:  numbers,
		events:   events,
		validate: v,
		now:      time.Now,
		log:      log.Named("payment"),
	}
}

// Create records the payment of one of actor's bookings.  The payment, the
// booking's move to PAID and the receipt are committed together.  A
// booking accepts at most one payment: the in-transaction check gives the
// friendly error, the UNIQUE index on payments.booking_id settles races.
func (s *PaymentService) Create(ctx context.Context, actor uint64, in PaymentInput) (*PaymentResult, error) {
	if err := s.validate.Struct(in); err != nil {
		var ferrs validation.FieldErrors
		if errors.As(err, &ferrs) {
			if ferrs.OnlyTag("payment_method") {
				return nil, apperror.Validation(msgInvalidPaymentMethod)
			}
			return nil, apperror.Validation(msgPaymentFieldsRequired).WithDetails(ferrs.Details())
		}
		return nil, apperror.Internal("validate payment", err)
	}
	method, ok := model.ParsePaymentMethod(in.Method)
	if !ok {
		return nil, apperror.Validation(msgInvalidPaymentMethod)
	}

	now := utcNow(s.now)
	payment := model.Payment{
		BookingID:     in.BookingID,
		Amount:        in.Amount.Round(2),
		Method:        method,
		TransactionID: strings.TrimSpace(in.TransactionID),
		CreatedAt:     now,
	}
	receipt := model.Receipt{BookingID: in.BookingID, CreatedAt: now}

	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		booking, err := s.bookings.GetByIDAndOwnerTx(ctx, tx, in.BookingID, actor)
		if errors.Is(err, repository.ErrBookingNotFound) {
			return apperror.MissingReference("Booking")
		}
		if err != nil {
			return err
		}

		exists, err := s.payments.ExistsForBookingTx(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict(msgPaymentRecorded)
		}
		if !booking.Status.CanTransitionTo(model.BookingPaid) {
			return apperror.Conflict("Booking is " + string(booking.Status) + " and cannot be paid")
		}

		if err := s.payments.CreateTx(ctx, tx, &payment); err != nil {
			if errors.Is(err, repository.ErrPaymentExists) {
				return apperror.Conflict(msgPaymentRecorded)
			}
			return err
		}
		if err := s.bookings.UpdateStatusTx(ctx, tx, booking.ID, model.BookingPaid, now); err != nil {
			return err
		}
		return issueNumber(s.numbers, utils.PrefixReceipt, func(n string) error {
			receipt.ReceiptNumber = n
			return s.receipts.CreateTx(ctx, tx, &receipt)
		})
	})
	if err != nil {
		return nil, wrap("create payment", err)
	}

	ev := queue.PaymentRecordedEvent{
		PaymentID:     payment.ID,
		BookingID:     payment.BookingID,
		OwnerID:       actor,
		Amount:        payment.Amount.StringFixed(2),
		Method:        string(payment.Method),
		TransactionID: payment.TransactionID,
		ReceiptNumber: receipt.ReceiptNumber,
		RecordedAt:    now.Format(time.RFC3339),
	}
	if err := s.events.PublishPaymentRecorded(ctx, ev); err != nil {
		s.log.Warn("payment.recorded not published", zap.Uint64("booking_id", payment.BookingID), zap.Error(err))
	}

	return &PaymentResult{Payment: payment, Receipt: receipt}, nil
}
