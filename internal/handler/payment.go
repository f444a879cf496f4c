package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/safari-backoffice/internal/service"
)

type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(p *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: p}
}

type createPaymentReq struct {
	BookingID     flexID           `json:"bookingId"`
	Amount        *decimal.Decimal `json:"amount"`
	Method        string           `json:"method"`
	TransactionID string           `json:"transactionId"`
}

// Create handles POST /payments.
func (h *PaymentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req createPaymentReq
	if err := bind(c, &req, "bookingId, amount and method are required"); err != nil {
		return err
	}
	res, err := h.Payments.Create(c.Request().Context(), uid, service.PaymentInput{
		BookingID:     uint64(req.BookingID),
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Payment recorded & receipt generated",
		"payment": res.Payment,
		"receipt": res.Receipt,
	})
}
