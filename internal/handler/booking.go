package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/safari-backoffice/internal/service"
)

type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(b *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
	ClientID        flexID           `json:"clientId"`
	HotelID         flexID           `json:"hotelId"`
	CheckIn         optDate          `json:"checkIn"`
	CheckOut        optDate          `json:"checkOut"`
	Rooms           int              `json:"rooms"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	Items           []lineItemReq    `json:"items"`
	Ref             string           `json:"ref"`
	Notes           string           `json:"notes"`
	MealPlan        string           `json:"mealPlan"`
	SpecialRequests string           `json:"specialRequests"`
	LastPaymentDate optDate          `json:"lastPaymentDate"`
}

type lineItemReq struct {
	Date    optDate          `json:"date"`
	Service string           `json:"service"`
	Pax     int              `json:"pax"`
	CostPP  decimal.Decimal  `json:"costPP"`
	Amount  *decimal.Decimal `json:"amount"`
}

func (r createBookingReq) input() service.BookingInput {
	in := service.BookingInput{
		ClientID:        uint64(r.ClientID),
		HotelID:         uint64(r.HotelID),
		CheckIn:         r.CheckIn.Time,
		CheckOut:        r.CheckOut.Time,
		Rooms:           r.Rooms,
		TotalAmount:     r.TotalAmount,
		Ref:             r.Ref,
		Notes:           r.Notes,
		MealPlan:        r.MealPlan,
		SpecialRequests: r.SpecialRequests,
		LastPaymentDate: r.LastPaymentDate.Time,
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, service.LineItemInput{
			Date:       it.Date.Time,
			Service:    it.Service,
			Pax:        it.Pax,
			CostPerPax: it.CostPP,
			Amount:     it.Amount,
		})
	}
	return in
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req createBookingReq
	if err := bind(c, &req, "Invalid booking details"); err != nil {
		return err
	}
	res, err := h.Bookings.Create(c.Request().Context(), uid, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Booking created & invoice generated",
		"booking": res.Booking,
		"invoice": res.Invoice,
	})
}

// List handles GET /bookings.
func (h *BookingHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	out, err := h.Bookings.List(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "Booking")
	if err != nil {
		return err
	}
	d, err := h.Bookings.Get(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}
