package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/safari-backoffice/internal/service"
)

// DirectoryHandler serves an operator's clients and hotels.
type DirectoryHandler struct {
	Directory *service.DirectoryService
}

func NewDirectoryHandler(d *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{Directory: d}
}

// CreateClient handles POST /clients.
func (h *DirectoryHandler) CreateClient(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req service.ClientInput
	if err := bind(c, &req, "Invalid client details"); err != nil {
		return err
	}
	client, err := h.Directory.CreateClient(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Client created successfully", "client": client})
}

// ListClients handles GET /clients.
func (h *DirectoryHandler) ListClients(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	out, err := h.Directory.ListClients(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// CreateHotel handles POST /hotels.
func (h *DirectoryHandler) CreateHotel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req service.HotelInput
	if err := bind(c, &req, "Invalid hotel details"); err != nil {
		return err
	}
	hotel, err := h.Directory.CreateHotel(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Hotel created successfully", "hotel": hotel})
}

// ListHotels handles GET /hotels.
func (h *DirectoryHandler) ListHotels(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	out, err := h.Directory.ListHotels(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
