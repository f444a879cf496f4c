package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/safari-backoffice/internal/service"
)

type DocumentHandler struct {
	Documents *service.DocumentService
}

func NewDocumentHandler(d *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Documents: d}
}

// Invoice handles GET /bookings/invoice/:id.
func (h *DocumentHandler) Invoice(c echo.Context) error {
	return h.send(c, h.Documents.Invoice)
}

// Voucher handles GET /bookings/voucher/:id.
func (h *DocumentHandler) Voucher(c echo.Context) error {
	return h.send(c, h.Documents.Voucher)
}

// send renders the document before anything is written, so a failure
// never leaves a partial PDF on the wire.
func (h *DocumentHandler) send(c echo.Context, render func(ctx context.Context, actor, id uint64) (*service.Document, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "Booking")
	if err != nil {
		return err
	}
	doc, err := render(c.Request().Context(), uid, id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Blob(http.StatusOK, "application/pdf", doc.Body)
}
