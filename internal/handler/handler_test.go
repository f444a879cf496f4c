package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/config"
	"github.com/iliyamo/safari-backoffice/internal/document"
	"github.com/iliyamo/safari-backoffice/internal/model"
	"github.com/iliyamo/safari-backoffice/internal/queue"
	"github.com/iliyamo/safari-backoffice/internal/repository"
	"github.com/iliyamo/safari-backoffice/internal/service"
	"github.com/iliyamo/safari-backoffice/internal/utils"
	"github.com/iliyamo/safari-backoffice/internal/validation"
)

const operator = uint64(7)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func newEcho(log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(log)
	return e
}

// asOperator stands in for the JWT middleware.
func asOperator(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", id)
			c.Set("role", model.RoleOperator)
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestFlexIDAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A flexID `json:"a"`
		B flexID `json:"b"`
		C flexID `json:"c"`
		D flexID `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12, "b": "34", "c": "", "d": null}`), &v))
	assert.Equal(t, flexID(12), v.A)
	assert.Equal(t, flexID(34), v.B)
	assert.Zero(t, v.C)
	assert.Zero(t, v.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "abc"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a": -1}`), &v))
}

func TestOptDateLayouts(t *testing.T) {
	var v struct {
		A optDate `json:"a"`
		B optDate `json:"b"`
		C optDate `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "2026-02-17", "b": "2026-02-17T10:00:00+03:00", "c": ""}`), &v))
	require.NotNil(t, v.A.Time)
	assert.Equal(t, time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC), *v.A.Time)
	require.NotNil(t, v.B.Time)
	assert.Equal(t, time.Date(2026, 2, 17, 7, 0, 0, 0, time.UTC), *v.B.Time)
	assert.Nil(t, v.C.Time)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "17/02/2026"}`), &v))
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := getUserID(c)
	assert.Error(t, err)

	c.Set("user_id", "42")
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", uint64(9))
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	e := newEcho(zap.New(core))
	e.GET("/boom", func(c echo.Context) error {
		return apperror.Internal("load booking", errors.New("connection refused"))
	})
	e.GET("/bad", func(c echo.Context) error {
		return apperror.Validation("Invalid booking details").WithDetails(map[string]any{"rooms": "rooms must be at least 0"})
	})

	rec := do(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "connection refused")

	rec = do(e, http.MethodGet, "/bad", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "Invalid booking details", body["error"])
	assert.Equal(t, apperror.CodeValidation, body["code"])
	assert.NotNil(t, body["details"])
	assert.Equal(t, 1, logs.Len())

	rec = do(e, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubRenderer struct{ calls int }

func (s *stubRenderer) Render(kind document.Kind, d *model.BookingDetail) ([]byte, error) {
	s.calls++
	return []byte("%PDF-1.3 stub"), nil
}

func detailRows(id uint64) *sqlmock.Rows {
	cols := make([]string, 47)
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
	}
	now := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	in := time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(cols).AddRow(
		id, operator, 1, 2, in, in.AddDate(0, 0, 3), 1, "600.00", "PENDING",
		nil, nil, nil, nil, nil, now, now,
		1, operator, "Jane Doe", nil, nil, nil, nil, now,
		2, operator, "Savanna Lodge", nil, nil, nil, nil, nil, now,
		30, "INV-1-1", now,
		nil, nil, nil, nil, nil,
		nil, nil, nil,
		nil, nil, nil,
	)
}

func documentEcho(t *testing.T, r service.Renderer) (*echo.Echo, sqlmock.Sqlmock) {
	db, mock := newMock(t)
	docs := service.NewDocumentService(repository.NewBookingRepo(db), repository.NewVoucherRepo(db), r, utils.NewRefGenerator())
	h := NewDocumentHandler(docs)
	e := newEcho(zap.NewNop())
	g := e.Group("/api", asOperator(operator))
	g.GET("/bookings/invoice/:id", h.Invoice)
	g.GET("/bookings/voucher/:id", h.Voucher)
	return e, mock
}

func TestInvoiceDownload(t *testing.T) {
	r := &stubRenderer{}
	e, mock := documentEcho(t, r)
	mock.ExpectQuery("FROM bookings b").WithArgs(uint64(9), operator).WillReturnRows(detailRows(9))
	mock.ExpectQuery("FROM booking_items").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := do(e, http.MethodGet, "/api/bookings/invoice/9", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="invoice-INV-1-1.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestInvoiceForMissingBookingIsJSON404(t *testing.T) {
	r := &stubRenderer{}
	e, mock := documentEcho(t, r)
	mock.ExpectQuery("FROM bookings b").WithArgs(uint64(9), operator).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := do(e, http.MethodGet, "/api/bookings/invoice/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "Booking not found", decode(t, rec)["error"])
	assert.Zero(t, r.calls)
}

func TestVoucherBadIDIsNotFound(t *testing.T) {
	r := &stubRenderer{}
	e, _ := documentEcho(t, r)

	rec := do(e, http.MethodGet, "/api/bookings/voucher/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, r.calls)
}

func bookingEcho(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	db, mock := newMock(t)
	svc := service.NewBookingService(db, utils.NewRefGenerator(), queue.NopPublisher{}, validation.New(), zap.NewNop())
	h := NewBookingHandler(svc)
	e := newEcho(zap.NewNop())
	g := e.Group("/api", asOperator(operator))
	g.POST("/bookings", h.Create)
	g.GET("/bookings/:id", h.Get)
	return e, mock
}

func TestCreateBookingFromWebForm(t *testing.T) {
	e, mock := bookingEcho(t)
	now := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM clients").WithArgs(uint64(1), operator).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "company", "email", "phone", "country", "created_at"}).
			AddRow(1, operator, "Jane Doe", nil, nil, nil, nil, now))
	mock.ExpectQuery("FROM hotels").WithArgs(uint64(2), operator).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "location", "email", "phone", "mpesa_number", "bank_details", "created_at"}).
			AddRow(2, operator, "Savanna Lodge", nil, nil, nil, nil, nil, now))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO booking_items").WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectCommit()

	body := `{"clientId":"1","hotelId":"2","checkIn":"2026-02-17","checkOut":"2026-02-20",
		"items":[{"date":"2026-02-17","service":"Lodge","pax":2,"costPP":"100","amount":600}]}`
	rec := do(e, http.MethodPost, "/api/bookings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "Booking created & invoice generated", out["message"])
	booking := out["booking"].(map[string]any)
	assert.Equal(t, "PENDING", booking["status"])
	assert.Equal(t, "600", booking["totalAmount"])
	invoice := out["invoice"].(map[string]any)
	assert.Regexp(t, `^INV-\d+-\d+$`, invoice["invoiceNumber"])
}

func TestCreateBookingMissingFields(t *testing.T) {
	e, _ := bookingEcho(t)

	rec := do(e, http.MethodPost, "/api/bookings", `{"clientId":"1","checkIn":"2026-02-17"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All booking fields are required", decode(t, rec)["error"])

	rec = do(e, http.MethodPost, "/api/bookings", `{"clientId":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid booking details", decode(t, rec)["error"])
}

func TestCreatePaymentInvalidMethod(t *testing.T) {
	db, _ := newMock(t)
	svc := service.NewPaymentService(db, utils.NewRefGenerator(), queue.NopPublisher{}, validation.New(), zap.NewNop())
	h := NewPaymentHandler(svc)
	e := newEcho(zap.NewNop())
	e.POST("/api/payments", h.Create, asOperator(operator))

	rec := do(e, http.MethodPost, "/api/payments", `{"bookingId":"9","amount":600,"method":"CHEQUE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid payment method", decode(t, rec)["error"])

	rec = do(e, http.MethodPost, "/api/payments", `{"bookingId":"9","method":"CASH"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bookingId, amount and method are required", decode(t, rec)["error"])
}

func TestCreateClient(t *testing.T) {
	db, mock := newMock(t)
	svc := service.NewDirectoryService(repository.NewClientRepo(db), repository.NewHotelRepo(db), validation.New())
	h := NewDirectoryHandler(svc)
	e := newEcho(zap.NewNop())
	e.POST("/api/clients", h.CreateClient, asOperator(operator))

	mock.ExpectExec("INSERT INTO clients").WillReturnResult(sqlmock.NewResult(11, 1))

	rec := do(e, http.MethodPost, "/api/clients", `{"name":"Jane Doe","country":"Kenya"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "Client created successfully", out["message"])
	assert.Equal(t, float64(11), out["client"].(map[string]any)["id"])

	rec = do(e, http.MethodPost, "/api/clients", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Client name is required", decode(t, rec)["error"])
}

func authEcho(t *testing.T) (*echo.Echo, sqlmock.Sqlmock, config.Config) {
	db, mock := newMock(t)
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	e := newEcho(zap.NewNop())
	g := e.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	return e, mock, cfg
}

func TestRegisterIssuesOperatorTokens(t *testing.T) {
	e, mock, cfg := authEcho(t)
	mock.ExpectExec("INSERT INTO users").WithArgs("jane@example.com", "Jane", sqlmock.AnyArg(), model.RoleOperator).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	rec := do(e, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":" Jane@Example.com ","password":"safari-2026"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	out := decode(t, rec)
	token, _ := out["token"].(string)
	claims, err := utils.ParseAccessToken(cfg.JWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), claims.UserID)
	assert.Equal(t, model.RoleOperator, claims.Role)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	e, _, _ := authEcho(t)
	rec := do(e, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"jane@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	e, mock, _ := authEcho(t)
	hash, err := utils.HashPassword("safari-2026", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow(5, "jane@example.com", "Jane", hash, model.RoleOperator, true, now, now))

	rec := do(e, http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode(t, rec)["error"])
}

func TestRefreshRejectsReusedToken(t *testing.T) {
	e, mock, _ := authEcho(t)
	now := time.Now()
	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash=\\?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(5, now.Add(time.Hour), now))

	rec := do(e, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"abc"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	e := newEcho(zap.NewNop())
	e.GET("/healthz", Health(db))

	mock.ExpectPing()
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	rec = do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
