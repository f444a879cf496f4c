package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/config"
	"github.com/iliyamo/safari-backoffice/internal/model"
	"github.com/iliyamo/safari-backoffice/internal/repository"
	"github.com/iliyamo/safari-backoffice/internal/utils"
)

// AuthHandler bundles dependencies for operator auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// authResp also carries the access token as a top-level "token" for the
// web client, which stores it as is.
type authResp struct {
	Token   string    `json:"token"`
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates an operator account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req, "invalid body"); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperror.Validation("name, email and password are required")
	}
	if len(req.Password) < utils.MinPasswordLength {
		return apperror.Validation("password too short")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Name, req.Password, model.RoleOperator, h.Cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists", "code": apperror.CodeConflict})
	}
	if err != nil {
		return apperror.Internal("create user", err)
	}

	u := &model.User{ID: uid, Email: req.Email, Name: req.Name, Role: model.RoleOperator}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req, "invalid body"); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apperror.Validation("email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperror.Unauthorized("invalid credentials")
	}
	if err != nil {
		return apperror.Internal("load user", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperror.Unauthorized("invalid credentials")
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new pair.  The old token is
// revoked in the same transaction, so it can be used only once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	hash, err := refreshHash(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.refreshOwner(ctx, hash)
	if err != nil {
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return apperror.Internal("issue access token", err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return apperror.Internal("issue refresh token", err)
	}
	err = h.Tokens.Rotate(ctx, u.ID, hash, utils.HashRefreshRaw(refresh.Raw), refresh.Exp)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return apperror.Unauthorized("invalid refresh")
	}
	if err != nil {
		return apperror.Internal("rotate refresh token", err)
	}

	return c.JSON(http.StatusOK, authResp{
		Token:   access.Token,
		User:    userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	hash, err := refreshHash(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.refreshOwner(ctx, hash)
	if err != nil {
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return apperror.Internal("issue access token", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":  access.Token,
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes one session when a refresh token is posted, or every
// session of the caller when only a bearer token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return apperror.Unauthorized("invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return apperror.Internal("revoke refresh token", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if raw, ok := strings.CutPrefix(auth, "Bearer "); ok {
		claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
		if err != nil {
			return apperror.Unauthorized("unauthorized")
		}
		if err := h.Tokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
			return apperror.Internal("revoke refresh tokens", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return apperror.Validation("provide Authorization header or refresh_token")
}

// Me returns the authenticated operator.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperror.Unauthorized("unauthorized")
	}
	if err != nil {
		return apperror.Internal("load user", err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
}

func (h *AuthHandler) issue(ctx context.Context, u *model.User) (*authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, apperror.Internal("issue access token", err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, apperror.Internal("issue refresh token", err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, apperror.Internal("store refresh token", err)
	}
	return &authResp{
		Token:   access.Token,
		User:    userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// refreshOwner returns the active user owning the refresh token hash.
func (h *AuthHandler) refreshOwner(ctx context.Context, hash string) (*model.User, error) {
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return nil, apperror.Unauthorized("invalid refresh")
	}
	if err != nil {
		return nil, apperror.Internal("validate refresh token", err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.Unauthorized("invalid refresh")
	}
	if err != nil {
		return nil, apperror.Internal("load user", err)
	}
	if !u.IsActive {
		return nil, apperror.Unauthorized("invalid refresh")
	}
	return u, nil
}

func refreshHash(c echo.Context) (string, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return "", apperror.Validation("refresh_token required")
	}
	return utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)), nil
}
