package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkravchenko/blog-backend/internal/apperror"
	"github.com/mkravchenko/blog-backend/internal/logging"
	"github.com/mkravchenko/blog-backend/internal/middleware"
	"github.com/mkravchenko/blog-backend/internal/models"
	"github.com/mkravchenko/blog-backend/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userProjection struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type authResponse struct {
	User        userProjection `json:"user"`
	AccessToken string         `json:"accessToken"`
}

type AuthHandler struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func NewAuthHandler(svc *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{Svc: svc, SecureCookie: secureCookie}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return apperror.Validation("invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		return err
	}

	c.SetCookie(refreshCookie(res.RefreshToken, res.RefreshExpiresAt, h.SecureCookie))

	return c.JSON(http.StatusOK, authResponse{
		User:        projectUser(res.User),
		AccessToken: res.AccessToken,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return apperror.Validation("invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(refreshCookie(res.RefreshToken, res.RefreshExpiresAt, h.SecureCookie))

	return c.JSON(http.StatusOK, authResponse{
		User:        projectUser(res.User),
		AccessToken: res.AccessToken,
	})
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return apperror.Authentication("refresh token is missing")
	}

	token, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"code":    "Success",
		"message": "access token refreshed",
		"data":    echo.Map{"token": token},
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			c.SetCookie(deleteRefreshCookie(h.SecureCookie))
			return err
		}
	}

	c.SetCookie(deleteRefreshCookie(h.SecureCookie))

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"code":    "Success",
		"message": "logged out successfully",
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return apperror.Authentication("missing access token")
	}

	user, err := h.Svc.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"user": projectUser(user)})
}

type sessionProjection struct {
	ID       uint      `json:"id"`
	IssuedAt time.Time `json:"issued_at"`
}

// UserSessions is admin-only; the token strings never leave the server.
func (h *AuthHandler) UserSessions(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return apperror.Validation("invalid user id", map[string]string{"id": "must be a number"})
	}

	sessions, err := h.Svc.Sessions(ctx, uint(id))
	if err != nil {
		return err
	}

	out := make([]sessionProjection, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionProjection{ID: s.ID, IssuedAt: s.CreatedAt})
	}

	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

func projectUser(u *models.User) userProjection {
	return userProjection{
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}
