package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkravchenko/blog-backend/internal/apperror"
	"github.com/mkravchenko/blog-backend/internal/models"
	"github.com/mkravchenko/blog-backend/internal/repo"
	"github.com/mkravchenko/blog-backend/internal/tokens"
)

const userIDKey = "userID"

// AuthMiddleware gates protected routes on a valid bearer access token.
type AuthMiddleware struct {
	Issuer *tokens.Issuer
	Repo   *repo.Repo
}

func NewAuthMiddleware(issuer *tokens.Issuer, r *repo.Repo) *AuthMiddleware {
	return &AuthMiddleware{Issuer: issuer, Repo: r}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return apperror.Authentication("missing access token")
		}

		claims, err := m.Issuer.VerifyAccess(raw)
		if err != nil {
			if errors.Is(err, tokens.ErrExpired) {
				return apperror.Authentication("access token has expired")
			}
			return apperror.Authentication("invalid access token")
		}

		c.Set(userIDKey, claims.UserID)
		return next(c)
	}
}

// RequireRole runs after RequireAuth. The role is read from the credential
// store, not from the token, so a role change takes effect immediately.
func (m *AuthMiddleware) RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserID(c)
			if !ok {
				return apperror.Authentication("missing access token")
			}

			user, err := m.Repo.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repo.ErrUserNotFound) {
					return apperror.Authentication("user no longer exists")
				}
				return apperror.Server("could not check permissions", err)
			}

			if user.Role != role {
				return apperror.Authorization("you don't have enough rights")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(userIDKey).(uint)
	return id, ok
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
