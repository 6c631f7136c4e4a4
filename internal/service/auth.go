package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mkravchenko/blog-backend/internal/apperror"
	"github.com/mkravchenko/blog-backend/internal/events"
	"github.com/mkravchenko/blog-backend/internal/hash"
	"github.com/mkravchenko/blog-backend/internal/logging"
	"github.com/mkravchenko/blog-backend/internal/models"
	"github.com/mkravchenko/blog-backend/internal/repo"
	"github.com/mkravchenko/blog-backend/internal/tokens"
)

// Deliberately identical for the unknown-email and wrong-password paths.
const msgBadCredentials = "Email or password is incorrect"

// AllowRole decides whether an email may self-assign a role at registration.
type AllowRole func(email string, role models.Role) bool

// AllowlistGate permits the admin role only for emails in the configured set.
// Any email may take the user role.
func AllowlistGate(adminEmails []string) AllowRole {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allowed[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return func(email string, role models.Role) bool {
		if role != models.RoleAdmin {
			return true
		}
		_, ok := allowed[strings.ToLower(email)]
		return ok
	}
}

type AuthService struct {
	Repo      *repo.Repo
	Issuer    *tokens.Issuer
	Events    events.Publisher
	AllowRole AllowRole
}

func NewAuthService(r *repo.Repo, issuer *tokens.Issuer, pub events.Publisher, allow AllowRole) *AuthService {
	return &AuthService{
		Repo:      r,
		Issuer:    issuer,
		Events:    pub,
		AllowRole: allow,
	}
}

type AuthResult struct {
	User             *models.User
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, email, password string, role models.Role) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = models.RoleUser
	}

	if !s.AllowRole(email, role) {
		l.Warn("register_rejected", "status", 403, "reason", "role not permitted for email", "role", string(role))
		return nil, apperror.Authorization("you are not allowed to register as " + string(role))
	}

	username, err := s.uniqueUsername(ctx, email)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot generate username", "error", err)
		return nil, apperror.Server("could not create user", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot persist user", "error", err)
		return nil, apperror.Server("could not create user", err)
	}

	res, err := s.issueTokens(ctx, user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	s.emit(ctx, events.Event{
		Type:     events.TypeUserRegistered,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	l.Info("register_successful", "user_id", user.ID, "role", string(role))

	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, apperror.Authentication(msgBadCredentials)
		}
		l.Error("login_error", "status", 500, "error", err)
		return nil, apperror.Server("could not log in", err)
	}

	if !hash.CheckPassword(user.Password, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, apperror.Authentication(msgBadCredentials)
	}

	res, err := s.issueTokens(ctx, user)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	s.emit(ctx, events.Event{
		Type:     events.TypeUserLoggedIn,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	l.Info("login_successful", "user_id", user.ID)

	return res, nil
}

// Refresh mints a new access token for a valid refresh token. The ledger
// lookup runs before cryptographic verification so a revoked token is
// rejected even when its signature would still verify. The refresh token
// itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return "", apperror.Authentication("refresh token is missing")
	}

	stored, err := s.Repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "token not in ledger")
			return "", apperror.Authentication("invalid refresh token")
		}
		l.Error("refresh_error", "status", 500, "error", err)
		return "", apperror.Server("could not refresh token", err)
	}

	claims, err := s.Issuer.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			l.Warn("refresh_failed", "status", 401, "reason", "token expired", "user_id", stored.UserID)
			return "", apperror.Authentication("refresh token has expired")
		}
		l.Warn("refresh_failed", "status", 401, "reason", "token invalid")
		return "", apperror.Authentication("invalid refresh token")
	}

	accessToken, err := s.Issuer.IssueAccess(claims.UserID)
	if err != nil {
		l.Error("refresh_error", "status", 500, "reason", "cannot issue access token", "error", err)
		return "", apperror.Server("could not refresh token", err)
	}

	s.emit(ctx, events.Event{Type: events.TypeTokenRefreshed, UserID: claims.UserID})
	l.Info("refresh_successful", "user_id", claims.UserID)

	return accessToken, nil
}

// Logout revokes the presented refresh token server-side. A token that is
// absent from the ledger is not an error; the client cookie is cleared by the
// handler either way.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if refreshToken == "" {
		return nil
	}

	if err := s.Repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		l.Error("logout_error", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return apperror.Server("could not log out", err)
	}

	s.emit(ctx, events.Event{Type: events.TypeUserLoggedOut})
	l.Info("logout_successful")

	return nil
}

// Sessions lists a user's active ledger rows for the admin surface. The token
// strings themselves stay server-side; callers only see issuance metadata.
func (s *AuthService) Sessions(ctx context.Context, userID uint) ([]models.RefreshToken, error) {
	rts, err := s.Repo.ListRefreshTokens(ctx, userID)
	if err != nil {
		return nil, apperror.Server("could not list sessions", err)
	}
	return rts, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, apperror.Authentication("user no longer exists")
		}
		return nil, apperror.Server("could not load user", err)
	}
	return user, nil
}

// uniqueUsername retries the random suffix a few times on the off chance it
// collides with an existing username. The unique index still backstops races.
func (s *AuthService) uniqueUsername(ctx context.Context, email string) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		username, err := generateUsername(email)
		if err != nil {
			return "", err
		}
		exists, err := s.Repo.UsernameExists(ctx, username)
		if err != nil {
			return "", err
		}
		if !exists {
			return username, nil
		}
	}
	return "", errors.New("could not pick a unique username")
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessToken, err := s.Issuer.IssueAccess(user.ID)
	if err != nil {
		return nil, apperror.Server("could not issue tokens", err)
	}

	refreshToken, err := s.Issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, apperror.Server("could not issue tokens", err)
	}

	if err := s.Repo.StoreRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, apperror.Server("could not issue tokens", err)
	}

	return &AuthResult{
		User:             user,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: time.Now().Add(s.Issuer.RefreshTTL()),
	}, nil
}

// Event delivery is best effort and never fails the request.
func (s *AuthService) emit(ctx context.Context, event events.Event) {
	if err := s.Events.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", event.Type, "error", err)
	}
}
