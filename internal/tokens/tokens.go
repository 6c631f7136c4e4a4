package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Subject claims discriminate the two token classes so one can never be
// replayed as the other, even if the signing secrets were shared by mistake.
const (
	SubjectAccess  = "accessApi"
	SubjectRefresh = "refreshToken"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access and refresh tokens. The two classes use
// distinct secrets and distinct lifetimes.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssueAccess(userID uint) (string, error) {
	return i.sign(userID, SubjectAccess, i.accessTTL, i.accessSecret)
}

func (i *Issuer) IssueRefresh(userID uint) (string, error) {
	return i.sign(userID, SubjectRefresh, i.refreshTTL, i.refreshSecret)
}

func (i *Issuer) VerifyAccess(tokenStr string) (*Claims, error) {
	return verify(tokenStr, SubjectAccess, i.accessSecret)
}

func (i *Issuer) VerifyRefresh(tokenStr string) (*Claims, error) {
	return verify(tokenStr, SubjectRefresh, i.refreshSecret)
}

func (i *Issuer) sign(userID uint, subject string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(tokenStr, subject string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method: " + t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid || claims.Subject != subject {
		return nil, ErrInvalid
	}
	return &claims, nil
}
