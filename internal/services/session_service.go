package services

import (
	"errors"
	"strconv"
	"time"

	"busticket/internal/domain"
	"busticket/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the signed session cookie.
type SessionClaims struct {
	UserID   int64  `json:"user_id"`
	GoogleID string `json:"google_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// SessionService issues and verifies HS256 session tokens.
type SessionService struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (s SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s SessionService) Issue(u models.User) (string, error) {
	if len(s.Secret) == 0 {
		return "", errors.New("session secret not configured")
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	claims := SessionClaims{
		UserID:   u.ID,
		GoogleID: u.GoogleID,
		Name:     u.Name,
		Email:    u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Parse verifies the token and returns the caller identity.
func (s SessionService) Parse(token string) (domain.Principal, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, domain.UnauthorizedError{Msg: "invalid session"}
	}
	if claims.UserID <= 0 {
		return domain.Principal{}, domain.UnauthorizedError{Msg: "invalid session"}
	}
	return domain.Principal{
		UserID:   domain.ID(claims.UserID),
		GoogleID: claims.GoogleID,
		Name:     claims.Name,
		Email:    claims.Email,
	}, nil
}
