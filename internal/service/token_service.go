package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/config"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
)

// TokenService verifies bearer tokens issued by the login service.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{secret: []byte(cfg.Secret), issuer: cfg.Issuer, audience: cfg.Audience, now: time.Now}
}

// Validate parses an HS256 token and returns its claims.
func (s *TokenService) Validate(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is missing user identity")
	}
	return claims, nil
}

// Issue signs claims with the shared secret. It backs local tooling and tests; production
// tokens come from the login service.
func (s *TokenService) Issue(user models.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		DeptID: user.DeptID,
		Email:  user.Email,
		Name:   user.FullName(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, nil
}
