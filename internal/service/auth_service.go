package service

import (
	"casepilot/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService handles consultant authentication for the dashboard. Lead-side
// access never goes through here: resume tokens are capability links.
type AuthService struct {
	consultantEmail    string
	consultantPassword string
	jwtSecret          []byte
}

// NewAuthService creates a new auth service
func NewAuthService(email, password, secret string) *AuthService {
	return &AuthService{
		consultantEmail:    email,
		consultantPassword: password,
		jwtSecret:          []byte(secret),
	}
}

// Login validates credentials and returns a bearer token
func (s *AuthService) Login(email, password string) (*model.LoginResponse, error) {
	if email != s.consultantEmail || password != s.consultantPassword {
		return nil, ErrInvalidCredentials
	}

	consultantID := "consultant_" + uuid.New().String()[:8]

	claims := &model.ConsultantClaims{
		ConsultantID: consultantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:        tokenString,
		ConsultantID: consultantID,
	}, nil
}

// ValidateToken validates a consultant JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.ConsultantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ConsultantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ConsultantClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
