package model

import "github.com/golang-jwt/jwt/v5"

// ConsultantClaims are JWT claims for dashboard authentication
type ConsultantClaims struct {
	ConsultantID string `json:"consultantId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for consultant login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token        string `json:"token"`
	ConsultantID string `json:"consultantId"`
}
