package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and account info.
type LoginResponse struct {
	AccessToken string    `json:"token"`
	ExpiresIn   int64     `json:"expiresIn"`
	Role        Role      `json:"role"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// UserInfo describes the authenticated account in responses.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
