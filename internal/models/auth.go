package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload issued by the identity service.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	SchoolID  string   `json:"school_id,omitempty"`
	Subdomain string   `json:"subdomain,omitempty"`
	jwt.RegisteredClaims
}
