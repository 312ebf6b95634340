package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the payload of access tokens issued by the login service.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	DeptID string   `json:"dept_id"`
	Email  string   `json:"email,omitempty"`
	Name   string   `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Caller identifies the authenticated actor of a request.
type Caller struct {
	UserID string
	Role   UserRole
	DeptID string
}

// Caller converts verified claims into the caller passed to services.
func (c *JWTClaims) Caller() Caller {
	if c == nil {
		return Caller{}
	}
	return Caller{UserID: c.UserID, Role: c.Role, DeptID: c.DeptID}
}
