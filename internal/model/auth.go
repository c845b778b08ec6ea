package model

import "github.com/golang-jwt/jwt/v5"

// OwnerClaims is the JWT payload for an authenticated room owner.
type OwnerClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// LoginResponse is returned by the owner login endpoint.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
