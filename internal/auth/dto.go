package auth

import "github.com/ykuznetsov/settleup/internal/user"

// SignupRequest represents the request to register a new user
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the user and their session token
type AuthResponse struct {
	User  *user.UserResponse `json:"user"`
	Token string             `json:"token"`
}
