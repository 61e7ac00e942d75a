package dto

import (
	"time"

	"github.com/logistics-kit/delivery-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	PhoneNumber string      `json:"phone_number"`
	Password    string      `json:"password"`
	Role        domain.Role `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the wire form of a user record.
type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	PhoneNumber string      `json:"phone_number"`
	Role        domain.Role `json:"role"`
}
