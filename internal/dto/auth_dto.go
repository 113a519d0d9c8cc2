package dto

import (
	"time"

	"github.com/AnasSAV/Quest-Learn-Backend/internal/models"
)

// RegisterRequest describes the payload for creating a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

// LoginRequest describes the payload for authenticating an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest describes the payload for exchanging a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair bundles the issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserProfile is the serialized representation of an account.
type UserProfile struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the authenticated profile and its tokens.
type LoginResponse struct {
	User  UserProfile `json:"user"`
	Token TokenPair   `json:"token"`
}

// NewUserProfile converts a model into a DTO.
func NewUserProfile(model models.User) UserProfile {
	return UserProfile{
		ID:        model.ID,
		Email:     model.Email,
		FullName:  model.FullName,
		Role:      model.Role,
		CreatedAt: model.CreatedAt,
	}
}
