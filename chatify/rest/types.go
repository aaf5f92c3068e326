package rest

import (
	"time"

	"github.com/chatify/chatify-sdk-go/chatify"
)

// Authentication types

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo represents user metadata returned by the API.
type UserInfo struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse contains the bearer token and the authenticated user.
type AuthResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"tokenType"` // always "Bearer"
	User      UserInfo `json:"user"`
}

// Message history types

// MessagePage is one page of room history. Pages and their contents
// are newest-first; chronological order is the caller's problem (the
// SDK's store reverses on load).
type MessagePage struct {
	Content       []chatify.Message `json:"content"`
	TotalPages    int               `json:"totalPages"`
	TotalElements int64             `json:"totalElements"`
	Last          bool              `json:"last"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
