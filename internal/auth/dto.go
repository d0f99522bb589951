// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

// LoginRequest is checked by hand so that missing fields produce the
// single "Username and password required" message.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type TokenResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type VerifyResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

func toUserResponse(identity *Identity) UserResponse {
	return UserResponse{
		ID:       identity.ID,
		Username: identity.Username,
		Role:     identity.Role,
	}
}
