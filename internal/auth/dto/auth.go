package dto

import authdomain "hoosha-backend/internal/auth/domain"

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh" binding:"required"`
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

type TokenResponse struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

type UserResponse struct {
	User *authdomain.User `json:"user"`
}

// Errors is the bilingual error payload every endpoint returns on failure.
type Errors struct {
	Errors struct {
		Fa []string `json:"fa"`
		En []string `json:"en"`
	} `json:"errors"`
}

// NewErrors builds a payload from paired fa/en messages.
func NewErrors(fa, en string) Errors {
	var e Errors
	e.Errors.Fa = []string{fa}
	e.Errors.En = []string{en}
	return e
}
