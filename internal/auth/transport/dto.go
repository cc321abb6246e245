package transport

import "time"

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileResponse struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone,omitempty"`
	Role           string    `json:"role"`
	CommissionRate float64   `json:"commissionRate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type SignInResponse struct {
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Profile     ProfileResponse `json:"profile"`
}

type CreateMemberRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=8"`
	FullName       string  `json:"fullName" validate:"required,max=120"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Role           string  `json:"role" validate:"required,role"`
	CommissionRate float64 `json:"commissionRate" validate:"gte=0,lte=100"`
}

type UpdateMemberRequest struct {
	FullName       *string  `json:"fullName" validate:"omitempty,min=1,max=120"`
	Phone          *string  `json:"phone" validate:"omitempty,max=32"`
	Role           *string  `json:"role" validate:"omitempty,role"`
	CommissionRate *float64 `json:"commissionRate" validate:"omitempty,gte=0,lte=100"`
	IsActive       *bool    `json:"isActive"`
}

type DeleteMemberResponse struct {
	ReleasedLeads int64 `json:"releasedLeads"`
}
