package model

import (
	"github.com/google/uuid"
)

type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
)

// User is the authentication identity behind a patient or provider profile.
type User struct {
	Base
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
}

// Provider is the bookable resource. It references its user by id only.
type Provider struct {
	Base
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Specialization  string    `db:"specialization" json:"specialization"`
	Bio             string    `db:"bio" json:"bio,omitempty"`
	ConsultationFee float64   `db:"consultation_fee" json:"consultation_fee"`
	Currency        string    `db:"currency" json:"currency,omitempty"`
	Country         string    `db:"country" json:"country,omitempty"`
	City            string    `db:"city" json:"city,omitempty"`
	Address         string    `db:"address" json:"address,omitempty"`
}

type Patient struct {
	Base
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Gender    string    `db:"gender" json:"gender,omitempty"`
}

// ProviderFilters narrows provider directory searches.
type ProviderFilters struct {
	Country        string `form:"country"`
	City           string `form:"city"`
	Specialization string `form:"specialization"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      Role   `json:"role" binding:"required,oneof=patient provider"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProviderProfileRequest struct {
	FirstName       string  `json:"first_name" binding:"required"`
	LastName        string  `json:"last_name" binding:"required"`
	Specialization  string  `json:"specialization" binding:"required"`
	Bio             string  `json:"bio" binding:"max=2000"`
	ConsultationFee float64 `json:"consultation_fee" binding:"gte=0"`
	Currency        string  `json:"currency"`
	Country         string  `json:"country"`
	City            string  `json:"city"`
	Address         string  `json:"address"`
}
