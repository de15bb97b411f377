package auth

import "time"

type CreateUserRequest struct {
	FirstName      string `json:"nombres" validate:"required,min=2,max=100"`
	LastName       string `json:"apellidos" validate:"required,min=2,max=100"`
	Gender         string `json:"sexo" validate:"omitempty,oneof=M F"`
	Email          string `json:"correo" validate:"required,email"`
	PhoneNumber    string `json:"celular" validate:"required,min=8,max=15"`
	BirthDate      string `json:"fechanacimiento" validate:"required"`
	DocumentType   string `json:"tipodocumento" validate:"required,oneof=DUI PASAPORTE"`
	DocumentNumber string `json:"numerodocumento" validate:"required,min=6,max=15"`
	Password       string `json:"contrasena" validate:"required,min=8,max=32"`
}

type LoginUserRequest struct {
	Email    string `json:"correo" validate:"required,email"`
	Password string `json:"contrasena" validate:"required"`
}

type LoginUserGoogle struct {
	Email string `json:"correo"`
}

type UserGoogle struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Picture       string `json:"picture"`
}

type LoginUserResponse struct {
	AccessToken      string  `json:"accessToken"`
	ExpiresInMinutes float64 `json:"expiresInMinutes"`
}

type UserResponse struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"nombres"`
	LastName       string    `json:"apellidos"`
	Gender         string    `json:"sexo,omitempty"`
	Email          string    `json:"correo"`
	PhoneNumber    string    `json:"celular,omitempty"`
	BirthDate      time.Time `json:"fechanacimiento,omitempty"`
	DocumentType   string    `json:"tipodocumento,omitempty"`
	DocumentNumber string    `json:"numerodocumento,omitempty"`
	IsVerified     bool      `json:"verificado"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UpdateUserRequest struct {
	FirstName   string `json:"nombres"`
	LastName    string `json:"apellidos"`
	Gender      string `json:"sexo"`
	PhoneNumber string `json:"celular"`
	BirthDate   string `json:"fechanacimiento"`
}

type SendEmailOTPRequest struct {
	Email string `json:"correo" validate:"required,email"`
}

type VerifyEmailOTPRequest struct {
	Email string `json:"correo" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=5,max=5"`
}

type ResetPassword struct {
	Email    string `json:"correo" validate:"required,email"`
	Code     string `json:"code" validate:"required,min=5,max=5"`
	Password string `json:"contrasena" validate:"required,min=8,max=32"`
}
