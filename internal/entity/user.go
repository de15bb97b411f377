package entity

import "time"

type User struct {
	ID             string    `db:"id"`
	FirstName      string    `db:"nombres"`
	LastName       string    `db:"apellidos"`
	Gender         string    `db:"sexo"`
	Email          string    `db:"correo"`
	PhoneNumber    string    `db:"celular"`
	BirthDate      time.Time `db:"fechanacimiento"`
	DocumentType   string    `db:"tipodocumento"`
	DocumentNumber string    `db:"numerodocumento"`
	Password       string    `db:"contrasena"`
	IsVerified     bool      `db:"verificado"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type UserLoginData struct {
	ID       string
	Username string
	Email    string
}
