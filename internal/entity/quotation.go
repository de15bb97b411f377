package entity

import "time"

type Quotation struct {
	ID              string    `db:"id"`
	UserID          string    `db:"usuario_id"`
	FirstName       string    `db:"nombre"`
	FirstSurname    string    `db:"primerapellido"`
	SecondSurname   string    `db:"segundoapellido"`
	PhoneNumber     string    `db:"celular"`
	Email           string    `db:"correo"`
	InsuredAmount   float64   `db:"monto_asegurar"`
	BenefitTransfer string    `db:"cesion_beneficios"`
	Policy          string    `db:"poliza"`
	CreatedAt       time.Time `db:"created_at"`
}

type Contract struct {
	ID          string    `db:"id"`
	UserID      string    `db:"usuario_id"`
	FullName    string    `db:"nombre_completo"`
	Email       string    `db:"correo"`
	PhoneNumber string    `db:"celular"`
	CreatedAt   time.Time `db:"created_at"`
}
