package quotation

// CreateQuotationRequest is the public insurance quotation form.
type CreateQuotationRequest struct {
	UserID          string  `json:"usuario_id"`
	FirstName       string  `json:"nombre" validate:"required"`
	FirstSurname    string  `json:"primerapellido" validate:"required"`
	SecondSurname   string  `json:"segundoapellido"`
	PhoneNumber     string  `json:"celular" validate:"required"`
	Email           string  `json:"correo" validate:"required,email"`
	InsuredAmount   float64 `json:"monto_asegurar" validate:"required,gt=0"`
	BenefitTransfer bool    `json:"cesion_beneficios"`
	Policy          string  `json:"poliza"`
}

// CreateContractRequest is the follow-up contract intake form.
type CreateContractRequest struct {
	UserID      string `json:"usuario_id"`
	FullName    string `json:"nombre_completo" validate:"required"`
	Email       string `json:"correo" validate:"required,email"`
	PhoneNumber string `json:"celular" validate:"required"`
}

type CreateQuotationResponse struct {
	ID      string `json:"id"`
	Message string `json:"mensaje"`
}

type CreateContractResponse struct {
	ID      string `json:"id"`
	Message string `json:"mensaje"`
}
