package quotation

import (
	"VidaSegura/pkg/response"
	"net/http"
)

var (
	ErrInvalidAmount     = response.NewError(http.StatusBadRequest, "insured amount must be positive")
	ErrQuotationNotFound = response.NewError(http.StatusNotFound, "quotation not found")
	ErrUserNotFound      = response.NewError(http.StatusNotFound, "user not found")
)
