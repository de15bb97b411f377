package quotationHandler

import (
	quotationService "VidaSegura/internal/api/quotation/service"
	"VidaSegura/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type QuotationHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	quotationService quotationService.QuotationService
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	qs quotationService.QuotationService,
) *QuotationHandler {
	return &QuotationHandler{
		log:              log,
		validator:        validator,
		middleware:       middleware,
		quotationService: qs,
	}
}

func (h *QuotationHandler) Start(srv fiber.Router) {
	quotations := srv.Group("/quotations")
	quotations.Post("/", h.HandleCreateQuotation)

	contracts := srv.Group("/contracts")
	contracts.Post("/", h.HandleCreateContract)
}
