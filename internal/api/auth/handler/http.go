package authHandler

import (
	authService "VidaSegura/internal/api/auth/service"
	"VidaSegura/internal/middleware"
	"VidaSegura/pkg/google"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	log            *logrus.Logger
	authService    authService.AuthService
	validator      *validator.Validate
	middleware     middleware.Middleware
	googleProvider google.ItfGoogle
}

func New(
	log *logrus.Logger,
	as authService.AuthService,
	validate *validator.Validate,
	middleware middleware.Middleware,
	googleProvider google.ItfGoogle) *AuthHandler {
	return &AuthHandler{
		log:            log,
		authService:    as,
		validator:      validate,
		middleware:     middleware,
		googleProvider: googleProvider,
	}
}

func (h *AuthHandler) Start(srv fiber.Router) {
	auth := srv.Group("/auth")
	auth.Post("/login", h.HandleLogin)
	auth.Get("/login-gl", h.HandleGoogleLogin)
	auth.Get("/callback-gl", h.CallBackFromGoogle)
	auth.Post("/email-otp", h.HandleSendEmailOTP)
	auth.Post("/email-otp/verify", h.HandleVerifyEmailOTP)

	users := srv.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Get("/:id", h.middleware.NewTokenMiddleware, h.HandleGetUserById)
	users.Patch("/", h.middleware.NewTokenMiddleware, h.HandleUpdateUser)
	users.Delete("/:id", h.middleware.NewTokenMiddleware, h.HandleDeleteUser)

	password := srv.Group("/password")
	password.Post("/reset", h.HandleResetPassword)
}
