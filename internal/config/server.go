package config

import (
	"VidaSegura/database/postgres"
	authHandler "VidaSegura/internal/api/auth/handler"
	authRepository "VidaSegura/internal/api/auth/repository"
	authService "VidaSegura/internal/api/auth/service"
	quotationHandler "VidaSegura/internal/api/quotation/handler"
	quotationRepository "VidaSegura/internal/api/quotation/repository"
	quotationService "VidaSegura/internal/api/quotation/service"
	verificationHandler "VidaSegura/internal/api/verification/handler"
	verificationRepository "VidaSegura/internal/api/verification/repository"
	verificationService "VidaSegura/internal/api/verification/service"
	"VidaSegura/internal/middleware"
	"VidaSegura/pkg/bcrypt"
	"VidaSegura/pkg/google"
	"VidaSegura/pkg/ocr"
	"VidaSegura/pkg/redis"
	"VidaSegura/pkg/rekognition"
	"VidaSegura/pkg/s3"
	"VidaSegura/pkg/smtp"
	"VidaSegura/pkg/utils"
	websocketPkg "VidaSegura/pkg/websocket"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	bcryptUtils    bcrypt.IBcrypt
	handlers       []handler
	googleProvider google.ItfGoogle
	redisServer    redis.IRedis
	smtpMailer     smtp.ItfSmtp
	visionWS       websocketPkg.IWebsocket
	ocrEngine      ocr.ItfOCR
	rekClient      rekognition.ItfRekognition
	s3Client       s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithGoogleProvider(provider google.ItfGoogle) ServerOption {
	return func(s *Server) error {
		s.googleProvider = provider
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithVisionWebSocket(webSocket websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.visionWS = webSocket
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithOCRClient() ServerOption {
	return func(s *Server) error {
		client, err := ocr.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create OCR client: %v", err)
			}
			return fmt.Errorf("failed to create OCR client: %w", err)
		}
		s.ocrEngine = client
		return nil
	}
}

// WithRekognitionClient degrades instead of failing: without AWS
// configuration the comparison engine stays nil and verification runs
// without a facial match.
func WithRekognitionClient() ServerOption {
	return func(s *Server) error {
		client, err := rekognition.New()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Face comparison engine unavailable: %v", err)
			}
			return nil
		}
		s.rekClient = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Auth Domain
	authRepo := authRepository.New(s.db, s.log)
	authServices := authService.New(s.log, authRepo, s.googleProvider, s.smtpMailer, s.redisServer, s.bcryptUtils, s.utils)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware, s.googleProvider)

	// Verification Domain
	verificationRepo := verificationRepository.New(s.db, s.log)
	verificationServices := verificationService.New(
		s.log, verificationRepo, authRepo,
		s.ocrEngine, s.rekClient, s.redisServer,
		s.smtpMailer, s.s3Client, s.visionWS, s.utils,
	)
	verificationHandlers := verificationHandler.New(s.log, s.validator, s.middleware, verificationServices, s.visionWS, s.utils)

	// Quotation Domain
	quotationRepo := quotationRepository.New(s.db, s.log)
	quotationServices := quotationService.New(s.log, quotationRepo, s.smtpMailer, s.utils)
	quotationHandlers := quotationHandler.New(s.log, s.validator, s.middleware, quotationServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, verificationHandlers, quotationHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.visionWS != nil {
			s.visionWS.CloseConnections()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
