package verificationHandler

import (
	verificationService "VidaSegura/internal/api/verification/service"
	"VidaSegura/internal/middleware"
	"VidaSegura/pkg/utils"
	websocketPkg "VidaSegura/pkg/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type VerificationHandler struct {
	log                 *logrus.Logger
	validator           *validator.Validate
	middleware          middleware.Middleware
	verificationService verificationService.VerificationService
	visionWS            websocketPkg.IWebsocket
	utils               utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	vs verificationService.VerificationService,
	visionWS websocketPkg.IWebsocket,
	utils utils.IUtils,
) *VerificationHandler {
	return &VerificationHandler{
		log:                 log,
		validator:           validator,
		middleware:          middleware,
		verificationService: vs,
		visionWS:            visionWS,
		utils:               utils,
	}
}

func (h *VerificationHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	verification := srv.Group("/verification")
	verification.Post("/identity", h.middleware.NewRateLimiter, h.HandleVerifyIdentity)
	verification.Post("/reference", h.middleware.NewRateLimiter, h.HandleStoreReference)
	verification.Get("/admin", h.middleware.NewAdminMiddleware, h.HandleAdminList)

	liveness := verification.Group("/liveness")
	liveness.Post("/session", h.HandleStartLiveness)
	liveness.Get("/session/:id", h.HandleLivenessState)
	liveness.Use("/ws", wsMiddleware)
	liveness.Get("/ws", websocket.New(h.handleLivenessWebSocket))
}
