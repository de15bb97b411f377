package verificationHandler

import (
	"VidaSegura/internal/api/verification"
	"VidaSegura/internal/entity"
	contextPkg "VidaSegura/pkg/context"
	"VidaSegura/pkg/handlerUtil"
	websocketPkg "VidaSegura/pkg/websocket"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

func (h *VerificationHandler) HandleStartLiveness(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	session, err := h.verificationService.Liveness().StartSession()
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "start_liveness_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, session)
}

func (h *VerificationHandler) HandleLivenessState(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	_, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	state, err := h.verificationService.Liveness().SessionState(ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_liveness_state")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{"state": state})
}

// handleLivenessWebSocket drives one capture session. Binary messages are
// camera frames that go to the landmark service first; text messages are
// pre-computed landmark measurements from clients that run detection
// locally. Every processed frame gets a session update back.
func (h *VerificationHandler) handleLivenessWebSocket(c *websocket.Conn) {
	sessionID := c.Query("session")

	h.log.WithField("session_id", sessionID).Info("Liveness WebSocket client connected")
	defer h.log.WithField("session_id", sessionID).Info("Liveness WebSocket client disconnected")

	if sessionID == "" {
		_ = c.WriteJSON(verification.LivenessUpdate{Error: "session query parameter required"})
		return
	}

	c.SetPingHandler(func(data string) error {
		return c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Liveness WebSocket error: %v", err)
			}
			break
		}

		var frame *entity.LandmarkFrame
		switch messageType {
		case websocket.BinaryMessage:
			frame, err = h.landmarksFor(message)
			if err != nil {
				if writeErr := c.WriteJSON(verification.LivenessUpdate{Error: "landmark service unavailable"}); writeErr != nil {
					return
				}
				continue
			}
		case websocket.TextMessage:
			var parsed entity.LandmarkFrame
			if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(message, &parsed); err != nil {
				if writeErr := c.WriteJSON(verification.LivenessUpdate{Error: "invalid landmark payload"}); writeErr != nil {
					return
				}
				continue
			}
			frame = &parsed
		default:
			continue
		}

		update, err := h.verificationService.Liveness().ProcessFrame(sessionID, *frame)
		if err != nil {
			_ = c.WriteJSON(verification.LivenessUpdate{Error: "session not found"})
			return
		}

		if err := c.WriteJSON(update); err != nil {
			h.log.Errorf("Error writing liveness update: %v", err)
			break
		}

		if update.State != entity.SessionPending {
			return
		}
	}
}

func (h *VerificationHandler) landmarksFor(frame []byte) (*entity.LandmarkFrame, error) {
	landmarks, err := h.visionWS.ProcessLandmarkFrame(frame)
	if err == nil {
		return landmarks, nil
	}

	// one reconnect attempt before giving up on the frame
	if reconnectErr := h.visionWS.Reconnect(websocketPkg.LandmarkStream); reconnectErr != nil {
		return nil, err
	}

	return h.visionWS.ProcessLandmarkFrame(frame)
}
