package verificationHandler

import (
	"VidaSegura/internal/api/verification"
	"VidaSegura/internal/entity"
	contextPkg "VidaSegura/pkg/context"
	"VidaSegura/pkg/handlerUtil"
	"VidaSegura/pkg/log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

const adminListLimit = 500

// HandleVerifyIdentity accepts the multipart submission bundle: the
// document photo plus optional camera evidence (a single selfie, a set of
// challenge-tagged frames, or a short video clip).
func (h *VerificationHandler) HandleVerifyIdentity(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing identity verification request")

	documentFile, err := ctx.FormFile("documento")
	if err != nil {
		return errHandler.Handle(ctx, requestID, verification.ErrDocumentMissing, ctx.Path(), "get_document_file")
	}

	if err := h.utils.ValidateImageFile(documentFile); err != nil {
		return errHandler.Handle(ctx, requestID, verification.ErrInvalidFileType, ctx.Path(), "validate_document_file")
	}

	documentBytes, err := h.utils.ReadFileBytes(documentFile)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_document_file")
	}

	evidence, err := h.parseEvidence(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_evidence")
	}

	req := verification.VerifyRequest{
		UserID:       ctx.FormValue("usuario_id"),
		Document:     documentBytes,
		DocumentName: documentFile.Filename,
		Evidence:     evidence,
		ActionsLog:   parseActionsLog(ctx.FormValue("acciones")),
		SessionID:    ctx.FormValue("session_id"),
		Device:       ctx.Get("User-Agent"),
		IP:           ctx.IP(),
	}

	result, err := h.verificationService.Pipeline().Verify(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "verify_identity")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

// HandleStoreReference accepts the reference selfie either as a multipart
// "selfie" file or as a base64 JSON body.
func (h *VerificationHandler) HandleStoreReference(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req verification.ReferenceFaceRequest
	if selfieFile, err := ctx.FormFile("selfie"); err == nil {
		if err := h.utils.ValidateImageFile(selfieFile); err != nil {
			return errHandler.Handle(ctx, requestID, verification.ErrInvalidFileType, ctx.Path(), "validate_reference_file")
		}

		src, err := selfieFile.Open()
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_reference_file")
		}
		defer src.Close()

		encoded, err := h.utils.ConvertFileToBase64(src)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "encode_reference_file")
		}

		req.UserID = ctx.FormValue("usuario_id")
		req.ImageBase64 = encoded
	} else if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.verificationService.Pipeline().StoreReferenceFace(c, req.UserID, req.ImageBase64); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "store_reference_face")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"mensaje": "Rostro de referencia almacenado",
		})
	}
}

func (h *VerificationHandler) HandleAdminList(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	limit := adminListLimit
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed < adminListLimit {
			limit = parsed
		}
	}

	rows, err := h.verificationService.Pipeline().ListOutcomes(c, limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_verifications")
	}

	items := make([]verification.AdminVerificationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, verification.AdminVerificationItem{
			ID:              row.ID,
			UserID:          row.UserID,
			FirstName:       row.FirstName,
			LastName:        row.LastName,
			Email:           row.Email,
			SimilarityScore: row.SimilarityScore,
			MatchResult:     row.MatchResult,
			LivenessPassed:  row.LivenessPassed,
			DocumentType:    row.DocumentType,
			Identifier:      row.Identifier,
			ResultGeneral:   string(row.ResultGeneral),
			Notified:        row.Notified,
			CreatedAt:       row.CreatedAt.Format(time.RFC3339),
		})
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, verification.AdminListResponse{Data: items})
	}
}

// parseEvidence decomposes the optional camera evidence. Priority follows
// specificity: tagged frames first, then a video clip, then a single
// selfie.
func (h *VerificationHandler) parseEvidence(ctx *fiber.Ctx) (verification.Evidence, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return verification.Evidence{Kind: verification.EvidenceNone}, nil
	}

	if frames := form.File["frames"]; len(frames) > 0 {
		tagged := make([]verification.TaggedFrame, 0, len(frames))
		for _, frameFile := range frames {
			if err := h.utils.ValidateEvidenceFile(frameFile); err != nil {
				return verification.Evidence{}, verification.ErrInvalidFileType
			}
			data, err := h.utils.ReadFileBytes(frameFile)
			if err != nil {
				return verification.Evidence{}, err
			}
			tagged = append(tagged, verification.TaggedFrame{
				Challenge: challengeFromFilename(frameFile.Filename),
				Data:      data,
			})
		}
		return verification.Evidence{Kind: verification.EvidenceSequence, Frames: tagged}, nil
	}

	if video := firstFile(form, "video"); video != nil {
		if err := h.utils.ValidateEvidenceFile(video); err != nil {
			return verification.Evidence{}, verification.ErrInvalidFileType
		}
		data, err := h.utils.ReadFileBytes(video)
		if err != nil {
			return verification.Evidence{}, err
		}
		return verification.Evidence{Kind: verification.EvidenceVideo, Video: data}, nil
	}

	if selfie := firstFile(form, "selfie"); selfie != nil {
		if err := h.utils.ValidateImageFile(selfie); err != nil {
			return verification.Evidence{}, verification.ErrInvalidFileType
		}
		data, err := h.utils.ReadFileBytes(selfie)
		if err != nil {
			return verification.Evidence{}, err
		}
		return verification.Evidence{Kind: verification.EvidenceImage, Image: data}, nil
	}

	return verification.Evidence{Kind: verification.EvidenceNone}, nil
}

func firstFile(form *multipart.Form, key string) *multipart.FileHeader {
	files := form.File[key]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// challengeFromFilename maps "look-left.jpg" to its challenge tag. Unknown
// names come back empty and the frame is treated as untagged.
func challengeFromFilename(filename string) entity.Challenge {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}

	for _, challenge := range entity.ChallengeCatalog {
		if strings.EqualFold(base, string(challenge)) {
			return challenge
		}
	}

	return ""
}

func parseActionsLog(raw string) []entity.ClientAction {
	if raw == "" {
		return nil
	}

	var actions []entity.ClientAction
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(raw, &actions); err != nil {
		return nil
	}

	return actions
}
