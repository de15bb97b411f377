package verification

import (
	"VidaSegura/pkg/response"
	"net/http"
)

var (
	ErrUserNotFound       = response.NewError(http.StatusNotFound, "user not found")
	ErrRateLimited        = response.NewError(http.StatusTooManyRequests, "verification attempt limit reached, try again later")
	ErrDocumentMissing    = response.NewError(http.StatusBadRequest, "document file missing from request")
	ErrImageProcessing    = response.NewError(http.StatusBadRequest, "uploaded file is not a decodable image")
	ErrSessionNotFound    = response.NewError(http.StatusNotFound, "liveness session not found")
	ErrInternal           = response.NewError(http.StatusInternalServerError, "verification failed unexpectedly")
	ErrInvalidFileType    = response.NewError(http.StatusBadRequest, "invalid file type")
	ErrReferenceNotStored = response.NewError(http.StatusServiceUnavailable, "temporary store unavailable")
)
