package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/repositories"
	"github.com/rohits-web03/modvault/internal/utils"
)

// Handler serves the catalog API. Every dependency is injected.
type Handler struct {
	Engine         *catalog.Engine
	Validator      *catalog.Validator
	Store          repositories.BlobStore
	Bootstrap      *catalog.Bootstrapper
	MaxUploadBytes int64
	Log            *zap.SugaredLogger
}

func New(engine *catalog.Engine, store repositories.BlobStore, bootstrap *catalog.Bootstrapper, maxUploadBytes int64, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Engine:         engine,
		Validator:      catalog.NewValidator(engine.Catalog(), store),
		Store:          store,
		Bootstrap:      bootstrap,
		MaxUploadBytes: maxUploadBytes,
		Log:            log,
	}
}

// outcomeStatus maps a validation decision to its HTTP status.
func outcomeStatus(d catalog.Decision) int {
	switch d {
	case catalog.NotModified:
		return http.StatusNotModified
	case catalog.RejectUserError:
		return http.StatusBadRequest
	case catalog.RejectNeedsBootstrap:
		return http.StatusConflict
	case catalog.RejectCorruptedState:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrModHasDiskFilename):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrIntegrity), errors.Is(err, catalog.ErrManifest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrDuplicateContent):
		return http.StatusNotModified
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err with the status its kind maps to. Server-side
// failures are logged and not echoed to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusNotModified {
		w.WriteHeader(status)
		return
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.Log.Errorw("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "Internal server error"
	}
	utils.Fail(w, status, message)
}

// pathID parses the {id} path value.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
