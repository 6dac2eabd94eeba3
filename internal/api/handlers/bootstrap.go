package handlers

import (
	"net/http"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/utils"
)

// POST /api/v1/bootstrap
// StartBootstrap godoc
// @Summary Reconcile the catalog with stored files
// @Description Starts a background scan of modlists and mods. The scan cannot be cancelled.
// @Tags Bootstrap
// @Produce json
// @Success 202 {object} utils.Payload
// @Router /api/v1/bootstrap [post]
func (h *Handler) StartBootstrap(w http.ResponseWriter, r *http.Request) {
	h.startBootstrap(w, r, catalog.ScopeAll)
}

// POST /api/v1/bootstrap/modlists
// StartBootstrapModlists godoc
// @Summary Reconcile modlists with stored packages
// @Tags Bootstrap
// @Produce json
// @Success 202 {object} utils.Payload
// @Router /api/v1/bootstrap/modlists [post]
func (h *Handler) StartBootstrapModlists(w http.ResponseWriter, r *http.Request) {
	h.startBootstrap(w, r, catalog.ScopeModlists)
}

// POST /api/v1/bootstrap/mods
// StartBootstrapMods godoc
// @Summary Reconcile mods with stored archives
// @Tags Bootstrap
// @Produce json
// @Success 202 {object} utils.Payload
// @Router /api/v1/bootstrap/mods [post]
func (h *Handler) StartBootstrapMods(w http.ResponseWriter, r *http.Request) {
	h.startBootstrap(w, r, catalog.ScopeMods)
}

func (h *Handler) startBootstrap(w http.ResponseWriter, r *http.Request, scope catalog.Scope) {
	h.Bootstrap.Start(r.Context(), scope)

	utils.JSONResponse(w, http.StatusAccepted, utils.Payload{
		Success: true,
		Message: string(scope) + " bootstrap started",
	})
}

// GET /api/v1/bootstrap
// BootstrapStatus godoc
// @Summary Report of the last finished bootstrap
// @Tags Bootstrap
// @Produce json
// @Success 200 {object} utils.Payload{data=catalog.Report}
// @Failure 404 {object} utils.Payload
// @Router /api/v1/bootstrap [get]
func (h *Handler) BootstrapStatus(w http.ResponseWriter, r *http.Request) {
	report := h.Bootstrap.Last()
	if report == nil {
		utils.Fail(w, http.StatusNotFound, "No bootstrap has finished yet")
		return
	}

	utils.OK(w, "Bootstrap report retrieved successfully", report)
}
