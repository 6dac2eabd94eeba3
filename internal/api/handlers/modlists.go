package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/utils"
)

// GET /api/v1/modlists
// ListModlists godoc
// @Summary List modlists
// @Description Lists unmuted modlists with mod counts and readiness. Pass muted=true for the muted ones.
// @Tags Modlists
// @Produce json
// @Param muted query bool false "List muted modlists instead"
// @Success 200 {object} utils.Payload{data=[]catalog.ModlistSummary}
// @Failure 500 {object} utils.Payload
// @Router /api/v1/modlists [get]
func (h *Handler) ListModlists(w http.ResponseWriter, r *http.Request) {
	muted := r.URL.Query().Get("muted") == "true"

	summaries, err := h.Engine.Modlists(r.Context(), muted)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.OK(w, "Modlists retrieved successfully", summaries)
}

// GET /api/v1/modlists/{id}
// GetModlist godoc
// @Summary Modlist details
// @Description Returns the modlist, every mod its manifest references and the files still required to install it.
// @Tags Modlists
// @Produce json
// @Param id path int true "Modlist ID"
// @Success 200 {object} utils.Payload{data=catalog.ModlistDetails}
// @Failure 400 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/modlists/{id} [get]
func (h *Handler) GetModlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	details, err := h.Engine.ModlistDetails(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.OK(w, "Modlist retrieved successfully", details)
}

// POST /api/v1/modlists/{id}/mute
// ToggleMuted godoc
// @Summary Toggle whether a modlist is muted
// @Tags Modlists
// @Produce json
// @Param id path int true "Modlist ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/modlists/{id}/mute [post]
func (h *Handler) ToggleMuted(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	modlists := h.Engine.Catalog().Modlists

	ml, err := modlists.FindByID(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if ml == nil {
		utils.Fail(w, http.StatusNotFound, "Modlist not found")
		return
	}
	if err := modlists.SetMuted(ctx, id, !ml.Muted); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.OK(w, "Modlist updated", map[string]any{"id": id, "muted": !ml.Muted})
}

type renameRequest struct {
	Name string `json:"name"`
}

// PATCH /api/v1/modlists/{id}
// RenameModlist godoc
// @Summary Rename a modlist
// @Description Changes the display name. The stored filename is not affected.
// @Tags Modlists
// @Accept json
// @Produce json
// @Param id path int true "Modlist ID"
// @Param body body renameRequest true "New name"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/modlists/{id} [patch]
func (h *Handler) RenameModlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		utils.Fail(w, http.StatusBadRequest, "A non-empty name is required")
		return
	}
	name := strings.TrimSpace(req.Name)

	ctx := r.Context()
	modlists := h.Engine.Catalog().Modlists
	ml, err := modlists.FindByID(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if ml == nil {
		utils.Fail(w, http.StatusNotFound, "Modlist not found")
		return
	}
	if err := modlists.Rename(ctx, id, name); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.OK(w, "Modlist renamed", map[string]any{"id": id, "name": name})
}

// GET /api/v1/modlists/{id}/download
// DownloadModlist godoc
// @Summary Download a modlist package
// @Tags Modlists
// @Produce application/octet-stream
// @Param id path int true "Modlist ID"
// @Success 200 {file} file
// @Success 302 "Redirect to a presigned URL"
// @Failure 404 {object} utils.Payload
// @Router /api/v1/modlists/{id}/download [get]
func (h *Handler) DownloadModlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ml, err := h.Engine.Catalog().Modlists.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if ml == nil || !ml.Available {
		utils.Fail(w, http.StatusNotFound, "Modlist not stored")
		return
	}

	h.serveBlob(w, r, catalog.KindModlist.Bucket(), ml.Filename, ml.ContentHash)
}
