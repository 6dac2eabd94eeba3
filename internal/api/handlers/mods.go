package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/models"
	"github.com/rohits-web03/modvault/internal/repositories"
	"github.com/rohits-web03/modvault/internal/utils"
)

const presignExpiry = 15 * time.Minute

type modView struct {
	models.Mod
	Status models.ModStatus `json:"status"`
}

type modDetails struct {
	modView
	Modlists     []models.Modlist        `json:"modlists"`
	Associations []models.ModAssociation `json:"associations"`
}

// GET /api/v1/mods
// ListMods godoc
// @Summary List mods
// @Tags Mods
// @Produce json
// @Param filter query string false "unavailable or lost"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/mods [get]
func (h *Handler) ListMods(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ModFilter(r.URL.Query().Get("filter"))
	switch filter {
	case repositories.ModsAll, repositories.ModsUnavailable, repositories.ModsLostForever:
	default:
		utils.Fail(w, http.StatusBadRequest, fmt.Sprintf("Unknown filter %q", filter))
		return
	}

	mods, err := h.Engine.Catalog().Mods.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views := make([]modView, 0, len(mods))
	for _, m := range mods {
		views = append(views, modView{Mod: m, Status: m.Status()})
	}

	utils.OK(w, "Mods retrieved successfully", views)
}

// GET /api/v1/mods/{id}
// GetMod godoc
// @Summary Mod details
// @Description Returns the mod, the modlists that reference it and how each of them declares it.
// @Tags Mods
// @Produce json
// @Param id path int true "Mod ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/mods/{id} [get]
func (h *Handler) GetMod(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	cat := h.Engine.Catalog()

	mod, err := cat.Mods.FindByID(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if mod == nil {
		h.writeError(w, r, fmt.Errorf("mod %d: %w", id, catalog.ErrNotFound))
		return
	}
	modlists, err := cat.Mods.Modlists(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	assocs, err := cat.Associations.ListByMod(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Mod retrieved successfully",
		Data: modDetails{
			modView:      modView{Mod: *mod, Status: mod.Status()},
			Modlists:     modlists,
			Associations: assocs,
		},
	})
}

// POST /api/v1/mods/{id}/lost-forever
// ToggleLostForever godoc
// @Summary Toggle whether a missing mod is lost forever
// @Description Fails with 400 when the mod is stored.
// @Tags Mods
// @Produce json
// @Param id path int true "Mod ID"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/mods/{id}/lost-forever [post]
func (h *Handler) ToggleLostForever(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	mod, err := h.Engine.ToggleLostForever(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.OK(w, "Mod updated", modView{Mod: *mod, Status: mod.Status()})
}

// GET /api/v1/mods/{id}/download
// DownloadMod godoc
// @Summary Download a stored mod
// @Tags Mods
// @Produce application/octet-stream
// @Param id path int true "Mod ID"
// @Success 200 {file} file
// @Success 302 "Redirect to a presigned URL"
// @Failure 404 {object} utils.Payload
// @Router /api/v1/mods/{id}/download [get]
func (h *Handler) DownloadMod(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	mod, err := h.Engine.Catalog().Mods.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if mod == nil || !mod.Available() {
		utils.Fail(w, http.StatusNotFound, "Mod not stored")
		return
	}

	h.serveBlob(w, r, repositories.BucketMods, *mod.PhysicalName, mod.ContentHash)
}

// presigner is implemented by stores that can hand out direct links.
type presigner interface {
	PresignGet(ctx context.Context, bucket repositories.Bucket, name string, expires time.Duration) (string, error)
}

func (h *Handler) serveBlob(w http.ResponseWriter, r *http.Request, bucket repositories.Bucket, name, contentHash string) {
	ctx := r.Context()

	if p, ok := h.Store.(presigner); ok {
		url, err := p.PresignGet(ctx, bucket, name, presignExpiry)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	rc, err := h.Store.Open(ctx, bucket, name)
	if errors.Is(err, repositories.ErrBlobNotFound) {
		h.Log.Warnw("Cataloged file is missing from storage", "bucket", bucket, "file", name)
		utils.Fail(w, http.StatusNotFound, "File missing from storage, run a bootstrap")
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("ETag", utils.ETag(contentHash))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "application/octet-stream")

	if f, ok := rc.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			http.ServeContent(w, r, name, info.ModTime(), f)
			return
		}
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warnw("Download interrupted", "file", name, "error", err)
	}
}
