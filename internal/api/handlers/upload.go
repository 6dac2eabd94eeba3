package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/hash"
	"github.com/rohits-web03/modvault/internal/utils"
	"github.com/rohits-web03/modvault/internal/wabbajack"
)

// POST /api/v1/submit/modlist/{filename}
// SubmitModlist godoc
// @Summary Upload a modlist package
// @Description Streams a .wabbajack package. The xxHash64 of the body must be sent in If-None-Match.
// @Tags Upload
// @Accept application/octet-stream
// @Produce json
// @Param filename path string true "Target filename"
// @Param If-None-Match header string true "Base64 xxHash64 of the body"
// @Success 200 {object} utils.Payload "Modlist stored and cataloged"
// @Success 304 "Already stored under this name"
// @Failure 400 {object} utils.Payload "Missing hash, hash mismatch or filename conflict"
// @Failure 409 {object} utils.Payload "Catalog and storage disagree, run a bootstrap"
// @Failure 422 {object} utils.Payload "Invalid manifest or size conflict"
// @Failure 500 {object} utils.Payload "Corrupted catalog state or storage failure"
// @Router /api/v1/submit/modlist/{filename} [post]
func (h *Handler) SubmitModlist(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, catalog.KindModlist)
}

// POST /api/v1/submit/mod/{filename}
// SubmitMod godoc
// @Summary Upload a mod archive
// @Description Streams a mod archive. The xxHash64 of the body must be sent in If-None-Match.
// @Tags Upload
// @Accept application/octet-stream
// @Produce json
// @Param filename path string true "Target filename"
// @Param If-None-Match header string true "Base64 xxHash64 of the body"
// @Success 200 {object} utils.Payload "Mod stored and cataloged"
// @Success 304 "Already stored under this name"
// @Failure 400 {object} utils.Payload "Missing hash, hash mismatch or filename conflict"
// @Failure 409 {object} utils.Payload "Catalog and storage disagree, run a bootstrap"
// @Failure 422 {object} utils.Payload "Size conflict"
// @Failure 500 {object} utils.Payload "Corrupted catalog state or storage failure"
// @Router /api/v1/submit/mod/{filename} [post]
func (h *Handler) SubmitMod(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, catalog.KindMod)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, kind catalog.Kind) {
	ctx := r.Context()
	filename := r.PathValue("filename")
	claimed := utils.ParseETag(r.Header.Get("If-None-Match"))

	h.Log.Infow("Upload requested", "kind", kind, "file", filename)

	outcome, err := h.Validator.Check(ctx, kind, filename, claimed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if outcome.Decision != catalog.AcceptUpload {
		h.writeOutcome(w, claimed, outcome)
		return
	}

	tmpPath, digest, err := h.stage(w, r.Body)
	if err != nil {
		h.writeStageError(w, r, err)
		return
	}
	defer os.Remove(tmpPath)

	if digest.String() != claimed {
		utils.Fail(w, http.StatusBadRequest, fmt.Sprintf("File hash mismatch: user provided %s, we computed %s", claimed, digest.String()))
		return
	}

	h.store(w, r, kind, filename, digest, tmpPath)
}

// POST /api/v1/upload
// UploadFile godoc
// @Summary Upload a file from a browser form
// @Description Accepts a single multipart file. The hash is computed server side; .wabbajack files are cataloged as modlists, everything else as mods.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 200 {object} utils.Payload
// @Success 304 "Already stored under this name"
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Failure 422 {object} utils.Payload
// @Router /api/v1/upload [post]
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mr, err := r.MultipartReader()
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid file upload form")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			utils.Fail(w, http.StatusBadRequest, "Invalid file upload form")
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		filename := filepath.Base(part.FileName())
		kind := catalog.KindOf(filename)
		h.Log.Infow("Upload requested", "kind", kind, "file", filename, "form", true)

		tmpPath, digest, err := h.stage(w, part)
		part.Close()
		if err != nil {
			h.writeStageError(w, r, err)
			return
		}
		defer os.Remove(tmpPath)

		outcome, err := h.Validator.Check(ctx, kind, filename, digest.String())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if outcome.Decision != catalog.AcceptUpload {
			h.writeOutcome(w, digest.String(), outcome)
			return
		}

		h.store(w, r, kind, filename, digest, tmpPath)
		return
	}

	utils.Fail(w, http.StatusBadRequest, "No file provided")
}

// stage streams body into the temp directory while hashing it.
func (h *Handler) stage(w http.ResponseWriter, body io.Reader) (string, *hash.Digest, error) {
	if h.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, io.NopCloser(body), h.MaxUploadBytes)
	}

	tmpPath := filepath.Join(h.Store.TempDir(), utils.NewUploadName())
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	digest := hash.NewDigest()
	if _, err := io.Copy(io.MultiWriter(f, digest), body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	h.Log.Infow("Upload received", "bytes", digest.Size(), "hash", digest.String())
	return tmpPath, digest, nil
}

func (h *Handler) writeStageError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.Fail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit))
		return
	}
	h.writeError(w, r, err)
}

// store commits a verified upload and ingests it. Anything committed is
// removed again if ingestion fails.
func (h *Handler) store(w http.ResponseWriter, r *http.Request, kind catalog.Kind, filename string, digest *hash.Digest, tmpPath string) {
	ctx := r.Context()
	contentHash := digest.String()

	var manifest *wabbajack.Manifest
	if kind == catalog.KindModlist {
		m, err := wabbajack.Load(tmpPath)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: %v", catalog.ErrManifest, err))
			return
		}
		manifest = m
	}

	name, err := catalog.CommitUnique(ctx, h.Store, kind.Bucket(), filename, contentHash, tmpPath)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Log.Infow("File moved to final location", "kind", kind, "file", name)

	if kind == catalog.KindModlist {
		_, err = h.Engine.IngestPackage(ctx, name, contentHash, digest.Size(), manifest)
	} else {
		_, err = h.Engine.IngestContent(ctx, name, contentHash, digest.Size())
	}
	if err != nil {
		h.discard(ctx, kind, name)
		if errors.Is(err, catalog.ErrDuplicateContent) {
			h.Log.Infow("Upload raced with an identical one", "file", name, "error", err)
			w.Header().Set("ETag", utils.ETag(contentHash))
		}
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", utils.ETag(contentHash))
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File uploaded successfully",
		Data: map[string]any{
			"kind":     kind,
			"filename": name,
			"hash":     contentHash,
			"size":     digest.Size(),
		},
	})
}

func (h *Handler) discard(ctx context.Context, kind catalog.Kind, name string) {
	if err := h.Store.Remove(context.WithoutCancel(ctx), kind.Bucket(), name); err != nil {
		h.Log.Errorw("Failed to remove file after failed ingest", "file", name, "error", err)
	}
}

func (h *Handler) writeOutcome(w http.ResponseWriter, contentHash string, outcome catalog.Outcome) {
	status := outcomeStatus(outcome.Decision)
	if status == http.StatusNotModified {
		w.Header().Set("ETag", utils.ETag(contentHash))
		w.WriteHeader(status)
		return
	}
	if outcome.Decision == catalog.RejectCorruptedState || outcome.Decision == catalog.RejectNeedsBootstrap {
		h.Log.Warnw("Upload rejected", "decision", outcome.Decision, "reason", outcome.Reason)
	}
	utils.Fail(w, status, outcome.String())
}
