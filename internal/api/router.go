package api

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/rohits-web03/modvault/docs"
	"github.com/rohits-web03/modvault/internal/api/handlers"
	"github.com/rohits-web03/modvault/internal/api/middleware"
)

func SetupRouter(h *handlers.Handler, corsOptions cors.Options, log *zap.SugaredLogger) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(corsOptions)

	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- UPLOADS ----------
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /submit/modlist/{filename}", h.SubmitModlist)
	apiMux.HandleFunc("POST /submit/mod/{filename}", h.SubmitMod)
	apiMux.HandleFunc("POST /upload", h.UploadFile)

	// ---------- CATALOG ----------
	apiMux.HandleFunc("GET /modlists", h.ListModlists)
	apiMux.HandleFunc("GET /modlists/{id}", h.GetModlist)
	apiMux.HandleFunc("PATCH /modlists/{id}", h.RenameModlist)
	apiMux.HandleFunc("POST /modlists/{id}/mute", h.ToggleMuted)
	apiMux.HandleFunc("GET /modlists/{id}/download", h.DownloadModlist)

	apiMux.HandleFunc("GET /mods", h.ListMods)
	apiMux.HandleFunc("GET /mods/{id}", h.GetMod)
	apiMux.HandleFunc("POST /mods/{id}/lost-forever", h.ToggleLostForever)
	apiMux.HandleFunc("GET /mods/{id}/download", h.DownloadMod)

	// ---------- RECONCILIATION ----------
	apiMux.HandleFunc("POST /bootstrap", h.StartBootstrap)
	apiMux.HandleFunc("POST /bootstrap/modlists", h.StartBootstrapModlists)
	apiMux.HandleFunc("POST /bootstrap/mods", h.StartBootstrapMods)
	apiMux.HandleFunc("GET /bootstrap", h.BootstrapStatus)

	mainMux.Handle("/api/v1/",
		http.StripPrefix("/api/v1", apiMux),
	)

	log.Info("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(log)(handler)
	return handler
}
