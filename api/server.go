/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request, included in log lines
  2. RequestLogger:  One zerolog line per request
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. CORS:           Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/settings         Live rates
  /api/calculate        Dry-run pricing
  /api/records/*        Record book
  /api/summary|months   Aggregation
  /api/export           File download
  /api/settlements      Archived cycles
  /api/import/legacy    Old tracker import
  /api/reset            Database reset
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from web/dist/ when present, falling back to
  index.html for client-side routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/Chung0221/salary-tracker/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})

		r.Post("/calculate", h.Calculate)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", h.ListRecords)
			r.Post("/", h.CreateRecord)
			r.Post("/delete", h.DeleteRecords)
			r.Get("/{id}", h.GetRecord)
			r.Delete("/{id}", h.DeleteRecord)
		})

		r.Get("/summary", h.GetSummary)
		r.Get("/months", h.ListMonths)
		r.Get("/export", h.Export)

		r.Route("/settlements", func(r chi.Router) {
			r.Get("/", h.ListSettlements)
			r.Post("/", h.Settle)
		})

		r.Post("/import/legacy", h.ImportLegacy)
		r.Post("/reset", h.ResetDatabase)
	})

	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Salary Tracker</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Salary Tracker API</h1>
<p>The frontend is not built yet.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/settings">/api/settings</a> - Live rates</li>
<li><a href="/api/records">/api/records</a> - Records</li>
<li><a href="/api/summary">/api/summary</a> - Totals</li>
<li><a href="/api/export">/api/export</a> - TSV export</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
