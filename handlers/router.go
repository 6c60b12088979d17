package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/auth"
)

const requestTimeout = 60 * time.Second

// Routes collects everything the HTTP surface is built from. Nil handlers
// leave their routes unregistered.
type Routes struct {
	Models   *ModelHandler
	Archives *ArchiveHandler
	Auth     *AuthHandler
	Setup    *SetupHandler
	Uploads  *UploadHandler
	Health   http.HandlerFunc
	Sessions auth.SessionProvider
	// Assets maps a route segment under /api (e.g. "uploads") to the directory it serves.
	Assets      map[string]string
	CORSOrigins []string
	Log         logrus.FieldLogger
}

func NewRouter(rt Routes) chi.Router {
	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   rt.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(rt.Log))
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(corsHandler.Handler)

	if rt.Health != nil {
		r.Get("/healthz", rt.Health)
	}
	r.Handle("/metrics", promhttp.Handler())

	requireSession := RequireSession(rt.Sessions, rt.Log)

	r.Route("/api", func(r chi.Router) {
		if rt.Models != nil {
			r.Route("/models", func(r chi.Router) {
				r.Get("/", rt.Models.ListModels)
				r.With(requireSession).Post("/", rt.Models.CreateModel)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", rt.Models.GetModel)
					r.With(requireSession).Patch("/", rt.Models.UpdateModel)
					r.With(requireSession).Delete("/", rt.Models.DeleteModel)
					if rt.Archives != nil {
						r.Get("/archives", rt.Archives.ListModelArchives)
						r.With(requireSession).Post("/archives", rt.Archives.CreateArchive)
					}
				})
			})
		}

		if rt.Archives != nil {
			r.Route("/archives/{id}", func(r chi.Router) {
				r.Get("/", rt.Archives.GetArchive)
				r.With(requireSession).Patch("/", rt.Archives.UpdateArchive)
				r.With(requireSession).Delete("/", rt.Archives.DeleteArchive)
			})
		}

		if rt.Auth != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", rt.Auth.Login)
				r.Post("/logout", rt.Auth.Logout)
				r.Get("/session", rt.Auth.CurrentSession)
			})
		}

		if rt.Setup != nil {
			r.Post("/setup", rt.Setup.CreateFirstAdmin)
		}

		if rt.Uploads != nil {
			r.With(requireSession).Post("/uploads", rt.Uploads.UploadImages)
		}

		for segment, dir := range rt.Assets {
			r.Get("/"+segment+"/*", AssetServer(dir, rt.Log))
		}
	})

	return r
}
