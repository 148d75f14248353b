package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/urbanbyte/pesquisa/internal/auth"
	"github.com/urbanbyte/pesquisa/internal/config"
	"github.com/urbanbyte/pesquisa/internal/directory"
	httpmiddleware "github.com/urbanbyte/pesquisa/internal/http/middleware"
	"github.com/urbanbyte/pesquisa/internal/survey"
)

// Handler concentra as dependências da camada HTTP.
type Handler struct {
	cfg            *config.Config
	store          *directory.Store
	jwt            *auth.JWTManager
	sessions       *auth.SessionStore
	surveySessions *survey.Manager
	publicLimiter  *httpmiddleware.RateLimiter
	authLimiter    *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado sobre o diretório informado.
func NewRouter(cfg *config.Config, store *directory.Store) http.Handler {
	h := &Handler{
		cfg:            cfg,
		store:          store,
		jwt:            auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL),
		sessions:       auth.NewSessionStore(cfg.JWTRefreshTTL),
		surveySessions: survey.NewManager(store),
		publicLimiter:  httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst, cfg.RateLimitPublic.MaxIdle),
		authLimiter:    httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst, cfg.RateLimitAuth.MaxIdle),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	r.Use(httpmiddleware.Logging)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.IPRateLimit(h.publicLimiter))
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/refresh", h.handleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.Auth(h.jwt))
		r.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		r.Post("/auth/logout", h.handleLogout)
		r.Get("/me", h.handleMe)

		r.Route("/clients", func(r chi.Router) {
			r.With(httpmiddleware.RequireSuperAdmin).Post("/", h.handleCreateClient)
			r.With(httpmiddleware.RequireSuperAdmin).Get("/", h.handleListClients)

			r.Route("/{clientID}", func(r chi.Router) {
				r.Use(httpmiddleware.ClientScope)

				r.With(httpmiddleware.RequireRole("client-admin")).
					Post("/survey-persons", h.handleCreateSurveyPerson)
				r.With(httpmiddleware.RequireRole("client-admin", "super-admin")).
					Get("/survey-persons", h.handleListSurveyPersons)

				r.With(httpmiddleware.RequireRole("client-admin")).
					Post("/questions", h.handleCreateQuestion)
				r.Get("/questions", h.handleListQuestions)
			})
		})

		r.Route("/submissions", func(r chi.Router) {
			r.With(httpmiddleware.RequireRole("survey-person")).Post("/", h.handleCreateSubmission)
			r.Get("/", h.handleListSubmissions)
		})

		survey.Mount(r, survey.NewHandler(store, h.surveySessions))
	})

	return r
}
