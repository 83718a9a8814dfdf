package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/iudanet/gophtodo/internal/server/handlers"
	"github.com/iudanet/gophtodo/internal/server/middleware"
	"github.com/iudanet/gophtodo/internal/server/storage"
	"github.com/iudanet/gophtodo/pkg/api"
)

// APIPrefix - все маршруты доступны и в корне, и под этим префиксом
const APIPrefix = "/api"

// allMethods кандидаты для заголовка Allow
var allMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// RouterOptions зависимости HTTP роутера
type RouterOptions struct {
	Logger               *slog.Logger
	Store                storage.Storage
	Hasher               handlers.PasswordHasher
	Tokens               TokenService
	Version              string
	AllowedOrigins       []string
	ExposeInternalErrors bool
}

// TokenService выпускает и проверяет токены сессии
type TokenService interface {
	handlers.TokenIssuer
	middleware.TokenVerifier
}

// NewRouter собирает chi роутер со всеми маршрутами и middleware
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger

	authHandler := handlers.NewAuthHandler(logger, opts.Store, opts.Hasher, opts.Tokens, opts.ExposeInternalErrors)
	todoHandler := handlers.NewTodoHandler(logger, opts.Store, opts.ExposeInternalErrors)
	healthHandler := handlers.NewHealthHandler(logger, opts.Store, opts.Version)
	authMiddleware := middleware.AuthMiddleware(logger, opts.Tokens, opts.Store, opts.ExposeInternalErrors)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.LoggingWithSkip(logger, []string{"/health", APIPrefix + "/health"}))
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     opts.AllowedOrigins,
		AllowedMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:     []string{"X-Request-Id"},
		MaxAge:             300,
		OptionsPassthrough: true,
	}))
	// Preflight и "голые" OPTIONS завершаются здесь с 200 без тела
	r.Use(middleware.OptionsOK)
	r.Use(chimw.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(methodNotAllowed)

	routes := func(r chi.Router) {
		r.Get("/", index)
		r.Get("/health", healthHandler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Get("/{id}", todoHandler.Get)
			r.Put("/{id}", todoHandler.Update)
			r.Patch("/{id}", todoHandler.Update)
			r.Delete("/{id}", todoHandler.Delete)
		})
	}

	routes(r)
	r.Route(APIPrefix, routes)

	return r
}

func index(w http.ResponseWriter, _ *http.Request) {
	_ = handlers.WriteJSON(w, http.StatusOK, api.IndexResponse{OK: true, Message: "API running", Base: APIPrefix})
}

// methodNotAllowed отвечает 405 с заголовком Allow, собранным по дереву маршрутов
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.Routes != nil {
		var allowed []string
		for _, m := range allMethods {
			if rctx.Routes.Match(chi.NewRouteContext(), m, r.URL.Path) {
				allowed = append(allowed, m)
			}
		}
		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
	}

	handlers.WriteError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method))
}
