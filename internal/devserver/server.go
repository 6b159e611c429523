// Package devserver реализует бэкенд в памяти процесса для локальной разработки и тестов клиента.
// Реализует весь REST-контракт /api/v1: JWT (HS256), bcrypt, рестораны, избранное и отзывы.
package devserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// APIPrefix задает префикс версии, под которым смонтированы маршруты.
	APIPrefix = "/api/v1"

	defaultTokenTTL = 24 * time.Hour
)

// Options содержит настройки dev-сервера.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Seed наполняет хранилище тестовыми ресторанами.
	Seed bool
}

// Server объединяет обработчики и данные dev-сервера.
type Server struct {
	repo   *repository
	tokens *tokens
	router *chi.Mux
}

// New создает сервер с пустым хранилищем пользователей.
func New(opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	repo := newRepository()
	if opts.Seed {
		seed(repo)
	}
	s := &Server{
		repo:   repo,
		tokens: &tokens{secret: []byte(opts.JWTSecret), ttl: opts.TokenTTL, repo: repo},
	}
	s.router = s.routes()
	return s
}

// Handler возвращает корневой обработчик.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	r.Route(APIPrefix, func(r chi.Router) {
		// Публичные маршруты
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/forgot-password", s.forgotPassword)
		r.Post("/auth/reset-password", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.tokens.authenticator)

			r.Put("/auth/logout", s.logout)
			r.Get("/auth/refresh", s.refresh)

			r.Route("/restaurants", func(r chi.Router) {
				r.Get("/", s.listRestaurants)
				r.Get("/chains", s.chainRestaurants)
				r.Get("/search", s.searchRestaurants)
				r.Get("/nearby", s.nearbyRestaurants)
				r.Get("/{id}", s.restaurantDetail)
				r.Get("/{id}/reviews", s.listReviews)
				r.Post("/{id}/reviews", s.addReview)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", s.listFavorites)
				r.Post("/{restaurantID}", s.addFavorite)
				r.Delete("/{restaurantID}", s.removeFavorite)
			})

			r.Put("/reviews/{id}", s.updateReview)
			r.Delete("/reviews/{id}", s.deleteReview)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", s.profile)
				r.Put("/profile", s.updateProfile)
				r.Patch("/change-password", s.changePassword)
				r.Delete("/account", s.deleteAccount)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Kaynak bulunamadı", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "İzin verilmeyen yöntem", nil)
	})
	return r
}

// requestLogger пишет одну запись slog на запрос.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.Info("HTTP запрос",
				"request_id", middleware.GetReqID(r.Context()),
				"client_request_id", r.Header.Get("X-Request-ID"),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
