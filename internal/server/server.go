// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"lifeline/internal/adapter/geoip"
	"lifeline/internal/config"
	"lifeline/internal/server/handlers"
	"lifeline/internal/service/directory"
	"lifeline/internal/service/locate"
	"lifeline/internal/service/session"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	eventsTopic string,
	natsConn *nats.Conn,
	catalog *directory.Catalog,
	resolver *locate.Resolver,
	sessions *session.Manager,
	store locate.LocationStore,
	geoIP *geoip.Locator,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	directoryHandler := handlers.NewDirectoryHandler(catalog)
	locateHandler := handlers.NewLocateHandler(resolver, sessions, store, geoIP)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Hierarchy API
			r.Get("/regions", directoryHandler.GetRegions)
			r.Get("/provinces", directoryHandler.GetProvinces)
			r.Get("/cities", directoryHandler.GetCities)

			// Directory API
			r.Get("/hotlines", directoryHandler.GetHotlines)

			// Location API
			r.Route("/location", func(r chi.Router) {
				r.Post("/resolve", locateHandler.ResolveLocation)
				r.Get("/", locateHandler.GetLocation)
				r.Put("/", locateHandler.UpdateLocation)
			})

			// Dataset administration
			r.Post("/datasets/reload", directoryHandler.ReloadDatasets)
		})
	})

	// WebSocket endpoint for directory event streaming
	router.Get("/ws/updates", handlers.UpdatesWebSocketHandler(natsConn, eventsTopic))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
