// Package api is the dev backend's HTTP surface: a chi router over the
// in-memory store that speaks the same REST contract as the production
// DreamTracer API.
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/dmitrijs2005/dreamtracer/internal/server/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router        chi.Router
	store         *store.Store
	logger        logging.Logger
	secretKey     []byte
	tokenValidity time.Duration
	online        atomic.Bool
}

func NewServer(st *store.Store, secretKey []byte, tokenValidity time.Duration, logger logging.Logger) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		store:         st,
		logger:        logger,
		secretKey:     secretKey,
		tokenValidity: tokenValidity,
	}
	s.online.Store(true)
	s.routes()
	return s
}

// SetOnline toggles a simulated outage: while offline every request is
// answered with 503.
func (s *Server) SetOnline(online bool) {
	s.online.Store(online)
}

func (s *Server) Store() *store.Store { return s.store }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.availability)

	r.Get("/health", s.handleHealth)
	r.Head("/health", s.handleHealth)

	r.Post("/auth/firebase-auth", s.handleFirebaseAuth)
	r.Get("/analysis/task/{id}", s.handleTaskStatus)
	r.Get("/visualization/styles", s.handleStyles)
	r.Get("/static/*", s.handleStatic)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/auth/onboarding/complete", s.handleCompleteOnboarding)

		r.Route("/dreams", func(r chi.Router) {
			r.Post("/", s.handleCreateDream)
			r.Get("/", s.handleListDreams)
			r.Post("/sync", s.handleSyncDream)
			r.Post("/upload-audio", s.handleUploadAudio)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDream)
				r.Put("/", s.handleUpdateDream)
				r.Delete("/", s.handleDeleteDream)
				r.Post("/analyze", s.handleAnalyze)
				r.Get("/analysis", s.handleGetAnalysis)
				r.Post("/analysis", s.handleSaveAnalysis)
				r.Post("/visualize", s.handleVisualize)
				r.Get("/visualizations", s.handleDreamVisualizations)
			})
		})

		r.Get("/visualizations/gallery", s.handleGallery)
		r.Delete("/visualizations/{id}", s.handleDeleteVisualization)

		r.Post("/community/posts", s.handleCreatePost)
		r.Get("/community/posts", s.handleListPosts)

		r.Get("/analysis/insights/daily", s.handleDailyInsight)
		r.Get("/analysis/patterns", s.handlePatterns)
		r.Get("/analysis/network", s.handleNetwork)

		r.Get("/user/plan", s.handlePlan)
		r.Post("/user/usage", s.handleUsage)
	})
}
