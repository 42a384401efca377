// Package server exposes the briefing HTTP API consumed by the mobile app.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bostonbriefing/briefing/internal/config"
	"github.com/bostonbriefing/briefing/internal/episode"
	"github.com/bostonbriefing/briefing/internal/logger"
)

const serviceName = "Boston Briefing API"

// maxListed caps the episodes endpoint to the recent episodes.
const maxListed = 10

// Generator produces a new episode on demand. The pipeline implements it.
type Generator interface {
	Run(ctx context.Context) (episode.Episode, error)
}

// Server routes the briefing API and serves the static site.
type Server struct {
	addr      string
	store     *episode.Store
	generator Generator
	publicDir string
	loc       *time.Location
	router    chi.Router
}

// New assembles the server. generator may be nil, in which case the
// generate endpoint reports failure.
func New(cfg config.ServerConfig, siteCfg config.SiteConfig, store *episode.Store, generator Generator) (*Server, error) {
	loc, err := time.LoadLocation(siteCfg.Timezone)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:      cfg.Addr,
		store:     store,
		generator: generator,
		publicDir: siteCfg.PublicDir,
		loc:       loc,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(cors)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/episodes", s.handleEpisodes)
	r.Get("/api/generate", s.handleGenerate)
	r.Post("/api/generate", s.handleGenerate)

	// the static site itself: player page, episodes, feed.xml
	r.Handle("/*", http.FileServer(http.Dir(s.publicDir)))

	s.router = r
	return s, nil
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("[server] listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().In(s.loc).Format(time.RFC3339),
		"service":   serviceName,
	})
}

func (s *Server) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	episodes, err := s.store.List()
	if err != nil {
		logger.Errorf("[server] list episodes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list episodes"})
		return
	}

	total := len(episodes)
	if len(episodes) > maxListed {
		episodes = episodes[:maxListed]
	}
	if episodes == nil {
		episodes = []episode.Episode{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"episodes": episodes,
		"total":    total,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "generation is not enabled on this server",
			"message": "Failed to generate episode",
		})
		return
	}

	logger.Infof("[server] generate requested")
	ep, err := s.generator.Run(r.Context())
	if err != nil {
		logger.Errorf("[server] generate failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
			"message": "Failed to generate episode",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"episode": ep,
		"message": "Episode generated successfully",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debugf("[server] write response: %v", err)
	}
}
