// Package server implements the HTTP API in front of the matching core.
//
// Routes:
//
//	GET  /health
//	GET  /jobs                                  → list active feed postings
//	GET  /users/{id}/recommendations            → list non-dismissed, best first
//	POST /users/{id}/recommendations/generate   → score the feed and persist a batch
//	POST /recommendations/{id}/dismiss          → irreversibly dismiss one
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vetworks/vetmatch/internal/jobs"
	"github.com/vetworks/vetmatch/internal/logger"
	"github.com/vetworks/vetmatch/internal/matching"
	"github.com/vetworks/vetmatch/internal/store"
)

const (
	// Redis pub/sub channels consumed by downstream notifiers.
	EventRecommendationsGenerated = "EVENT_RECOMMENDATIONS_GENERATED"
	EventRecommendationDismissed  = "EVENT_RECOMMENDATION_DISMISSED"
)

// Repository is the narrow slice of the store the handlers need.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (*jobs.Profile, error)
	ListActiveJobs(ctx context.Context) (*jobs.Jobs, error)
	SaveRecommendations(ctx context.Context, recs []*jobs.Recommendation) ([]*jobs.Recommendation, error)
	ListRecommendations(ctx context.Context, userID string) ([]*jobs.Recommendation, error)
	DismissRecommendation(ctx context.Context, id string) error
}

// Handler holds shared dependencies for all routes. The redis client may be
// nil, in which case event publication is skipped.
type Handler struct {
	repo    Repository
	matcher *matching.Matcher
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(repo Repository, matcher *matching.Matcher, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, matcher: matcher, rdb: rdb, logger: logger}
}

// RegisterRoutes mounts all API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /jobs", h.listJobs)
	mux.HandleFunc("GET /users/{id}/recommendations", h.listRecommendations)
	mux.HandleFunc("POST /users/{id}/recommendations/generate", h.generateRecommendations)
	mux.HandleFunc("POST /recommendations/{id}/dismiss", h.dismissRecommendation)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{"status": "ok", "service": "vetmatch"})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	feed, err := h.repo.ListActiveJobs(r.Context())
	if err != nil {
		h.logger.Error("listing job feed", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, feed.Items)
}

func (h *Handler) listRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	recs, err := h.repo.ListRecommendations(r.Context(), userID)
	if err != nil {
		h.logger.Error("listing recommendations", zap.String("user_id", userID), zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []*jobs.Recommendation{}
	}
	jsonOK(w, recs)
}

func (h *Handler) generateRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	limit := matching.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = v
	}

	profile, err := h.repo.GetProfile(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("loading profile", zap.String("user_id", userID), zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	feed, err := h.repo.ListActiveJobs(r.Context())
	if err != nil {
		h.logger.Error("loading job feed", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	recs := h.matcher.Generate(profile, feed, limit)

	saved, err := h.repo.SaveRecommendations(r.Context(), recs)
	if err != nil {
		h.logger.Error("saving recommendations", zap.String("user_id", userID), zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("generated recommendations",
		zap.String("user_id", userID),
		zap.Int("scored_postings", feed.Len()),
		zap.Int("recommendations", len(saved)),
	)

	if len(saved) > 0 {
		logger.WithMatchFields(h.logger, userID, saved[0].JobID).
			Debug("top match", zap.Int("score", saved[0].Score))
	}

	h.publish(r.Context(), EventRecommendationsGenerated, map[string]any{
		"userId": userID,
		"count":  len(saved),
	})

	jsonOK(w, saved)
}

func (h *Handler) dismissRecommendation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.repo.DismissRecommendation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "recommendation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("dismissing recommendation", zap.String("id", id), zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	h.publish(r.Context(), EventRecommendationDismissed, map[string]any{
		"recommendationId": id,
	})

	jsonOK(w, map[string]bool{"dismissed": true})
}

func (h *Handler) publish(ctx context.Context, channel string, payload map[string]any) {
	if h.rdb == nil {
		return
	}
	event, _ := json.Marshal(payload)
	if err := h.rdb.Publish(ctx, channel, event).Err(); err != nil {
		h.logger.Warn("publish event failed", zap.String("channel", channel), zap.Error(err))
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
