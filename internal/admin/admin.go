package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/HanTheDev/review-reply-gateway/internal/apperr"
	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

type QuotaService interface {
	Init(ctx context.Context, userID string, limits models.QuotaLimits) error
	Stats(ctx context.Context, userID string) (*models.UsageStats, error)
}

type CacheStatsReader interface {
	GetCacheStats(ctx context.Context) (*models.CacheStats, error)
}

type AdminHandler struct {
	quota QuotaService
	cache CacheStatsReader
}

func NewAdminHandler(quota QuotaService, cache CacheStatsReader) *AdminHandler {
	return &AdminHandler{quota: quota, cache: cache}
}

// RegisterRoutes mounts /admin behind authenticate and the admin role guard.
func (h *AdminHandler) RegisterRoutes(router *mux.Router, authenticate mux.MiddlewareFunc) {
	sub := router.PathPrefix("/admin").Subrouter()
	sub.Use(authenticate, auth.RequireRole(models.RoleSuperAdmin, models.RoleSubAdmin))

	// Quotas and usage
	sub.HandleFunc("/users/{id}/quota", h.InitQuota).Methods("POST")
	sub.HandleFunc("/users/{id}/usage", h.GetUserUsage).Methods("GET")

	// Cache
	sub.HandleFunc("/cache/stats", h.GetCacheStats).Methods("GET")
}

func userIDVar(r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	return id, id != ""
}

func (h *AdminHandler) InitQuota(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDVar(r)
	if !ok {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgBadRequest))
		return
	}

	// An empty body takes the default limits.
	var limits models.QuotaLimits
	if err := json.NewDecoder(r.Body).Decode(&limits); err != nil && !errors.Is(err, io.EOF) {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgBadRequest))
		return
	}
	if limits.DailyLimit < 0 || limits.MonthlyReplyLimit < 0 || limits.MonthlyTokenLimit < 0 {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgBadRequest))
		return
	}

	if err := h.quota.Init(r.Context(), userID, limits); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("failed to initialize quota")
		apperr.Write(w, err)
		return
	}

	claims, _ := auth.GetUserFromContext(r.Context())
	logger.LogEvent(logrus.InfoLevel, "quota initialized", logrus.Fields{
		"user_id":  userID,
		"admin_id": claims.UserID,
	})

	apperr.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user_id": userID,
	})
}

func (h *AdminHandler) GetUserUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDVar(r)
	if !ok {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgBadRequest))
		return
	}

	stats, err := h.quota.Stats(r.Context(), userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("failed to load usage")
		apperr.Write(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user_id": userID,
		"stats":   stats,
	})
}

func (h *AdminHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.GetCacheStats(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to get cache stats")
		apperr.Write(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}
