package handler

import (
	"context"
	"net/http"

	"github.com/HanTheDev/review-reply-gateway/internal/apperr"
	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

type StatsReader interface {
	Stats(ctx context.Context, userID string) (*models.UsageStats, error)
}

type UsageHandler struct {
	quota StatsReader
}

func NewUsageHandler(quota StatsReader) *UsageHandler {
	return &UsageHandler{quota: quota}
}

type usageResponse struct {
	Success bool               `json:"success"`
	Stats   *models.UsageStats `json:"stats"`
}

// Stats serves GET /usage/stats for the calling user.
func (h *UsageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.New(apperr.ErrUnauthorized, apperr.MsgAuthRequired))
		return
	}

	stats, err := h.quota.Stats(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", claims.UserID).Error("failed to load usage stats")
		apperr.Write(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, usageResponse{Success: true, Stats: stats})
}
