package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/HanTheDev/review-reply-gateway/internal/apperr"
	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/db"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
	"github.com/HanTheDev/review-reply-gateway/internal/reply"
)

type ProfileStore interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateUserProfile(ctx context.Context, userID string, profile models.UserProfile) error
}

type ProfileHandler struct {
	store    ProfileStore
	validate *validator.Validate
}

func NewProfileHandler(store ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("business_type", func(fl validator.FieldLevel) bool {
		return reply.ValidBusinessType(fl.Field().String())
	})
	v.RegisterValidation("brand_tone", func(fl validator.FieldLevel) bool {
		return reply.ValidBrandTone(fl.Field().String())
	})
	return v
}

const msgProfileUpdated = "프로필이 업데이트되었습니다."

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type profileResponse struct {
	Success bool                `json:"success"`
	Profile *models.UserProfile `json:"profile"`
}

// Get returns the caller's profile with business type and tone defaulted.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.New(apperr.ErrUnauthorized, apperr.MsgAuthRequired))
		return
	}

	profile, err := h.store.GetUserProfile(r.Context(), claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		apperr.Write(w, apperr.New(apperr.ErrNotFound, apperr.MsgUserNotFound))
		return
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", claims.UserID).Error("failed to load profile")
		apperr.Write(w, err)
		return
	}

	withDefaults := profile.WithDefaults()
	apperr.WriteJSON(w, http.StatusOK, profileResponse{Success: true, Profile: &withDefaults})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.New(apperr.ErrUnauthorized, apperr.MsgAuthRequired))
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		apperr.Write(w, apperr.New(apperr.ErrValidation, apperr.MsgBadRequest))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.Write(w, apperr.New(apperr.ErrValidation, profileMessage(err)))
		return
	}

	profile := models.UserProfile{
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		BrandTone:    req.BrandTone,
	}
	err := h.store.UpdateUserProfile(r.Context(), claims.UserID, profile)
	if errors.Is(err, db.ErrNotFound) {
		apperr.Write(w, apperr.New(apperr.ErrNotFound, apperr.MsgUserNotFound))
		return
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", claims.UserID).Error("failed to update profile")
		apperr.Write(w, apperr.Wrap(err, apperr.MsgProfileFailed))
		return
	}

	logger.LogEvent(logrus.InfoLevel, "profile updated", logrus.Fields{
		"user_id":       claims.UserID,
		"business_type": profile.BusinessType,
		"brand_tone":    profile.BrandTone,
	})
	apperr.WriteJSON(w, http.StatusOK, messageResponse{Success: true, Message: msgProfileUpdated})
}

// profileMessage picks one message for a failed validation. Missing fields
// are reported before length and enum problems.
func profileMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.MsgBadRequest
	}

	rank := map[string]int{
		"required":      0,
		"max":           1,
		"business_type": 2,
		"brand_tone":    3,
	}
	messages := []string{
		apperr.MsgProfileRequired,
		apperr.MsgNameTooLong,
		apperr.MsgBadBusinessType,
		apperr.MsgBadBrandTone,
	}

	best := len(messages)
	for _, fe := range verrs {
		if r, ok := rank[fe.Tag()]; ok && r < best {
			best = r
		}
	}
	if best == len(messages) {
		return apperr.MsgBadRequest
	}
	return messages[best]
}
