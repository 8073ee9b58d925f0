package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanTheDev/review-reply-gateway/internal/apperr"
	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), &auth.Claims{UserID: userID, Role: models.RoleCustomer}))
}

func TestGetProfileAppliesDefaults(t *testing.T) {
	store := newMemStore()
	store.profiles["user-1"] = &models.UserProfile{BusinessName: "달빛카페"}
	h := NewProfileHandler(store)

	rec := httptest.NewRecorder()
	h.Get(rec, withUser(httptest.NewRequest(http.MethodGet, "/user/profile", nil), "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool               `json:"success"`
		Profile models.UserProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, models.UserProfile{BusinessName: "달빛카페", BusinessType: "cafe", BrandTone: "friendly"}, body.Profile)

	rec = httptest.NewRecorder()
	h.Get(rec, withUser(httptest.NewRequest(http.MethodGet, "/user/profile", nil), "ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	longName := strings.Repeat("가", 101)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"valid", `{"business_name":"달빛","business_type":"bakery","brand_tone":"warm"}`, http.StatusOK, msgProfileUpdated},
		{"name at limit", `{"business_name":"` + strings.Repeat("가", 100) + `","business_type":"cafe","brand_tone":"casual"}`, http.StatusOK, msgProfileUpdated},
		{"missing type", `{"brand_tone":"warm"}`, http.StatusBadRequest, apperr.MsgProfileRequired},
		{"missing both", `{}`, http.StatusBadRequest, apperr.MsgProfileRequired},
		{"name too long", `{"business_name":"` + longName + `","business_type":"cafe","brand_tone":"warm"}`, http.StatusBadRequest, apperr.MsgNameTooLong},
		{"bad type", `{"business_type":"spaceship","brand_tone":"warm"}`, http.StatusBadRequest, apperr.MsgBadBusinessType},
		{"bad tone", `{"business_type":"cafe","brand_tone":"grumpy"}`, http.StatusBadRequest, apperr.MsgBadBrandTone},
		{"long name before bad type", `{"business_name":"` + longName + `","business_type":"x","brand_tone":"y"}`, http.StatusBadRequest, apperr.MsgNameTooLong},
		{"malformed", `{"business_type":`, http.StatusBadRequest, apperr.MsgBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.profiles["user-1"] = &models.UserProfile{}
			h := NewProfileHandler(store)

			req := withUser(httptest.NewRequest(http.MethodPut, "/user/profile", strings.NewReader(tt.body)), "user-1")
			rec := httptest.NewRecorder()
			h.Update(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.message, body["message"])
			} else {
				assert.Equal(t, tt.message, body["error"])
				assert.Equal(t, &models.UserProfile{}, store.profiles["user-1"])
			}
		})
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	h := NewProfileHandler(newMemStore())
	req := withUser(httptest.NewRequest(http.MethodPut, "/user/profile",
		strings.NewReader(`{"business_type":"cafe","brand_tone":"warm"}`)), "ghost")
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubStats struct {
	stats *models.UsageStats
	err   error
}

func (s stubStats) Stats(ctx context.Context, userID string) (*models.UsageStats, error) {
	return s.stats, s.err
}

func TestUsageStats(t *testing.T) {
	h := NewUsageHandler(stubStats{stats: &models.UsageStats{
		Today:     models.UsageTotals{Requests: 2, Tokens: 300, Cost: 0.0001},
		ThisMonth: models.UsageTotals{Requests: 9, Tokens: 1200, Cost: 0.0004},
		Quota:     &models.QuotaLimits{DailyLimit: 100, MonthlyReplyLimit: 1000, MonthlyTokenLimit: 100000},
	}})

	rec := httptest.NewRecorder()
	h.Stats(rec, withUser(httptest.NewRequest(http.MethodGet, "/usage/stats", nil), "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Stats   models.UsageStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 9, body.Stats.ThisMonth.Requests)
	require.NotNil(t, body.Stats.Quota)
	assert.Equal(t, 100, body.Stats.Quota.DailyLimit)

	h = NewUsageHandler(stubStats{err: errors.New("timeout")})
	rec = httptest.NewRecorder()
	h.Stats(rec, withUser(httptest.NewRequest(http.MethodGet, "/usage/stats", nil), "user-1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/usage/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
