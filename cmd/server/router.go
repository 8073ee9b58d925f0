package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/HanTheDev/review-reply-gateway/internal/admin"
	"github.com/HanTheDev/review-reply-gateway/internal/apperr"
	"github.com/HanTheDev/review-reply-gateway/internal/auth"
	"github.com/HanTheDev/review-reply-gateway/internal/handler"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type routes struct {
	auth        *auth.Middleware
	reply       http.Handler
	profile     *handler.ProfileHandler
	usage       *handler.UsageHandler
	admin       *admin.AdminHandler
	checks      []pinger
	corsOrigins []string
}

func newRouter(r routes) http.Handler {
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/health", healthHandler(r.checks...)).Methods("GET")

	// Authenticated routes
	authed := r.auth.Authenticate
	router.Handle("/reply/generate", authed(r.reply)).Methods("POST")
	router.Handle("/user/profile", authed(http.HandlerFunc(r.profile.Get))).Methods("GET")
	router.Handle("/user/profile", authed(http.HandlerFunc(r.profile.Update))).Methods("PUT")
	router.Handle("/usage/stats", authed(http.HandlerFunc(r.usage.Stats))).Methods("GET")

	// Admin routes
	r.admin.RegisterRoutes(router, r.auth.Authenticate)

	c := cors.New(cors.Options{
		AllowedOrigins: r.corsOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return logger.RequestLogger(c.Handler(router))
}

func healthHandler(checks ...pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				logger.Log.WithError(err).Warn("health check failed")
				apperr.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unhealthy",
					"version": version,
				})
				return
			}
		}

		apperr.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": version,
		})
	}
}
