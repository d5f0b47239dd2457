/*-------------------------------------------------------------------------
 *
 * router.go
 *    HTTP route registration for the Loanzaar workflow server
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/api/router.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Vivekray898/loanzaar-server/internal/auth"
	"github.com/Vivekray898/loanzaar-server/internal/metrics"
	"github.com/Vivekray898/loanzaar-server/internal/projection"
)

/* HealthFunc reports whether the server's dependencies are reachable */
type HealthFunc func(r *http.Request) error

/* NewRouter assembles the middleware chain and all API routes */
func NewRouter(handlers *Handlers, verifier *auth.TokenVerifier, feed *projection.Feed, projector *projection.Projector, health HealthFunc) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(SecurityHeadersMiddleware)
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(AuthMiddleware(verifier))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/applications", handlers.CreateApplication).Methods("POST")
	apiRouter.HandleFunc("/applications/pending", handlers.ListPendingApplications).Methods("GET")
	apiRouter.HandleFunc("/applications/{id}", handlers.GetApplicationView).Methods("GET")
	apiRouter.HandleFunc("/applications/{id}/assign", handlers.AssignAgent).Methods("PUT")
	apiRouter.HandleFunc("/applications/{id}/propose", handlers.ProposeTransition).Methods("POST")
	apiRouter.HandleFunc("/applications/{id}/resolve", handlers.ResolveProposal).Methods("POST")
	apiRouter.HandleFunc("/applications/{id}/history", handlers.GetHistory).Methods("GET")
	apiRouter.HandleFunc("/applications/{id}/verify", handlers.VerifyAudit).Methods("GET")
	apiRouter.HandleFunc("/applications/{id}/remarks", handlers.AddRemark).Methods("POST")
	apiRouter.HandleFunc("/applications/{id}/remarks", handlers.ListRemarks).Methods("GET")
	apiRouter.HandleFunc("/applications/{id}/subscribe", HandleSubscription(feed, projector)).Methods("GET")
	apiRouter.HandleFunc("/agents/{id}/applications", handlers.ListAgentApplications).Methods("GET")

	return router
}
