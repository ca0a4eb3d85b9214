package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Query (natural language search)
	mux.HandleFunc("/api/query", s.app.QueryHandler.QueryHandler) // POST - interpret and search

	// API routes - Documents
	mux.HandleFunc("/api/documents/stats", s.app.DocumentHandler.StatsHandler)
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.ListHandler)

	// API routes - Runs (pipeline history and manual trigger)
	mux.HandleFunc("/api/runs/trigger", s.app.SchedulerHandler.TriggerHandler)
	mux.HandleFunc("/api/runs", s.app.RunHandler.ListHandler)
	mux.HandleFunc("/api/runs/", s.app.RunHandler.GetHandler) // GET /{id}

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/status", s.app.SchedulerHandler.StatusHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
