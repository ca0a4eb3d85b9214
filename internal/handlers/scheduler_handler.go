package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/services/scheduler"
)

// SchedulerHandler exposes scheduler state and manual pipeline triggers
type SchedulerHandler struct {
	scheduler *scheduler.Service
	logger    arbor.ILogger
}

func NewSchedulerHandler(schedulerService *scheduler.Service, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: schedulerService,
		logger:    logger,
	}
}

// StatusHandler handles GET /api/scheduler/status
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.scheduler.GetStatus())
}

// TriggerHandler handles POST /api/runs/trigger
func (h *SchedulerHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if err := h.scheduler.TriggerNow(); err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	WriteStarted(w, "Pipeline run started")
}
