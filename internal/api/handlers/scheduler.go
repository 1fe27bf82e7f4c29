package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stonksapi/backend/internal/scheduler"
	"github.com/stonksapi/backend/pkg/logger"
)

// SchedulerHandler exposes the training scheduler's job registry.
type SchedulerHandler struct {
	sched  *scheduler.Scheduler
	logger *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler.
func NewSchedulerHandler(sched *scheduler.Scheduler, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{sched: sched, logger: log}
}

// Jobs returns run statistics for every registered job.
// GET /api/scheduler/jobs
func (h *SchedulerHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, "Job statistics retrieved", h.sched.GetJobStats())
}

// RunJob triggers a job outside its schedule.
// POST /api/scheduler/jobs/{name}/run
func (h *SchedulerHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.sched.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered manually")
	respondSuccess(w, "Job triggered", map[string]string{"job": name})
}
