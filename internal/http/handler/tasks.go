package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"leadgen/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type TaskHandler struct {
	Sched *scheduler.Scheduler
	DB    *gorm.DB
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var tasks []scheduler.Task
	if err := h.DB.WithContext(r.Context()).Order("created_at desc").Find(&tasks).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tasks)
}

type createTaskReq struct {
	TaskType    string          `json:"task_type"`
	Schedule    string          `json:"schedule"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.TaskType = strings.TrimSpace(req.TaskType)
	req.Schedule = strings.TrimSpace(req.Schedule)
	if req.TaskType == "" || req.Schedule == "" {
		http.Error(w, "task_type and schedule required", http.StatusBadRequest)
		return
	}

	task, err := h.Sched.CreateTask(r.Context(), req.TaskType, req.Schedule, req.Description, req.Parameters)
	if err != nil {
		if errors.Is(err, scheduler.ErrScheduleResolution) {
			http.Error(w, "unresolvable schedule", http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(task)
}

// Executions returns the firing history for one task, newest first.
func (h *TaskHandler) Executions(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	var execs []scheduler.TaskExecution
	if err := h.DB.WithContext(r.Context()).
		Where("task_id = ?", taskID).
		Order("executed_at desc").
		Find(&execs).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(execs)
}
