package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"leadgen/internal/queue"

	"gorm.io/gorm"
)

// JobsHandler exposes the jobs table for operator inspection. Failed
// jobs are never retried automatically; this is how they get found.
type JobsHandler struct {
	DB *gorm.DB
}

func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	tx := h.DB.WithContext(r.Context()).Order("created_at desc").Limit(limit)
	if q := r.URL.Query().Get("queue"); q != "" {
		tx = tx.Where("queue = ?", q)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		tx = tx.Where("status = ?", s)
	}

	var jobs []queue.Job
	if err := tx.Find(&jobs).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jobs)
}
