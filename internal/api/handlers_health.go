// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package api

import (
	"net/http"
	"time"

	"github.com/musehub-io/musehub/internal/models"
)

// Health handles GET /api/v1/health.
// Reports overall status with per-component checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := models.Check{Name: "database", Status: "up"}
	status := "healthy"
	if err := h.store.Ping(r.Context()); err != nil {
		dbCheck.Status = "down"
		dbCheck.Error = err.Error()
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthResponse{
			Status:    status,
			Version:   Version,
			Timestamp: time.Now(),
			Checks:    []models.Check{dbCheck},
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles GET /api/v1/health/live.
// Returns 200 whenever the process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles GET /api/v1/health/ready.
// Returns 503 until the database is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.store.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": ready,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
