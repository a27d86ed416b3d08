// Package web exposes the run service as a small JSON API.
package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/cexll/swe-crew/internal/concurrency"
	"github.com/cexll/swe-crew/internal/costcontrol"
	"github.com/cexll/swe-crew/internal/dispatcher"
	"github.com/cexll/swe-crew/internal/runstore"
)

// Enqueuer is the slice of the dispatcher the handler needs.
type Enqueuer interface {
	Enqueue(run *runstore.Run) error
}

// Handler serves the run API.
type Handler struct {
	store      *runstore.Store
	dispatcher Enqueuer
	locks      *concurrency.Manager
	budget     *costcontrol.Tracker
}

// NewHandler creates a handler over the shared store, dispatcher,
// admission locks and daily run budget.
func NewHandler(store *runstore.Store, d Enqueuer, locks *concurrency.Manager, budget *costcontrol.Tracker) *Handler {
	return &Handler{store: store, dispatcher: d, locks: locks, budget: budget}
}

// RegisterRoutes attaches the API routes to a router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/runs", h.handleCreateRun).Methods("POST")
	r.HandleFunc("/runs", h.handleListRuns).Methods("GET")
	r.HandleFunc("/runs/{id}", h.handleRunDetail).Methods("GET")
	r.HandleFunc("/stats", h.handleStats).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
}

type createRunRequest struct {
	Repo       string `json:"repo"`
	IssueID    string `json:"issue_id"`
	BaseCommit string `json:"base_commit"`
	IssueDesc  string `json:"issue_desc"`
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Repo = strings.TrimSpace(req.Repo)
	req.IssueID = strings.TrimSpace(req.IssueID)
	if req.Repo == "" || req.IssueID == "" {
		writeError(w, http.StatusBadRequest, "repo and issue_id are required")
		return
	}
	if req.BaseCommit == "" {
		req.BaseCommit = "main"
	}

	run := &runstore.Run{
		ID:         uuid.NewString(),
		Repo:       req.Repo,
		IssueID:    req.IssueID,
		BaseCommit: req.BaseCommit,
		IssueDesc:  req.IssueDesc,
	}

	if err := h.budget.Reserve(); err != nil {
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}

	if !h.locks.TryAcquire(run.Key()) {
		h.budget.Release()
		writeError(w, http.StatusConflict, "a run for this issue is already in progress")
		return
	}

	if err := h.store.Create(run); err != nil {
		h.locks.Release(run.Key())
		h.budget.Release()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.dispatcher.Enqueue(run); err != nil {
		h.locks.Release(run.Key())
		h.budget.Release()
		_ = h.store.SetError(run.ID, err.Error())
		_ = h.store.UpdateStatus(run.ID, runstore.StatusFailed)
		switch {
		case errors.Is(err, dispatcher.ErrQueueFull):
			writeError(w, http.StatusServiceUnavailable, "run queue is full, try again later")
		case errors.Is(err, dispatcher.ErrQueueClosed):
			writeError(w, http.StatusServiceUnavailable, "service is shutting down")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	log.Printf("[Web] Accepted run %s for %s", run.ID, run.Key())
	// Respond with the store snapshot: a worker may already be mutating
	// the enqueued run.
	if snapshot, err := h.store.Get(run.ID); err == nil {
		run = snapshot
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, err := h.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.budget.Stats())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Web] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
