// Package ipc provides the HTTP API for the contract engine.
package ipc

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/guard"
	"github.com/rogers-f/contract-engine/internal/player"
	"github.com/rogers-f/contract-engine/internal/routes"
	"github.com/rogers-f/contract-engine/internal/scheduler"
	"github.com/rogers-f/contract-engine/internal/store"
)

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Scheduler *scheduler.Scheduler
	Ledger    *player.Ledger
	Guard     *guard.Guard
	Graph     *routes.Graph
	DB        *sql.DB
	EventRepo *store.EventRepo
	AuditRepo *store.AuditRepo
	Logger    *slog.Logger
	// Origin is used for board requests that do not name one.
	Origin  string
	Version string
	// PollInterval is how often the event stream checks the journal.
	PollInterval time.Duration
}

// BoardRequest is the body for POST /api/v1/board.
type BoardRequest struct {
	Origin string      `json:"origin"`
	Kind   domain.Kind `json:"kind"`
}

// BoardResponse lists a freshly generated board. NoRoute marks an origin with
// no lanes; the board is then empty, which is not an error.
type BoardResponse struct {
	Origin   string           `json:"origin"`
	Kind     domain.Kind      `json:"kind"`
	Missions []domain.Mission `json:"missions"`
	NoRoute  bool             `json:"no_route"`
}

// AcceptRequest is the optional body for POST /api/v1/missions/{id}/accept.
type AcceptRequest struct {
	ResourceID string `json:"resource_id"`
}

// DamageRequest is the body for POST /api/v1/resources/{id}/damage.
type DamageRequest struct {
	Health int `json:"health"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Active  int    `json:"active_missions"`
	// Owed counts completions whose reward has not been credited yet.
	Owed int `json:"owed_completions"`
}

// LocationResponse is a location together with the locations one lane away.
type LocationResponse struct {
	domain.Location
	Neighbors []string `json:"neighbors"`
}

// APIError is a structured error response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.Version,
		Active:  len(h.Scheduler.Missions(domain.MissionActive)),
		Owed:    len(h.Scheduler.Owed()),
	})
}

// GenerateBoard handles POST /api/v1/board.
func (h *Handler) GenerateBoard(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}
	var req BoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if req.Kind == "" {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "kind is required"})
		return
	}
	if req.Origin == "" {
		req.Origin = h.Origin
	}

	reputation := 0
	if h.Ledger != nil {
		rep, err := h.Ledger.Reputation(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		reputation = rep
	}

	board, err := h.Scheduler.Generate(r.Context(), req.Origin, req.Kind, reputation)
	resp := BoardResponse{Origin: req.Origin, Kind: req.Kind, Missions: board}
	if err != nil {
		if !errors.Is(err, domain.ErrNoRouteAvailable) {
			writeError(w, err)
			return
		}
		resp.NoRoute = true
		resp.Missions = []domain.Mission{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMissions handles GET /api/v1/missions?state=active.
func (h *Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	state := domain.MissionState(r.URL.Query().Get("state"))
	switch state {
	case "", domain.MissionAvailable, domain.MissionActive, domain.MissionCompleted:
	default:
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: fmt.Sprintf("unknown state %q", state)})
		return
	}
	writeJSON(w, http.StatusOK, h.Scheduler.Missions(state))
}

// GetMission handles GET /api/v1/missions/{id}.
func (h *Handler) GetMission(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Scheduler.Mission(r.PathValue("id"))
	if !ok {
		writeError(w, domain.ErrMissionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// AcceptMission handles POST /api/v1/missions/{id}/accept.
func (h *Handler) AcceptMission(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}
	var req AcceptRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
			return
		}
	}
	m, err := h.Scheduler.AcceptWith(r.Context(), r.PathValue("id"), req.ResourceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ResolveInterruption handles POST /api/v1/missions/{id}/interruption/resolve.
func (h *Handler) ResolveInterruption(w http.ResponseWriter, r *http.Request) {
	in, err := h.Scheduler.ResolveInterruption(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// PruneMission handles DELETE /api/v1/missions/{id}.
func (h *Handler) PruneMission(w http.ResponseWriter, r *http.Request) {
	if err := h.Scheduler.Prune(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLocations handles GET /api/v1/locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	out := []LocationResponse{}
	if h.Graph != nil {
		for _, loc := range h.Graph.Locations() {
			out = append(out, LocationResponse{Location: loc, Neighbors: h.Graph.Neighbors(loc.ID)})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetLocation handles GET /api/v1/locations/{id}.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if h.Graph == nil {
		writeError(w, domain.ErrLocationUnknown)
		return
	}
	loc, ok := h.Graph.Location(id)
	if !ok {
		writeError(w, domain.NewEngineError(domain.ErrLocationUnknown.Code, fmt.Sprintf("location %q not found", id)))
		return
	}
	writeJSON(w, http.StatusOK, LocationResponse{Location: loc, Neighbors: h.Graph.Neighbors(id)})
}

// ListResources handles GET /api/v1/resources.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Scheduler.Resources())
}

// DamageResource handles POST /api/v1/resources/{id}/damage.
func (h *Handler) DamageResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req DamageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if err := h.Scheduler.MarkNeedsRepair(id, req.Health); err != nil {
		writeError(w, err)
		return
	}
	h.audit(r, id, "mark_needs_repair", "warning", map[string]any{"health": req.Health})
	h.writeResource(w, id)
}

// RepairResource handles POST /api/v1/resources/{id}/repair.
func (h *Handler) RepairResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Scheduler.Repair(id); err != nil {
		writeError(w, err)
		return
	}
	h.audit(r, id, "repair", "info", nil)
	h.writeResource(w, id)
}

// ListAudit handles GET /api/v1/resources/{id}/audit.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	records, err := h.AuditRepo.ListBySubject(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list audit", err))
		return
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ListEvents handles GET /api/v1/events?since_seq=N&limit=M.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	sinceSeq := queryInt(r, "since_seq", 0)
	limit := queryInt(r, "limit", 0)
	events, err := h.EventRepo.ListSince(r.Context(), h.DB, sinceSeq, int(limit))
	if err != nil {
		writeError(w, domain.WrapEngineError(domain.ErrStoreQuery.Code, "list events", err))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// StreamEvents handles GET /api/v1/events/stream (SSE).
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, APIError{Code: 500, Message: "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	lastSeq := queryInt(r, "since_seq", 0)
	send := func() error {
		events, err := h.EventRepo.ListSince(ctx, h.DB, lastSeq, 0)
		if err != nil {
			return err
		}
		for _, ev := range events {
			writeSSEEvent(w, flusher, ev)
			lastSeq = ev.SeqNo
		}
		return nil
	}
	if err := send(); err != nil {
		writeSSEError(w, flusher, err)
		return
	}
	// Flush headers even when the journal is empty.
	flusher.Flush()

	interval := h.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := send(); err != nil {
				return
			}
		}
	}
}

// GetPlayer handles GET /api/v1/player.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		writeError(w, domain.ErrPlayerNotFound)
		return
	}
	p, err := h.Ledger.Player(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetLedger handles GET /api/v1/player/ledger.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		writeError(w, domain.ErrPlayerNotFound)
		return
	}
	entries, err := h.Ledger.Entries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request) bool {
	if h.Guard == nil {
		return true
	}
	key, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		key = r.RemoteAddr
	}
	if err := h.Guard.CheckRateLimit(key); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func (h *Handler) audit(r *http.Request, subjectID, action, severity string, detail map[string]any) {
	if h.AuditRepo == nil || h.DB == nil {
		return
	}
	detailJSON := "{}"
	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			detailJSON = string(data)
		}
	}
	err := h.AuditRepo.Record(r.Context(), h.DB, domain.AuditRecord{
		ID:         uuid.NewString(),
		SubjectID:  subjectID,
		Category:   "fleet",
		Actor:      "api",
		Action:     action,
		DetailJSON: detailJSON,
		Severity:   severity,
		CreatedAt:  time.Now().Unix(),
	})
	if err != nil && h.Logger != nil {
		h.Logger.Error("record audit", "subject_id", subjectID, "action", action, "error", err)
	}
}

func (h *Handler) writeResource(w http.ResponseWriter, id string) {
	for _, res := range h.Scheduler.Resources() {
		if res.ResourceID == id {
			writeJSON(w, http.StatusOK, res)
			return
		}
	}
	writeError(w, domain.ErrResourceNotFound)
}

func queryInt(r *http.Request, key string, def int64) int64 {
	if s := r.URL.Query().Get(key); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var engErr *domain.EngineError
	if errors.As(err, &engErr) {
		writeJSON(w, statusFor(engErr.Code), APIError{Code: engErr.Code, Message: engErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, APIError{Code: -1, Message: err.Error()})
}

func statusFor(code int) int {
	switch code {
	case domain.ErrMissionNotFound.Code, domain.ErrResourceNotFound.Code, domain.ErrPlayerNotFound.Code,
		domain.ErrLocationUnknown.Code:
		return http.StatusNotFound
	case domain.ErrMissionConflict.Code, domain.ErrResourceBusy.Code,
		domain.ErrDuplicateResource.Code, domain.ErrDuplicateMission.Code:
		return http.StatusConflict
	case domain.ErrNoCapableResource.Code, domain.ErrInvalidTransition.Code, domain.ErrMissionNotActive.Code,
		domain.ErrNoPendingInterruption.Code, domain.ErrMissionNotCompleted.Code:
		return http.StatusUnprocessableEntity
	case domain.ErrUnknownKind.Code:
		return http.StatusBadRequest
	case domain.ErrRateLimitExceeded.Code:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeSSEEvent(w http.ResponseWriter, f http.Flusher, ev domain.MissionEvent) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.SeqNo, ev.EventType, data)
	f.Flush()
}

func writeSSEError(w http.ResponseWriter, f http.Flusher, err error) {
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
	f.Flush()
}
