package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/apply-engine/internal/types"
)

// maxLimit caps the pending list size a client can request.
const maxLimit = 500

// StatusResponse is returned after a successful status update
type StatusResponse struct {
	ID     uuid.UUID               `json:"id"`
	Status types.ApplicationStatus `json:"status"`
}

// LookupResponse is returned by a lookup by URL
type LookupResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"job_url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetByURL resolves ?url= to a tracked application id.
func (s *Server) handleGetByURL(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		s.writeError(w, &ErrValidation{Field: "url", Message: "query parameter is required"})
		return
	}

	id, ok, err := s.tracker.GetByURL(r.Context(), url)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeError(w, types.ErrApplicationNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, LookupResponse{ID: id, URL: url})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.tracker.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	stats, err := s.tracker.Stats(r.Context(), top)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var tier *types.Tier
	if raw := r.URL.Query().Get("tier"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !types.Tier(n).Valid() {
			s.writeError(w, &ErrValidation{Field: "tier", Message: "must be 1, 2 or 3"})
			return
		}
		t := types.Tier(n)
		tier = &t
	}

	recs, err := s.tracker.ListPending(r.Context(), tier, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []types.ApplicationRecord{}
	}
	s.jsonResponse(w, http.StatusOK, recs)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	hist, err := s.tracker.History(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if hist == nil {
		hist = []types.StatusTransition{}
	}
	s.jsonResponse(w, http.StatusOK, hist)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req types.TransitionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	status := types.ApplicationStatus(req.Status)
	if err := s.tracker.Transition(r.Context(), id, status, req.Note); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, StatusResponse{ID: id, Status: status})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}
