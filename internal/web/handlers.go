package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/valdor-terrains/internal/load"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error payload.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// handleMunicipal returns the full municipal dataset.
func (s *Server) handleMunicipal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Outcome().Municipal)
}

// handleGovernment returns the full provincial dataset plus its sync stamp.
func (s *Server) handleGovernment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"records":     s.svc.Outcome().Government,
		"last_update": s.svc.GovernmentLastUpdate(),
	})
}

// handleNotInRegistry returns municipal lands absent from the official
// registry.
func (s *Server) handleNotInRegistry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Outcome().NotInRegistry)
}

// handleConfirmed returns operator-confirmed remediated lands.
func (s *Server) handleConfirmed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Outcome().Confirmed)
}

// handlePending returns remediated lands awaiting operator review.
func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Outcome().Pending)
}

// handleStats returns the dashboard statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

// decisionRequest is the body of validate/reject calls. Land ids contain
// commas and spaces, so they travel in the body rather than the path.
type decisionRequest struct {
	ID string `json:"id"`
}

func decodeDecision(r *http.Request) (string, error) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", errors.New("body must be a JSON object with an \"id\" field")
	}
	if req.ID == "" {
		return "", errors.New("missing land id")
	}
	return req.ID, nil
}

// handleValidate confirms a pending remediation.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	id, err := decodeDecision(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.Validate(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

// handleReject rejects a remediation classification.
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := decodeDecision(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.Reject(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

// handleSync reloads the provincial dataset and reruns reconciliation.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SyncGovernment(r.Context()); err != nil {
		var mismatch *load.TypeMismatchError
		if errors.As(err, &mismatch) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

// handleHealth reports service and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.svc.persister != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.persister.Ping(ctx); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "ok"
	}
	writeJSON(w, http.StatusOK, health)
}
