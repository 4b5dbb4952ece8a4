package http

import (
	"net/http"

	"hearth/internal/amqp"
)

type claimRequest struct {
	Token string `json:"token"`
}

// handleSimpleFinClaim exchanges a one-time setup token for an access URL
// and stores it. Claiming consumes the token, so the URL is persisted
// before anything else can fail.
func (s *Server) handleSimpleFinClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Token == "" {
		badRequest(w, "token is required")
		return
	}

	accessURL, err := s.claimer.ClaimSetupToken(r.Context(), req.Token)
	if err != nil {
		badRequest(w, "could not claim setup token: "+err.Error())
		return
	}
	if err := s.store.SetSimpleFinAccessURL(r.Context(), accessURL); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

// handleSimpleFinSync runs a sync inline and reports what it imported.
func (s *Server) handleSimpleFinSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.syncer.Sync(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, result)
}

// handleSimpleFinEnqueue hands the sync to the background worker instead
// of blocking the request on the aggregator.
func (s *Server) handleSimpleFinEnqueue(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "background sync is not configured"})
		return
	}
	if err := s.publisher.PublishSyncRequest(r.Context(), amqp.ReasonManual); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleSimpleFinDisconnect forgets the access URL. Connections and their
// transactions stay; they just stop refreshing.
func (s *Server) handleSimpleFinDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearSimpleFinAccessURL(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
