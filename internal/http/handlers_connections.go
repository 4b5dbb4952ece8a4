package http

import (
	"net/http"

	"hearth/internal/core"
)

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.store.Connections(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := make([]connectionDTO, 0, len(conns))
	for _, c := range conns {
		dtos = append(dtos, toConnectionDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

type createConnectionRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CurrentBalance string `json:"current_balance"`
	OnBudget       bool   `json:"on_budget"`
	AccountType    string `json:"account_type"`
}

func (s *Server) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	var req createConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	conn := core.Connection{
		ID:          req.ID,
		Name:        req.Name,
		OnBudget:    req.OnBudget,
		AccountType: req.AccountType,
	}
	if req.CurrentBalance != "" {
		balance, err := core.ParseAmount(req.CurrentBalance)
		if err != nil {
			writeError(w, r, err)
			return
		}
		conn.CurrentBalance = balance
	}
	if err := s.store.CreateConnection(r.Context(), conn); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, toConnectionDTO(conn))
}

type updateConnectionRequest struct {
	OnBudget    *bool   `json:"on_budget"`
	DisplayName *string `json:"display_name"`
}

func (s *Server) handleUpdateConnection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OnBudget != nil {
		if err := s.store.UpdateConnectionOnBudget(r.Context(), id, *req.OnBudget); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.DisplayName != nil {
		if err := s.store.UpdateConnectionDisplayName(r.Context(), id, *req.DisplayName); err != nil {
			writeError(w, r, err)
			return
		}
	}
	conn, err := s.store.Connection(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toConnectionDTO(conn))
}

func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteConnection(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectionTransactions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.Connection(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	txns, err := s.store.ConnectionTransactions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txns))
}
