package http

import (
	"net/http"

	"hearth/internal/core"
)

func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.budget.MonthSummary(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFundBalanceDTOs(summary.Funds))
}

type createFundRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	var req createFundRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	id, err := s.store.CreateFund(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "name": req.Name})
}

func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFund(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

type fundSettingsRequest struct {
	DisplayName    string  `json:"display_name"`
	Position       string  `json:"position"`
	Visible        bool    `json:"visible"`
	OverrideAmount *string `json:"override_amount"`
}

func (s *Server) handleUpdateFundSettings(w http.ResponseWriter, r *http.Request) {
	var req fundSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	fs := core.FundSettings{
		FundID:      r.PathValue("id"),
		DisplayName: req.DisplayName,
		Position:    req.Position,
		Visible:     req.Visible,
	}
	if req.OverrideAmount != nil {
		amount, err := core.ParseAmount(*req.OverrideAmount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		fs.OverrideAmount = &amount
	}
	if err := s.store.UpsertFundSettings(r.Context(), fs); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}
