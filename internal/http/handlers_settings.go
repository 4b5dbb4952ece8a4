package http

import (
	"net/http"

	"hearth/internal/core"
)

type savingsTargetDTO struct {
	SavingsTarget string `json:"savings_target"`
}

func (s *Server) handleGetSavingsTarget(w http.ResponseWriter, r *http.Request) {
	target, err := s.store.SavingsTarget(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, savingsTargetDTO{SavingsTarget: core.FormatAmount(target)})
}

func (s *Server) handleSetSavingsTarget(w http.ResponseWriter, r *http.Request) {
	var req savingsTargetDTO
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	target, err := core.ParseAmount(req.SavingsTarget)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.SetSavingsTarget(r.Context(), target); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, savingsTargetDTO{SavingsTarget: core.FormatAmount(target)})
}
