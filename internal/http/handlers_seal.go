package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if summary, ok := s.summaryCache.Get(m.String()); ok {
		writeJSON(w, http.StatusOK, toSummaryDTO(summary))
		return
	}

	summary, err := s.budget.MonthSummary(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Set(m.String(), summary)
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

func (s *Server) handleSealProposal(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	proposal, err := s.budget.ProposeAllocations(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make(map[string]string, len(proposal))
	for fundID, amount := range proposal {
		out[fundID] = core.FormatAmount(amount)
	}
	writeJSON(w, http.StatusOK, out)
}

type sealRequest struct {
	Month       string            `json:"month"`
	Allocations map[string]string `json:"allocations"`
}

func (s *Server) handleSealMonth(w http.ResponseWriter, r *http.Request) {
	var req sealRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	m, err := core.ParseMonth(req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	allocations := make(map[string]decimal.Decimal, len(req.Allocations))
	for fundID, raw := range req.Allocations {
		amount, err := core.ParseAmount(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		allocations[fundID] = amount
	}

	if err := s.budget.SealMonth(r.Context(), m, allocations); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()

	summary, err := s.budget.MonthSummary(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}
