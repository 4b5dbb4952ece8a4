package http

import (
	"net/http"

	"hearth/internal/budget"
	"hearth/internal/core"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Paid state comes from the summary derivation, not the raw rows.
	ledger, err := s.budget.LoadLedger(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTOs(budget.BillsWithPayments(ledger)))
}

type createBillRequest struct {
	Name           string `json:"name"`
	ExpectedAmount string `json:"expected_amount"`
	Month          string `json:"month"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	m, err := core.ParseMonth(req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := core.ParseAmount(req.ExpectedAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bill := core.Bill{Name: req.Name, ExpectedAmount: amount, Month: m}
	id, err := s.store.CreateBill(r.Context(), bill)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bill.ID = id
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, toBillDTO(bill))
}

type updateBillRequest struct {
	Name           string `json:"name"`
	ExpectedAmount string `json:"expected_amount"`
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req updateBillRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	id := r.PathValue("id")
	existing, err := s.store.Bill(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := req.Name
	if name == "" {
		name = existing.Name
	}
	expected := req.ExpectedAmount
	if expected == "" {
		expected = core.FormatAmount(existing.ExpectedAmount)
	}
	if err := s.store.UpdateBill(r.Context(), id, name, expected); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.store.Bill(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toBillDTO(updated))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

type rollForwardRequest struct {
	Month string `json:"month"`
}

func (s *Server) handleRollForward(w http.ResponseWriter, r *http.Request) {
	var req rollForwardRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	m, err := core.ParseMonth(req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bills, err := s.budget.RollForwardBills(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toBillDTOs(bills))
}
