package http

import (
	"net/http"
	"time"

	"hearth/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.store.OnBudgetTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	// An optional ?month= narrows the list to entries dated inside the
	// month; a split parent is included when any of its splits falls in.
	if r.URL.Query().Get("month") != "" {
		m, err := monthParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filtered := txns[:0]
		for _, t := range txns {
			if inMonth(t, m) {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}

	writeJSON(w, http.StatusOK, toTransactionDTOs(txns))
}

func inMonth(t core.Transaction, m core.Month) bool {
	if !t.IsSplit {
		return m.Contains(t.Date)
	}
	for _, sp := range t.Splits {
		if m.Contains(sp.Date) {
			return true
		}
	}
	return false
}

type createTransactionRequest struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	IncomeMonth string `json:"income_month"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		badRequest(w, "invalid date, expected YYYY-MM-DD")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txn := core.Transaction{
		Date:   date,
		Name:   req.Name,
		Amount: amount,
	}
	if req.Category != "" {
		txn.Category = core.ParseCategoryToken(req.Category)
	}
	if req.IncomeMonth != "" {
		m, err := core.ParseMonth(req.IncomeMonth)
		if err != nil {
			writeError(w, r, err)
			return
		}
		txn.IncomeMonth = m
	}

	id, err := s.store.CreateManualTransaction(r.Context(), txn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.store.Transaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, toTransactionDTO(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.store.Transaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(txn))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

type assignCategoryRequest struct {
	Category    string `json:"category"`
	IncomeMonth string `json:"income_month"`
}

func (s *Server) handleAssignCategory(w http.ResponseWriter, r *http.Request) {
	var req assignCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	category := core.ParseCategoryToken(req.Category)
	var incomeMonth core.Month
	if req.IncomeMonth != "" {
		m, err := core.ParseMonth(req.IncomeMonth)
		if err != nil {
			writeError(w, r, err)
			return
		}
		incomeMonth = m
	}

	id := r.PathValue("id")
	if err := s.store.AssignCategory(r.Context(), id, category, incomeMonth); err != nil {
		writeError(w, r, err)
		return
	}
	txn, err := s.store.Transaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toTransactionDTO(txn))
}

type replaceSplitsRequest struct {
	Splits []splitDTO `json:"splits"`
}

func (s *Server) handleReplaceSplits(w http.ResponseWriter, r *http.Request) {
	var req replaceSplitsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	splits := make([]core.TransactionSplit, 0, len(req.Splits))
	for _, spDTO := range req.Splits {
		date, err := time.Parse(dateLayout, spDTO.Date)
		if err != nil {
			badRequest(w, "invalid split date, expected YYYY-MM-DD")
			return
		}
		amount, err := core.ParseAmount(spDTO.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		sp := core.TransactionSplit{
			Label:  spDTO.Label,
			Amount: amount,
			Date:   date,
		}
		if spDTO.Category != "" {
			sp.Category = core.ParseCategoryToken(spDTO.Category)
		}
		if spDTO.IncomeMonth != "" {
			m, err := core.ParseMonth(spDTO.IncomeMonth)
			if err != nil {
				writeError(w, r, err)
				return
			}
			sp.IncomeMonth = m
		}
		splits = append(splits, sp)
	}

	id := r.PathValue("id")
	if err := s.store.ReplaceSplits(r.Context(), id, splits); err != nil {
		writeError(w, r, err)
		return
	}
	txn, err := s.store.Transaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toTransactionDTO(txn))
}

func (s *Server) handleUnsplit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Unsplit(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	txn, err := s.store.Transaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toTransactionDTO(txn))
}
