package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

type expenseRequest struct {
	UserID      int64           `json:"userId"`
	CategoryID  int64           `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ExpenseDate core.Date       `json:"expenseDate"`
}

func (req expenseRequest) expense() core.Expense {
	return core.Expense{
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.ExpenseDate,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.deps.Expenses.Create(r.Context(), req.expense())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.deps.Expenses.Get(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.deps.Expenses.Update(r.Context(), id, req.expense())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Expenses.Delete(r.Context(), id, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := core.ExpenseQuery{UserID: userID}
	if q.From, err = queryDate(r, "startDate"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if q.To, err = queryDate(r, "endDate"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if q.CategoryID, err = queryInt64(r, "categoryId"); err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.deps.Expenses.List(r.Context(), q, queryInt(r, "page", 1), queryInt(r, "pageSize", 10))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page.Data == nil {
		page.Data = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, page)
}
