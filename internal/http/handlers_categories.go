package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

type createCategoryRequest struct {
	UserID        int64           `json:"userId"`
	Name          string          `json:"name"`
	Icon          string          `json:"icon"`
	ColorHex      string          `json:"colorHex"`
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
}

type updateBudgetRequest struct {
	UserID        int64            `json:"userId"`
	MonthlyBudget *decimal.Decimal `json:"monthlyBudget"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cats, err := s.deps.Categories.List(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		s.writeError(w, r, core.NewValidationError("userId", "Invalid user ID"))
		return
	}

	c, err := s.deps.Categories.Create(r.Context(), core.Category{
		UserID:        req.UserID,
		Name:          req.Name,
		Icon:          req.Icon,
		ColorHex:      req.ColorHex,
		MonthlyBudget: req.MonthlyBudget,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategoryBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.MonthlyBudget == nil {
		s.writeError(w, r, core.NewValidationError("monthlyBudget", "Monthly budget is required"))
		return
	}

	c, err := s.deps.Categories.UpdateBudget(r.Context(), id, req.UserID, *req.MonthlyBudget)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
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

	res, err := s.deps.Categories.Delete(r.Context(), id, userID, queryBool(r, "force"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
