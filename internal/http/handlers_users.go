package http

import (
	"net/http"
	"strings"

	"spendwise/internal/core"
)

type createUserRequest struct {
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	CurrencyCode string `json:"currencyCode"`
}

type updateUserRequest struct {
	FullName     string `json:"fullName"`
	CurrencyCode string `json:"currencyCode"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	currency := strings.TrimSpace(req.CurrencyCode)
	if currency == "" {
		currency = "USD"
	}

	u, err := s.deps.Users.Create(r.Context(), core.User{
		Email:        req.Email,
		FullName:     req.FullName,
		CurrencyCode: currency,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.deps.Users.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	requestingUserID, err := queryUserID(r, "requestingUserId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.deps.Users.UpdateProfile(r.Context(), id, requestingUserID, req.FullName, req.CurrencyCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
