package http

import (
	"net/http"

	"toolshed-backend/internal/domain"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}

	user, access, refresh, err := s.services.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	resp := tokenResponse{AccessToken: access, RefreshToken: refresh, User: user}
	if err := writeJSON(w, http.StatusOK, envelope{"auth": resp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}

	access, refresh, err := s.services.Auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	resp := tokenResponse{AccessToken: access, RefreshToken: refresh}
	if err := writeJSON(w, http.StatusOK, envelope{"auth": resp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	user, err := s.services.User.GetUser(r.Context(), claims.UserID)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) myRentals(w http.ResponseWriter, r *http.Request) {
	qr := newQueryReader(r)
	filter := domain.RentalFilter{
		UserID:   claimsFromContext(r.Context()).UserID,
		Status:   domain.RentalStatus(qr.str("status")),
		Page:     qr.int32("page", 1),
		PageSize: qr.int32("page_size", 50),
	}
	if err := qr.err(); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	s.writeRentals(w, r, filter)
}

func (s *Server) myTransactions(w http.ResponseWriter, r *http.Request) {
	qr := newQueryReader(r)
	filter := domain.TransactionFilter{
		UserID:   claimsFromContext(r.Context()).UserID,
		Status:   domain.TransactionStatus(qr.str("status")),
		Type:     domain.TransactionType(qr.str("type")),
		Page:     qr.int32("page", 1),
		PageSize: qr.int32("page_size", 50),
	}
	if err := qr.err(); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	s.writeTransactions(w, r, filter)
}
