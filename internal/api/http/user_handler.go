package http

import (
	"net/http"

	"toolshed-backend/internal/domain"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	qr := newQueryReader(r)
	status := domain.UserStatus(qr.str("status"))
	page := qr.int32("page", 1)
	pageSize := qr.int32("page_size", 50)
	if err := qr.err(); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	users, total, err := s.services.User.ListUsers(r.Context(), status, page, pageSize)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	meta := newPageMetadata(page, pageSize, total)
	if err := writeJSON(w, http.StatusOK, envelope{"users": users, "metadata": meta}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	user, err := s.services.User.GetUser(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	user := req.toDomain(0)
	if err := s.services.User.CreateUser(r.Context(), user, req.Password); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	headers := http.Header{}
	headers.Set("Location", "/api/v1/users/"+itoa(user.ID))
	if err := writeJSON(w, http.StatusCreated, envelope{"user": user}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// updateUser edits profile fields. Password and membership changes go through
// their own flows and are ignored here.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req userRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	user := req.toDomain(id)
	if err := s.services.User.UpdateUser(r.Context(), user); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) setUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req userStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	user, err := s.services.User.SetUserStatus(r.Context(), id, domain.UserStatus(req.Status))
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) renewMembership(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req renewRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	user, fee, err := s.services.User.RenewMembership(r.Context(), id, req.Months, req.FeeCents)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"user": user, "transaction": fee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) userDebt(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	debt, err := s.services.Transaction.GetUserDebt(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"user_id": id, "total_debt_cents": debt}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) expiringMemberships(w http.ResponseWriter, r *http.Request) {
	users, err := s.services.User.ListExpiringMemberships(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"users": users}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) expiredMemberships(w http.ResponseWriter, r *http.Request) {
	users, err := s.services.User.ListExpiredMemberships(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"users": users}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
