package http

import (
	"net/http"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/service"
)

// createRental books a tool. Members may only request a pending rental for
// themselves at the computed price; staff book on behalf of a member and may
// override the price or hand the tool out immediately.
func (s *Server) createRental(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	if isStaff(claims) {
		if req.UserID == 0 {
			failedValidationResponse(w, r, map[string]string{"user_id": "is required"})
			return
		}
	} else {
		if req.UserID != 0 && req.UserID != claims.UserID {
			forbiddenResponse(w, r, "members can only rent for themselves")
			return
		}
		if req.Activate || req.PriceOverrideCents != nil {
			forbiddenResponse(w, r, "only staff can activate rentals or override prices")
			return
		}
		req.UserID = claims.UserID
	}

	rental, err := s.services.Rental.CreateRental(r.Context(), service.CreateRentalRequest{
		UserID:             req.UserID,
		ToolID:             req.ToolID,
		StartDate:          *req.StartDate,
		EndDate:            *req.EndDate,
		PriceOverrideCents: req.PriceOverrideCents,
		Activate:           req.Activate,
	})
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	headers := http.Header{}
	headers.Set("Location", "/api/v1/rentals/"+itoa(rental.ID))
	if err := writeJSON(w, http.StatusCreated, envelope{"rental": rental}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) listRentals(w http.ResponseWriter, r *http.Request) {
	qr := newQueryReader(r)
	filter := domain.RentalFilter{
		Status:   domain.RentalStatus(qr.str("status")),
		UserID:   qr.int32("user_id", 0),
		ToolID:   qr.int32("tool_id", 0),
		Page:     qr.int32("page", 1),
		PageSize: qr.int32("page_size", 50),
	}
	if err := qr.err(); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	s.writeRentals(w, r, filter)
}

func (s *Server) writeRentals(w http.ResponseWriter, r *http.Request, filter domain.RentalFilter) {
	rentals, total, err := s.services.Rental.ListRentals(r.Context(), filter)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	meta := newPageMetadata(filter.Page, filter.PageSize, total)
	if err := writeJSON(w, http.StatusOK, envelope{"rentals": rentals, "metadata": meta}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) listLateRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := s.services.Rental.ListLateRentals(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"rentals": rentals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) reconcileLateRentals(w http.ResponseWriter, r *http.Request) {
	marked, err := s.services.Rental.ReconcileLateRentals(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"rentals": marked, "marked": len(marked)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) getRental(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	rental, err := s.services.Rental.GetRental(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	s.writeRental(w, r, http.StatusOK, rental)
}

func (s *Server) activateRental(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req activateRequest
	if err := readOptionalJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	rental, err := s.services.Rental.ActivateRental(r.Context(), id, req.PriceOverrideCents)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	s.writeRental(w, r, http.StatusOK, rental)
}

func (s *Server) rejectRental(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	rental, err := s.services.Rental.RejectRental(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	s.writeRental(w, r, http.StatusOK, rental)
}

func (s *Server) returnRental(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req returnRequest
	if err := readOptionalJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	rental, charge, err := s.services.Rental.ReturnRental(r.Context(), id, req.Comment)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"rental": rental, "transaction": charge}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) markLate(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	rental, err := s.services.Rental.MarkLate(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	s.writeRental(w, r, http.StatusOK, rental)
}

func (s *Server) writeRental(w http.ResponseWriter, r *http.Request, status int, rental *domain.Rental) {
	if err := writeJSON(w, status, envelope{"rental": rental}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
