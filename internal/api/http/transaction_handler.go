package http

import (
	"net/http"

	"toolshed-backend/internal/domain"
)

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	qr := newQueryReader(r)
	filter := domain.TransactionFilter{
		UserID:   qr.int32("user_id", 0),
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

func (s *Server) writeTransactions(w http.ResponseWriter, r *http.Request, filter domain.TransactionFilter) {
	txns, total, err := s.services.Transaction.ListTransactions(r.Context(), filter)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	meta := newPageMetadata(filter.Page, filter.PageSize, total)
	if err := writeJSON(w, http.StatusOK, envelope{"transactions": txns, "metadata": meta}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	txn, err := s.services.Transaction.GetTransaction(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"transaction": txn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// createTransaction books a manual charge or a payment. Rental charges are
// only ever created by returning a rental.
func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	txn := req.toDomain()
	if err := s.services.Transaction.CreateTransaction(r.Context(), txn); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	headers := http.Header{}
	headers.Set("Location", "/api/v1/transactions/"+itoa(txn.ID))
	if err := writeJSON(w, http.StatusCreated, envelope{"transaction": txn}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) payTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req payRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	txn, err := s.services.Transaction.PayTransaction(r.Context(), id, domain.PaymentMethod(req.Method))
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"transaction": txn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	if err := s.services.Transaction.DeleteTransaction(r.Context(), id); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.services.Dashboard.GetSummary(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
