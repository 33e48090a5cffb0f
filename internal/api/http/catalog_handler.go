package http

import (
	"net/http"

	"toolshed-backend/internal/domain"
)

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.services.Category.ListCategories(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	category, err := s.services.Category.GetCategory(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	category, err := s.services.Category.CreateCategory(r.Context(), req.Name)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	headers := http.Header{}
	headers.Set("Location", "/api/v1/categories/"+itoa(category.ID))
	if err := writeJSON(w, http.StatusCreated, envelope{"category": category}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req categoryRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	category, err := s.services.Category.UpdateCategory(r.Context(), id, req.Name)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	qr := newQueryReader(r)
	filter := domain.ToolFilter{
		Status:     domain.ToolStatus(qr.str("status")),
		CategoryID: qr.int32("category_id", 0),
		Page:       qr.int32("page", 1),
		PageSize:   qr.int32("page_size", 50),
	}
	if err := qr.err(); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	tools, total, err := s.services.Tool.ListTools(r.Context(), filter)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	meta := newPageMetadata(filter.Page, filter.PageSize, total)
	if err := writeJSON(w, http.StatusOK, envelope{"tools": tools, "metadata": meta}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) getTool(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	tool, err := s.services.Tool.GetTool(r.Context(), id)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"tool": tool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) createTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	tool := req.toDomain(0)
	if err := s.services.Tool.AddTool(r.Context(), tool); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	headers := http.Header{}
	headers.Set("Location", "/api/v1/tools/"+itoa(tool.ID))
	if err := writeJSON(w, http.StatusCreated, envelope{"tool": tool}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) updateTool(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req toolRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	tool := req.toDomain(id)
	if err := s.services.Tool.UpdateTool(r.Context(), tool); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"tool": tool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) setToolStatus(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req toolStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	tool, err := s.services.Tool.SetToolStatus(r.Context(), id, domain.ToolStatus(req.Status))
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"tool": tool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) recordMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	var req maintenanceRequest
	if err := readOptionalJSON(w, r, &req); err != nil {
		readErrorResponse(w, r, err)
		return
	}
	tool, err := s.services.Tool.RecordMaintenance(r.Context(), id, req.ServicedOn)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"tool": tool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *Server) listMaintenanceDue(w http.ResponseWriter, r *http.Request) {
	tools, err := s.services.Tool.ListMaintenanceDue(r.Context())
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"tools": tools}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// quoteRental prices a prospective loan without reserving the tool.
func (s *Server) quoteRental(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	qr := newQueryReader(r)
	start := qr.date("start_date", true)
	end := qr.date("end_date", true)
	if err := qr.err(); err != nil {
		serviceErrorResponse(w, r, err)
		return
	}

	cost, err := s.services.Rental.QuoteRental(r.Context(), id, start, end)
	if err != nil {
		serviceErrorResponse(w, r, err)
		return
	}
	resp := quoteResponse{ToolID: id, Start: start, End: end, Cost: cost}
	if err := writeJSON(w, http.StatusOK, envelope{"quote": resp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
