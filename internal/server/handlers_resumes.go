package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/pdf"
)

// saveResumeRequest is the payload for persisting a resume document.
type saveResumeRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	HTML  string `json:"html" validate:"required"`
}

// handleSaveResume stores a resume for the authenticated user.
func (s *Server) handleSaveResume(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req saveResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "title and html are required")
		return
	}

	id, err := s.db.SaveResume(r.Context(), sess.UserID, req.Title, req.HTML)
	if err != nil {
		log.Printf("[resumes] Save failed for user %s: %v", sess.UserID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to save resume")
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// handleListResumes lists the authenticated user's resumes.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	summaries, err := s.db.ListResumes(r.Context(), sess.UserID)
	if err != nil {
		log.Printf("[resumes] List failed for user %s: %v", sess.UserID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list resumes")
		return
	}
	if summaries == nil {
		summaries = []db.ResumeSummary{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": summaries})
}

// handleGetResume fetches one of the authenticated user's resumes.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid resume ID")
		return
	}

	resume, err := s.db.GetResume(r.Context(), sess.UserID, id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to get resume")
		return
	}
	if resume == nil {
		s.errorResponse(w, http.StatusNotFound, "resume not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, resume)
}

// handleDeleteResume removes one of the authenticated user's resumes.
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid resume ID")
		return
	}

	if err := s.db.DeleteResume(r.Context(), sess.UserID, id); err != nil {
		s.errorResponse(w, http.StatusNotFound, "resume not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// generatePDFRequest carries the HTML document to print.
type generatePDFRequest struct {
	HTML string `json:"html" validate:"required"`
}

// handleGeneratePDF prints resume HTML to PDF bytes.
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req generatePDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "html is required")
		return
	}

	data, err := s.renderer.RenderHTML(r.Context(), req.HTML)
	if err != nil {
		if errors.Is(err, pdf.ErrEmptyDocument) {
			s.errorResponse(w, http.StatusBadRequest, "document has no renderable content")
			return
		}
		log.Printf("[pdf] Render failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "pdf rendering failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="resume.pdf"`)
	if _, err := w.Write(data); err != nil {
		log.Printf("[pdf] Failed to write response: %v", err)
	}
}
