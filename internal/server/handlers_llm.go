package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/resume-builder/internal/llm"
)

// extractKeywordsRequest carries the job description to mine for keywords.
// The minimum length rejects inputs too short to produce useful keywords.
type extractKeywordsRequest struct {
	JobDescription string `json:"job_description" validate:"required,min=30"`
}

// handleExtractKeywords returns the ATS keywords found in a job description.
func (s *Server) handleExtractKeywords(w http.ResponseWriter, r *http.Request) {
	var req extractKeywordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest,
			"Please enter a more detailed job description (at least 30 characters).")
		return
	}

	keywords, err := llm.ExtractKeywords(r.Context(), s.llm, req.JobDescription)
	if err != nil {
		log.Printf("[llm] Keyword extraction failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "keyword extraction failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"keywords": keywords})
}

// rewriteRequest carries bullet points to rewrite.
type rewriteRequest struct {
	BulletPoints []string `json:"bullet_points" validate:"required,min=1,dive,required"`
}

// handleRewriteJobDescription rewrites work-experience bullets.
func (s *Server) handleRewriteJobDescription(w http.ResponseWriter, r *http.Request) {
	s.handleRewrite(w, r, llm.RegisterJob)
}

// handleRewriteProjectDescription rewrites project bullets.
func (s *Server) handleRewriteProjectDescription(w http.ResponseWriter, r *http.Request) {
	s.handleRewrite(w, r, llm.RegisterProject)
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request, register llm.Register) {
	var req rewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "bullet_points must be a non-empty list")
		return
	}

	rewritten, err := llm.RewriteBullets(r.Context(), s.llm, req.BulletPoints, register)
	if err != nil {
		log.Printf("[llm] Rewrite failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "rewrite failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"bullet_points": rewritten})
}
