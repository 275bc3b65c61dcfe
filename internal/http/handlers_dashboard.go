package http

import (
	"bytes"
	"net/http"

	"finboard/internal/dashboard"
	"finboard/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex renders the full dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dashboard.RenderPage(&buf, s.deps.Dashboard.Current(r.Context())); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard page rendering failed",
			log.FieldOperation, log.OpRender, log.FieldError, err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	NewResponse().
		Header("Cache-Control", "no-store").
		Text("text/html; charset=utf-8", buf.Bytes()).
		Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.deps.Dashboard.Current(r.Context())).Write(w)
}

func (s *Server) handleDashboardMarkdown(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dashboard.RenderMarkdown(&buf, s.deps.Dashboard.Current(r.Context())); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard markdown rendering failed",
			log.FieldOperation, log.OpRender, log.FieldError, err)
		InternalServerError("failed to render dashboard").Write(w)
		return
	}
	NewResponse().Text("text/markdown; charset=utf-8", buf.Bytes()).Write(w)
}
