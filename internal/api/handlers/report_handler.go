package handlers

import (
	"net/http"

	"github.com/isdelr/medpredict-be/internal/api/flash"
	"github.com/isdelr/medpredict-be/internal/auth"
	"github.com/isdelr/medpredict-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves the authenticated user's dashboard.
type ReportHandler struct {
	reports services.ReportServiceProvider
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports services.ReportServiceProvider) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard returns the caller's own prediction history, newest first.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	reports, err := h.reports.ListForUser(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to load user reports")
		writeJSONError(w, http.StatusInternalServerError, "failed to load reports")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": claims.Username,
		"reports":  reports,
		"flash":    flash.Pop(w, r),
	})
}
