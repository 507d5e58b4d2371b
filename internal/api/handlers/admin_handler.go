package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/medpredict-be/internal/api/flash"
	"github.com/isdelr/medpredict-be/internal/auth"
	"github.com/isdelr/medpredict-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AdminHandler serves the admin dashboard and destructive admin actions.
type AdminHandler struct {
	users   services.UserServiceProvider
	reports services.ReportServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users services.UserServiceProvider, reports services.ReportServiceProvider) *AdminHandler {
	return &AdminHandler{users: users, reports: reports}
}

// Dashboard returns all users, all reports, and aggregate counts.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	users, err := h.users.ListUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeJSONError(w, http.StatusInternalServerError, "failed to load users")
		return
	}

	reports, err := h.reports.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list reports")
		writeJSONError(w, http.StatusInternalServerError, "failed to load reports")
		return
	}

	stats, err := h.reports.Stats()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute stats")
		writeJSONError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": claims.Username,
		"users":    users,
		"reports":  reports,
		"stats":    stats,
		"flash":    flash.Pop(w, r),
	})
}

// DeleteUser removes a user and all their reports. An admin cannot delete
// their own account.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if id == claims.UserID {
		flash.Set(w, "danger", "You cannot delete your own account!")
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	if err := h.users.DeleteUser(id); err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		}
		flash.Set(w, "danger", "Error deleting user!")
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	flash.Set(w, "success", "User deleted successfully!")
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// DeleteReport removes a single prediction report.
func (h *AdminHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.reports.Delete(id); err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error().Err(err).Str("report_id", id).Msg("Failed to delete report")
		}
		flash.Set(w, "danger", "Error deleting report!")
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	flash.Set(w, "success", "Report deleted successfully!")
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}
