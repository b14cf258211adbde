package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/garasiku/servicebook/internal/auth"
	"github.com/garasiku/servicebook/internal/service"
)

// ReminderHandler serves maintenance reminder settings.
type ReminderHandler struct {
	reminders *service.ReminderService
	logger    *slog.Logger
}

// NewReminderHandler creates a ReminderHandler.
func NewReminderHandler(reminders *service.ReminderService, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, logger: logger}
}

// HandleCreate creates a reminder setting for one of the user's vehicles.
//
// POST /api/reminders
func (h *ReminderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	var input service.CreateReminderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "Invalid JSON body.")
		return
	}

	reminder, err := h.reminders.Create(r.Context(), principal.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Reminder setting created successfully.", reminder)
}

// HandleList returns every reminder across the user's vehicles.
//
// GET /api/reminders
func (h *ReminderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	reminders, err := h.reminders.ListByUser(r.Context(), principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Reminder settings fetched successfully.", reminders)
}

// HandleDelete removes a reminder setting.
//
// DELETE /api/reminders/{id}
func (h *ReminderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid reminder setting ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	if err := h.reminders.Delete(r.Context(), principal.ID, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Reminder setting deleted successfully.", nil)
}
