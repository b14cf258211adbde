package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/garasiku/servicebook/internal/auth"
	"github.com/garasiku/servicebook/internal/service"
)

// ServiceRecordHandler serves workshop visit records.
type ServiceRecordHandler struct {
	records *service.ServiceRecordService
	logger  *slog.Logger
}

// NewServiceRecordHandler creates a ServiceRecordHandler.
func NewServiceRecordHandler(records *service.ServiceRecordService, logger *slog.Logger) *ServiceRecordHandler {
	return &ServiceRecordHandler{records: records, logger: logger}
}

// HandleCreate logs a new service record against one of the user's vehicles.
//
// POST /api/service-records
func (h *ServiceRecordHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	var input service.CreateServiceRecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "Invalid JSON body.")
		return
	}

	record, err := h.records.Create(r.Context(), principal.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Service record created successfully.", record)
}

// HandleGet returns one record.
//
// GET /api/service-records/{id}
func (h *ServiceRecordHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid service record ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	record, err := h.records.Get(r.Context(), principal.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Service record fetched successfully.", record)
}

// HandleListByVehicle returns a vehicle's records, most recent first.
//
// GET /api/vehicles/{id}/service-records
func (h *ServiceRecordHandler) HandleListByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid vehicle ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	records, err := h.records.ListByVehicle(r.Context(), principal.ID, vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Service records fetched successfully.", records)
}

// HandleUpdate applies a partial record update.
//
// PATCH /api/service-records/{id}
func (h *ServiceRecordHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid service record ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	var proposed map[string]any
	if err := json.NewDecoder(r.Body).Decode(&proposed); err != nil {
		writeBadRequest(w, "Invalid JSON body.")
		return
	}

	if _, err := h.records.Update(r.Context(), principal.ID, id, proposed); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Service record updated successfully.", nil)
}

// HandleDelete removes a record.
//
// DELETE /api/service-records/{id}
func (h *ServiceRecordHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid service record ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	if err := h.records.Delete(r.Context(), principal.ID, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Service record deleted successfully.", nil)
}
