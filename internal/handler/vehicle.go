package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/garasiku/servicebook/internal/auth"
	"github.com/garasiku/servicebook/internal/service"
)

// maxPhotoSize caps vehicle photo uploads at 5 MiB.
const maxPhotoSize = 5 << 20

// VehicleHandler serves vehicle CRUD and photo uploads.
type VehicleHandler struct {
	vehicles *service.VehicleService
	logger   *slog.Logger
}

// NewVehicleHandler creates a VehicleHandler.
func NewVehicleHandler(vehicles *service.VehicleService, logger *slog.Logger) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, logger: logger}
}

// HandleCreate registers a vehicle owned by the authenticated user.
//
// POST /api/vehicles
func (h *VehicleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	var input service.CreateVehicleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "Invalid JSON body.")
		return
	}

	if _, err := h.vehicles.Create(r.Context(), principal.ID, input); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Vehicle created successfully.", nil)
}

// HandleList returns a page of the user's vehicles.
//
// GET /api/vehicles?page=1&limit=20
func (h *VehicleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.vehicles.List(r.Context(), principal.ID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", result)
}

// HandleGet returns one vehicle.
//
// GET /api/vehicles/{id}
func (h *VehicleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid vehicle ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	vehicle, err := h.vehicles.Get(r.Context(), principal.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", vehicle)
}

// HandleUpdate applies a partial vehicle update.
//
// PATCH /api/vehicles/{id}
func (h *VehicleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid vehicle ID is required.")
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

	if _, err := h.vehicles.Update(r.Context(), principal.ID, id, proposed); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Vehicle updated successfully.", nil)
}

// HandleDelete removes a vehicle and its child resources.
//
// DELETE /api/vehicles/{id}
func (h *VehicleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid vehicle ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	if err := h.vehicles.Delete(r.Context(), principal.ID, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Vehicle deleted successfully.", nil)
}

// HandleUploadImage stores a vehicle photo in object storage.
//
// POST /api/vehicles/{id}/image, multipart form with an "image" file part.
func (h *VehicleHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid vehicle ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeBadRequest(w, "Image file is required.")
		return
	}
	defer file.Close()

	key, err := h.vehicles.AttachPhoto(r.Context(), principal.ID, id,
		file, header.Size, header.Header.Get("Content-Type"), filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Vehicle image uploaded successfully.",
		map[string]string{"photo": key})
}
