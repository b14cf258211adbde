package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/rs/xid"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/patch"
	"github.com/garasiku/servicebook/internal/repository"
	"github.com/garasiku/servicebook/internal/storage"
)

// Listing defaults, shared with the reminder and record listings.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// VehicleService handles vehicle CRUD and photo uploads. All reads and
// writes are scoped to the authenticated owner.
type VehicleService struct {
	vehicles repository.VehicleRepository
	photos   storage.ObjectStorage // nil when object storage is not configured
	logger   *slog.Logger
}

// NewVehicleService creates a VehicleService. photos may be nil; uploads
// then fail with a storage error while the rest of the service works.
func NewVehicleService(vehicles repository.VehicleRepository, photos storage.ObjectStorage, logger *slog.Logger) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		photos:   photos,
		logger:   logger,
	}
}

// CreateVehicleInput carries the fields for vehicle creation. The numeric
// fields are pointers so a missing field is distinguishable from zero.
type CreateVehicleInput struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	PlateNumber string `json:"plateNumber"`
	Year        *int64 `json:"year"`
	CurrentKm   *int64 `json:"currentKm"`
}

// VehiclePage is a page of vehicles plus pagination metadata.
type VehiclePage struct {
	Vehicles   []model.Vehicle `json:"vehicles"`
	Pagination Pagination      `json:"pagination"`
}

// Pagination describes the full collection a page was cut from.
type Pagination struct {
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// Create validates and registers a new vehicle owned by userID.
func (s *VehicleService) Create(ctx context.Context, userID int64, input CreateVehicleInput) (*model.Vehicle, error) {
	required := []struct {
		field   string
		missing bool
	}{
		{"brand", strings.TrimSpace(input.Brand) == ""},
		{"model", strings.TrimSpace(input.Model) == ""},
		{"plateNumber", strings.TrimSpace(input.PlateNumber) == ""},
		{"year", input.Year == nil},
		{"currentKm", input.CurrentKm == nil},
	}
	for _, r := range required {
		if r.missing {
			return nil, apperror.ValidationFailed(r.field, fmt.Sprintf("Field %s is required", r.field))
		}
	}

	taken, err := s.vehicles.ExistsByField(ctx, "plateNumber", input.PlateNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("plateNumber", "PlateNumber already registered, Please check again.")
	}

	vehicle := &model.Vehicle{
		UserID:      userID,
		Brand:       input.Brand,
		Model:       input.Model,
		PlateNumber: input.PlateNumber,
		Year:        *input.Year,
		CurrentKm:   *input.CurrentKm,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle created",
		slog.Int64("vehicle_id", vehicle.ID),
		slog.Int64("user_id", userID),
	)
	return vehicle, nil
}

// Get returns one vehicle if principalID owns it.
func (s *VehicleService) Get(ctx context.Context, principalID, id int64) (*model.Vehicle, error) {
	return ownedVehicle(ctx, s.vehicles, principalID, id, "view this vehicle")
}

// List returns a page of the principal's vehicles, newest first.
func (s *VehicleService) List(ctx context.Context, principalID int64, page, limit int) (*VehiclePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	vehicles, err := s.vehicles.ListByUser(ctx, principalID, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	total, err := s.vehicles.CountByUser(ctx, principalID)
	if err != nil {
		return nil, err
	}

	return &VehiclePage{
		Vehicles: vehicles,
		Pagination: Pagination{
			Total:       total,
			TotalPages:  int64(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
			Limit:       limit,
		},
	}, nil
}

// Update applies a partial vehicle update through the full pipeline:
// existence, ownership, schema diff, uniqueness guard, commit. An update
// that changes nothing is rejected before any write.
func (s *VehicleService) Update(ctx context.Context, principalID, id int64, proposed map[string]any) (*model.Vehicle, error) {
	if !touchesSchema(model.VehiclePatchSchema, proposed) {
		return nil, apperror.ValidationFailed("", "No fields provided to update.")
	}

	vehicle, err := ownedVehicle(ctx, s.vehicles, principalID, id, "update this vehicle")
	if err != nil {
		return nil, err
	}

	changes, err := model.VehiclePatchSchema.Diff(vehicle.PatchFields(), proposed)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNoChange,
			Message: "No changes detected. Vehicle data remains the same.",
		}
	}

	for _, f := range model.VehiclePatchSchema.UniqueFields(changes) {
		value, err := patch.String(changes, f.Name)
		if err != nil {
			return nil, err
		}
		taken, err := s.vehicles.ExistsByField(ctx, f.Name, value, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.Conflict(f.Name, "PlateNumber already used by another vehicle.")
		}
	}

	if err := applyVehicleChanges(vehicle, changes); err != nil {
		return nil, err
	}
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle updated", slog.Int64("vehicle_id", vehicle.ID))
	return vehicle, nil
}

// Delete removes the vehicle and, through the cascade, its service records
// and reminder settings.
func (s *VehicleService) Delete(ctx context.Context, principalID, id int64) error {
	if _, err := ownedVehicle(ctx, s.vehicles, principalID, id, "delete this vehicle"); err != nil {
		return err
	}
	if err := s.vehicles.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("vehicle deleted", slog.Int64("vehicle_id", id))
	return nil
}

// AttachPhoto stores a photo in object storage and records its key against
// the vehicle. The key is returned so the handler can echo it to the client.
func (s *VehicleService) AttachPhoto(ctx context.Context, principalID, id int64, r io.Reader, size int64, contentType, ext string) (string, error) {
	if s.photos == nil {
		return "", fmt.Errorf("vehicle photo storage is not configured")
	}

	if _, err := ownedVehicle(ctx, s.vehicles, principalID, id, "update this vehicle"); err != nil {
		return "", err
	}

	key := fmt.Sprintf("vehicles/%s%s", xid.New().String(), ext)
	if err := s.photos.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("uploading vehicle photo: %w", err)
	}

	if err := s.vehicles.UpdatePhoto(ctx, id, key); err != nil {
		return "", err
	}

	s.logger.Info("vehicle photo attached",
		slog.Int64("vehicle_id", id),
		slog.String("key", key),
	)
	return key, nil
}

func applyVehicleChanges(vehicle *model.Vehicle, changes map[string]any) error {
	for name := range changes {
		var err error
		switch name {
		case "brand":
			vehicle.Brand, err = patch.String(changes, name)
		case "model":
			vehicle.Model, err = patch.String(changes, name)
		case "plateNumber":
			vehicle.PlateNumber, err = patch.String(changes, name)
		case "year":
			vehicle.Year, err = patch.Int64(changes, name)
		case "currentKm":
			vehicle.CurrentKm, err = patch.Int64(changes, name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
