package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/patch"
	"github.com/garasiku/servicebook/internal/repository"
)

// ServiceRecordService handles workshop visit records. Records never carry
// an owner of their own; every check resolves through the parent vehicle.
type ServiceRecordService struct {
	records  repository.ServiceRecordRepository
	vehicles repository.VehicleRepository
	logger   *slog.Logger
}

// NewServiceRecordService creates a ServiceRecordService.
func NewServiceRecordService(
	records repository.ServiceRecordRepository,
	vehicles repository.VehicleRepository,
	logger *slog.Logger,
) *ServiceRecordService {
	return &ServiceRecordService{
		records:  records,
		vehicles: vehicles,
		logger:   logger,
	}
}

// CreateServiceRecordInput carries the fields for record creation. Numeric
// and temporal fields are pointers so missing is distinguishable from zero;
// notes is the only optional field.
type CreateServiceRecordInput struct {
	VehicleID    *int64  `json:"vehicleId"`
	ServiceDate  *string `json:"serviceDate"`
	OdometerKm   *int64  `json:"odometerKm"`
	Workshop     string  `json:"workshop"`
	ServiceTitle string  `json:"serviceTitle"`
	Cost         *int64  `json:"cost"`
	Notes        string  `json:"notes"`
}

// Create validates and logs a new service record against a vehicle the
// principal owns.
func (s *ServiceRecordService) Create(ctx context.Context, principalID int64, input CreateServiceRecordInput) (*model.ServiceRecord, error) {
	if input.VehicleID == nil || input.ServiceDate == nil || input.OdometerKm == nil ||
		input.Workshop == "" || input.ServiceTitle == "" || input.Cost == nil {
		return nil, apperror.ValidationFailed("", "All fields except notes are required.")
	}

	serviceDate, err := patch.Time(map[string]any{"serviceDate": *input.ServiceDate}, "serviceDate")
	if err != nil {
		return nil, err
	}

	if _, err := ownedVehicle(ctx, s.vehicles, principalID, *input.VehicleID, "add a service record to this vehicle"); err != nil {
		return nil, err
	}

	record := &model.ServiceRecord{
		VehicleID:    *input.VehicleID,
		ServiceDate:  serviceDate,
		OdometerKm:   *input.OdometerKm,
		Workshop:     input.Workshop,
		ServiceTitle: input.ServiceTitle,
		Cost:         *input.Cost,
		Notes:        input.Notes,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("service record created",
		slog.Int64("record_id", record.ID),
		slog.Int64("vehicle_id", record.VehicleID),
	)
	return record, nil
}

// Get returns one record if the principal owns its vehicle.
func (s *ServiceRecordService) Get(ctx context.Context, principalID, id int64) (*model.ServiceRecord, error) {
	return s.authorize(ctx, principalID, id, "access this service record")
}

// ListByVehicle returns a vehicle's records, most recent service first.
func (s *ServiceRecordService) ListByVehicle(ctx context.Context, principalID, vehicleID int64) ([]model.ServiceRecord, error) {
	if _, err := ownedVehicle(ctx, s.vehicles, principalID, vehicleID, "access this vehicle's service records"); err != nil {
		return nil, err
	}
	return s.records.ListByVehicle(ctx, vehicleID)
}

// Update applies a partial record update. serviceDate compares by instant,
// so a re-send of the same date in another format is not a change.
func (s *ServiceRecordService) Update(ctx context.Context, principalID, id int64, proposed map[string]any) (*model.ServiceRecord, error) {
	if !touchesSchema(model.ServiceRecordPatchSchema, proposed) {
		return nil, apperror.ValidationFailed("", "No fields provided to update.")
	}

	record, err := s.authorize(ctx, principalID, id, "update this service record")
	if err != nil {
		return nil, err
	}

	changes, err := model.ServiceRecordPatchSchema.Diff(record.PatchFields(), proposed)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNoChange,
			Message: "No changes detected in update.",
		}
	}

	if err := applyRecordChanges(record, changes); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("service record updated", slog.Int64("record_id", record.ID))
	return record, nil
}

// Delete removes a record the principal owns transitively.
func (s *ServiceRecordService) Delete(ctx context.Context, principalID, id int64) error {
	if _, err := s.authorize(ctx, principalID, id, "delete this service record"); err != nil {
		return err
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("service record deleted", slog.Int64("record_id", id))
	return nil
}

// authorize resolves a record and checks transitive ownership: the record
// must exist, and its vehicle's owner must be the principal.
func (s *ServiceRecordService) authorize(ctx context.Context, principalID, id int64, action string) (*model.ServiceRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedVehicle(ctx, s.vehicles, principalID, record.VehicleID, action); err != nil {
		return nil, err
	}
	return record, nil
}

func applyRecordChanges(record *model.ServiceRecord, changes map[string]any) error {
	for name := range changes {
		var err error
		switch name {
		case "serviceDate":
			var t time.Time
			t, err = patch.Time(changes, name)
			record.ServiceDate = t
		case "odometerKm":
			record.OdometerKm, err = patch.Int64(changes, name)
		case "workshop":
			record.Workshop, err = patch.String(changes, name)
		case "serviceTitle":
			record.ServiceTitle, err = patch.String(changes, name)
		case "cost":
			record.Cost, err = patch.Int64(changes, name)
		case "notes":
			record.Notes, err = patch.String(changes, name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
