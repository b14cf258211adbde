package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/patch"
	"github.com/garasiku/servicebook/internal/repository"
)

// ReminderService handles maintenance reminder settings. Like service
// records, reminders authorize through their parent vehicle.
type ReminderService struct {
	reminders repository.ReminderRepository
	vehicles  repository.VehicleRepository
	logger    *slog.Logger
}

// NewReminderService creates a ReminderService.
func NewReminderService(
	reminders repository.ReminderRepository,
	vehicles repository.VehicleRepository,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		vehicles:  vehicles,
		logger:    logger,
	}
}

// CreateReminderInput carries the fields for reminder creation. All
// threshold fields are optional; a reminder may be distance-based,
// time-based or both.
type CreateReminderInput struct {
	VehicleID       *int64  `json:"vehicleId"`
	Type            string  `json:"type"`
	ThresholdKm     *int64  `json:"thresholdKm"`
	ThresholdDays   *int64  `json:"thresholdDays"`
	LastServiceDate *string `json:"lastServiceDate"`
	LastServiceKm   *int64  `json:"lastServiceKm"`
	NextDueKm       *int64  `json:"nextDueKm"`
}

// Create validates and creates a reminder setting. At most one reminder of
// each type exists per vehicle; the guard probes first and the UNIQUE
// constraint backstops the race.
func (s *ReminderService) Create(ctx context.Context, principalID int64, input CreateReminderInput) (*model.ReminderSetting, error) {
	reminderType := model.ReminderType(input.Type)
	if !reminderType.Valid() {
		return nil, apperror.ValidationFailed("type",
			fmt.Sprintf("Invalid type. Must be one of: %s", model.ReminderTypeList()))
	}
	if input.VehicleID == nil {
		return nil, apperror.ValidationFailed("vehicleId", "Field vehicleId is required")
	}

	if _, err := ownedVehicle(ctx, s.vehicles, principalID, *input.VehicleID, "set a reminder for this vehicle"); err != nil {
		return nil, err
	}

	exists, err := s.reminders.ExistsByVehicleAndType(ctx, *input.VehicleID, reminderType, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("type",
			fmt.Sprintf("A reminder with type %q already exists for this vehicle.", reminderType))
	}

	var lastServiceDate *time.Time
	if input.LastServiceDate != nil {
		t, err := patch.Time(map[string]any{"lastServiceDate": *input.LastServiceDate}, "lastServiceDate")
		if err != nil {
			return nil, err
		}
		lastServiceDate = &t
	}

	reminder := &model.ReminderSetting{
		VehicleID:       *input.VehicleID,
		Type:            reminderType,
		ThresholdKm:     input.ThresholdKm,
		ThresholdDays:   input.ThresholdDays,
		LastServiceDate: lastServiceDate,
		LastServiceKm:   input.LastServiceKm,
		NextDueKm:       input.NextDueKm,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, err
	}

	s.logger.Info("reminder created",
		slog.Int64("reminder_id", reminder.ID),
		slog.Int64("vehicle_id", reminder.VehicleID),
		slog.String("type", string(reminder.Type)),
	)
	return reminder, nil
}

// ListByUser returns every reminder across all of the principal's vehicles.
func (s *ReminderService) ListByUser(ctx context.Context, principalID int64) ([]model.ReminderSetting, error) {
	return s.reminders.ListByOwner(ctx, principalID)
}

// Delete removes a reminder the principal owns transitively.
func (s *ReminderService) Delete(ctx context.Context, principalID, id int64) error {
	reminder, err := s.reminders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ownedVehicle(ctx, s.vehicles, principalID, reminder.VehicleID, "delete this reminder setting"); err != nil {
		return err
	}
	if err := s.reminders.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("reminder deleted", slog.Int64("reminder_id", id))
	return nil
}
