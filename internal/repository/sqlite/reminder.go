package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/repository"
)

// ReminderRepo implements repository.ReminderRepository.
type ReminderRepo struct {
	db *DB
}

// NewReminderRepo creates a ReminderRepo.
func NewReminderRepo(db *DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

var _ repository.ReminderRepository = (*ReminderRepo)(nil)

// Create inserts a new reminder setting. The UNIQUE(vehicle_id, type)
// constraint is the storage backstop for the per-vehicle type guard.
func (r *ReminderRepo) Create(ctx context.Context, reminder *model.ReminderSetting) error {
	reminder.CreatedAt = time.Now().UTC()

	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO reminder_settings (vehicle_id, type, threshold_km, threshold_days, last_service_date, last_service_km, next_due_km, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.VehicleID, string(reminder.Type), reminder.ThresholdKm, reminder.ThresholdDays,
		reminder.LastServiceDate, reminder.LastServiceKm, reminder.NextDueKm, reminder.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("type",
				fmt.Sprintf("A reminder with type %q already exists for this vehicle.", reminder.Type))
		}
		return fmt.Errorf("sqlite: inserting reminder for vehicle %d: %w", reminder.VehicleID, err)
	}

	reminder.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new reminder id: %w", err)
	}
	return nil
}

// GetByID retrieves a reminder setting. Returns apperror.ErrNotFound if
// absent.
func (r *ReminderRepo) GetByID(ctx context.Context, id int64) (*model.ReminderSetting, error) {
	var rem model.ReminderSetting
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, vehicle_id, type, threshold_km, threshold_days, last_service_date, last_service_km, next_due_km, created_at
		 FROM reminder_settings WHERE id = ?`, id,
	).Scan(&rem.ID, &rem.VehicleID, &rem.Type, &rem.ThresholdKm, &rem.ThresholdDays,
		&rem.LastServiceDate, &rem.LastServiceKm, &rem.NextDueKm, &rem.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Reminder")
		}
		return nil, fmt.Errorf("sqlite: getting reminder %d: %w", id, err)
	}
	return &rem, nil
}

// ListByOwner returns every reminder across all of the user's vehicles,
// joined through the vehicles table.
func (r *ReminderRepo) ListByOwner(ctx context.Context, userID int64) ([]model.ReminderSetting, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT r.id, r.vehicle_id, r.type, r.threshold_km, r.threshold_days, r.last_service_date, r.last_service_km, r.next_due_km, r.created_at
		 FROM reminder_settings r
		 JOIN vehicles v ON v.id = r.vehicle_id
		 WHERE v.user_id = ?
		 ORDER BY r.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reminders for user %d: %w", userID, err)
	}
	defer rows.Close()

	reminders := []model.ReminderSetting{}
	for rows.Next() {
		var rem model.ReminderSetting
		if err := rows.Scan(&rem.ID, &rem.VehicleID, &rem.Type, &rem.ThresholdKm,
			&rem.ThresholdDays, &rem.LastServiceDate, &rem.LastServiceKm,
			&rem.NextDueKm, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reminder row: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// Delete removes a reminder setting.
func (r *ReminderRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM reminder_settings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting reminder %d: %w", id, err)
	}
	return requireRow(res, "Reminder")
}

// ExistsByVehicleAndType implements the compound uniqueness probe.
func (r *ReminderRepo) ExistsByVehicleAndType(ctx context.Context, vehicleID int64, t model.ReminderType, excludeID int64) (bool, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminder_settings WHERE vehicle_id = ? AND type = ? AND id != ?`,
		vehicleID, string(t), excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: probing reminders for vehicle %d type %s: %w", vehicleID, t, err)
	}
	return count > 0, nil
}
