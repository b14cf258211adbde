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

// VehicleRepo implements repository.VehicleRepository.
type VehicleRepo struct {
	db *DB
}

// NewVehicleRepo creates a VehicleRepo.
func NewVehicleRepo(db *DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

var vehicleColumns = map[string]string{
	"plateNumber": "plate_number",
}

// Create inserts a new vehicle for its owner. A UNIQUE violation on the
// plate number is the storage backstop for the uniqueness guard.
func (r *VehicleRepo) Create(ctx context.Context, vehicle *model.Vehicle) error {
	now := time.Now().UTC()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO vehicles (user_id, brand, model, plate_number, year, current_km, photo, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vehicle.UserID, vehicle.Brand, vehicle.Model, vehicle.PlateNumber,
		vehicle.Year, vehicle.CurrentKm, vehicle.Photo, vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("plateNumber", "PlateNumber already registered, Please check again.")
		}
		return fmt.Errorf("sqlite: inserting vehicle %q: %w", vehicle.PlateNumber, err)
	}

	vehicle.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new vehicle id: %w", err)
	}
	return nil
}

// GetByID retrieves a vehicle. Returns apperror.ErrNotFound if absent.
func (r *VehicleRepo) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	var v model.Vehicle
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, brand, model, plate_number, year, current_km, photo, created_at, updated_at
		 FROM vehicles WHERE id = ?`, id,
	).Scan(&v.ID, &v.UserID, &v.Brand, &v.Model, &v.PlateNumber, &v.Year,
		&v.CurrentKm, &v.Photo, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Vehicle")
		}
		return nil, fmt.Errorf("sqlite: getting vehicle %d: %w", id, err)
	}
	return &v, nil
}

// ListByUser returns the user's vehicles, newest first.
func (r *VehicleRepo) ListByUser(ctx context.Context, userID int64, opts repository.ListOptions) ([]model.Vehicle, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, brand, model, plate_number, year, current_km, photo, created_at, updated_at
		 FROM vehicles WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing vehicles for user %d: %w", userID, err)
	}
	defer rows.Close()

	vehicles := []model.Vehicle{}
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.UserID, &v.Brand, &v.Model, &v.PlateNumber,
			&v.Year, &v.CurrentKm, &v.Photo, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning vehicle row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// CountByUser returns the user's total vehicle count, for pagination
// metadata.
func (r *VehicleRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vehicles WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting vehicles for user %d: %w", userID, err)
	}
	return count, nil
}

// Update persists the vehicle's patchable fields.
func (r *VehicleRepo) Update(ctx context.Context, vehicle *model.Vehicle) error {
	vehicle.UpdatedAt = time.Now().UTC()

	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE vehicles SET brand = ?, model = ?, plate_number = ?, year = ?, current_km = ?, updated_at = ?
		 WHERE id = ?`,
		vehicle.Brand, vehicle.Model, vehicle.PlateNumber, vehicle.Year,
		vehicle.CurrentKm, vehicle.UpdatedAt, vehicle.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("plateNumber", "PlateNumber already used by another vehicle.")
		}
		return fmt.Errorf("sqlite: updating vehicle %d: %w", vehicle.ID, err)
	}
	return requireRow(res, "Vehicle")
}

// Delete removes the vehicle; the FK cascade removes its service records
// and reminder settings in the same statement.
func (r *VehicleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting vehicle %d: %w", id, err)
	}
	return requireRow(res, "Vehicle")
}

// UpdatePhoto stores the object storage reference for the vehicle's photo.
func (r *VehicleRepo) UpdatePhoto(ctx context.Context, id int64, photo string) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE vehicles SET photo = ?, updated_at = ? WHERE id = ?`,
		photo, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating vehicle %d photo: %w", id, err)
	}
	return requireRow(res, "Vehicle")
}

// ExistsByField implements the uniqueness probe for vehicle fields.
func (r *VehicleRepo) ExistsByField(ctx context.Context, field, value string, excludeID int64) (bool, error) {
	column, ok := vehicleColumns[field]
	if !ok {
		return false, fmt.Errorf("sqlite: %q is not a unique vehicle field", field)
	}

	var count int
	err := r.db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM vehicles WHERE %s = ? AND id != ?`, column),
		value, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: probing vehicles.%s: %w", column, err)
	}
	return count > 0, nil
}
