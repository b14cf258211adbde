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

// ServiceRecordRepo implements repository.ServiceRecordRepository.
type ServiceRecordRepo struct {
	db *DB
}

// NewServiceRecordRepo creates a ServiceRecordRepo.
func NewServiceRecordRepo(db *DB) *ServiceRecordRepo {
	return &ServiceRecordRepo{db: db}
}

var _ repository.ServiceRecordRepository = (*ServiceRecordRepo)(nil)

// Create inserts a new service record under its vehicle.
func (r *ServiceRecordRepo) Create(ctx context.Context, record *model.ServiceRecord) error {
	record.CreatedAt = time.Now().UTC()

	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO service_records (vehicle_id, service_date, odometer_km, workshop, service_title, cost, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.VehicleID, record.ServiceDate, record.OdometerKm, record.Workshop,
		record.ServiceTitle, record.Cost, record.Notes, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting service record for vehicle %d: %w", record.VehicleID, err)
	}

	record.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new service record id: %w", err)
	}
	return nil
}

// GetByID retrieves a record. Returns apperror.ErrNotFound if absent.
func (r *ServiceRecordRepo) GetByID(ctx context.Context, id int64) (*model.ServiceRecord, error) {
	var rec model.ServiceRecord
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, vehicle_id, service_date, odometer_km, workshop, service_title, cost, notes, created_at
		 FROM service_records WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.VehicleID, &rec.ServiceDate, &rec.OdometerKm, &rec.Workshop,
		&rec.ServiceTitle, &rec.Cost, &rec.Notes, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Service record")
		}
		return nil, fmt.Errorf("sqlite: getting service record %d: %w", id, err)
	}
	return &rec, nil
}

// ListByVehicle returns the vehicle's records, most recent service first.
func (r *ServiceRecordRepo) ListByVehicle(ctx context.Context, vehicleID int64) ([]model.ServiceRecord, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, vehicle_id, service_date, odometer_km, workshop, service_title, cost, notes, created_at
		 FROM service_records WHERE vehicle_id = ?
		 ORDER BY service_date DESC`,
		vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing service records for vehicle %d: %w", vehicleID, err)
	}
	defer rows.Close()

	records := []model.ServiceRecord{}
	for rows.Next() {
		var rec model.ServiceRecord
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.ServiceDate, &rec.OdometerKm,
			&rec.Workshop, &rec.ServiceTitle, &rec.Cost, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning service record row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Update persists the record's patchable fields.
func (r *ServiceRecordRepo) Update(ctx context.Context, record *model.ServiceRecord) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE service_records SET service_date = ?, odometer_km = ?, workshop = ?, service_title = ?, cost = ?, notes = ?
		 WHERE id = ?`,
		record.ServiceDate, record.OdometerKm, record.Workshop, record.ServiceTitle,
		record.Cost, record.Notes, record.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating service record %d: %w", record.ID, err)
	}
	return requireRow(res, "Service record")
}

// Delete removes a record.
func (r *ServiceRecordRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM service_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting service record %d: %w", id, err)
	}
	return requireRow(res, "Service record")
}
