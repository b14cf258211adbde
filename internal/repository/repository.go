// Package repository declares the storage interfaces consumed by the service
// layer. The sqlite subpackage implements them; service tests substitute
// in-memory mocks.
//
// Conventions shared by every implementation:
//   - a missing row is apperror.ErrNotFound, never (nil, nil)
//   - a UNIQUE constraint violation at commit time is apperror.ErrConflict;
//     it is the storage-level backstop for two requests racing past the
//     uniqueness guard with the same value
//   - ExistsBy* probes are the guard's primary conflict check and run before
//     any write is attempted
package repository

import (
	"context"

	"github.com/garasiku/servicebook/internal/model"
)

// ListOptions carries pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	// ExistsByField reports whether any user other than excludeID holds
	// value in the given unique field ("name" or "email"). Pass
	// excludeID 0 for create-time checks.
	ExistsByField(ctx context.Context, field, value string, excludeID int64) (bool, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, id int64) (*model.Vehicle, error)
	ListByUser(ctx context.Context, userID int64, opts ListOptions) ([]model.Vehicle, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Update(ctx context.Context, vehicle *model.Vehicle) error
	// Delete removes the vehicle and cascades to its service records and
	// reminder settings.
	Delete(ctx context.Context, id int64) error
	UpdatePhoto(ctx context.Context, id int64, photo string) error
	// ExistsByField reports whether any vehicle other than excludeID
	// holds value in the given unique field ("plateNumber").
	ExistsByField(ctx context.Context, field, value string, excludeID int64) (bool, error)
}

type ServiceRecordRepository interface {
	Create(ctx context.Context, record *model.ServiceRecord) error
	GetByID(ctx context.Context, id int64) (*model.ServiceRecord, error)
	// ListByVehicle returns the vehicle's records, most recent service
	// date first.
	ListByVehicle(ctx context.Context, vehicleID int64) ([]model.ServiceRecord, error)
	Update(ctx context.Context, record *model.ServiceRecord) error
	Delete(ctx context.Context, id int64) error
}

type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.ReminderSetting) error
	GetByID(ctx context.Context, id int64) (*model.ReminderSetting, error)
	// ListByOwner returns every reminder across all of the user's
	// vehicles.
	ListByOwner(ctx context.Context, userID int64) ([]model.ReminderSetting, error)
	Delete(ctx context.Context, id int64) error
	// ExistsByVehicleAndType guards the compound (vehicleId, type)
	// uniqueness invariant.
	ExistsByVehicleAndType(ctx context.Context, vehicleID int64, t model.ReminderType, excludeID int64) (bool, error)
}
