package service

import (
	"context"
	"fmt"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/patch"
	"github.com/garasiku/servicebook/internal/repository"
)

// ownedVehicle resolves a vehicle and checks that principalID owns it.
// Existence is checked first, so a request for somebody else's vehicle and a
// request for a missing one are distinguishable (404 vs 403), but a 403
// never confirms what the vehicle is. Every resource kind funnels through
// this: service records and reminders authorize via their parent vehicle.
func ownedVehicle(ctx context.Context, vehicles repository.VehicleRepository, principalID, vehicleID int64, action string) (*model.Vehicle, error) {
	vehicle, err := vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.UserID != principalID {
		return nil, apperror.Forbidden(fmt.Sprintf("You are not authorized to %s.", action))
	}
	return vehicle, nil
}

// touchesSchema reports whether the proposal names at least one patchable
// field, null values included. An update that names none is rejected before
// diffing; it is malformed rather than a no-op.
func touchesSchema(schema patch.Schema, proposed map[string]any) bool {
	for _, f := range schema.Fields() {
		if _, ok := proposed[f.Name]; ok {
			return true
		}
	}
	return false
}
