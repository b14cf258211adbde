package model

import (
	"time"

	"github.com/garasiku/servicebook/internal/patch"
)

// ServiceRecord is one workshop visit logged against a vehicle. Its owner is
// the owning vehicle's user, resolved transitively.
type ServiceRecord struct {
	ID           int64     `json:"id"`
	VehicleID    int64     `json:"vehicleId"`
	ServiceDate  time.Time `json:"serviceDate"`
	OdometerKm   int64     `json:"odometerKm"`
	Workshop     string    `json:"workshop"`
	ServiceTitle string    `json:"serviceTitle"`
	Cost         int64     `json:"cost"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ServiceRecordPatchSchema lists the fields a record update may touch.
// serviceDate is temporal: two representations of the same instant are not
// a change.
var ServiceRecordPatchSchema = patch.Schema{
	{Name: "serviceDate", Temporal: true},
	{Name: "odometerKm"},
	{Name: "workshop"},
	{Name: "serviceTitle"},
	{Name: "cost"},
	{Name: "notes"},
}

// PatchFields snapshots the patchable state for the differ.
func (r *ServiceRecord) PatchFields() map[string]any {
	return map[string]any{
		"serviceDate":  r.ServiceDate,
		"odometerKm":   r.OdometerKm,
		"workshop":     r.Workshop,
		"serviceTitle": r.ServiceTitle,
		"cost":         r.Cost,
		"notes":        r.Notes,
	}
}
