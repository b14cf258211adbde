package model

import (
	"time"

	"github.com/garasiku/servicebook/internal/patch"
)

// Vehicle belongs to exactly one User. Child resources (service records,
// reminder settings) reference it by ID and inherit its owner.
type Vehicle struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	PlateNumber string    `json:"plateNumber"` // globally unique
	Year        int64     `json:"year"`
	CurrentKm   int64     `json:"currentKm"`
	Photo       string    `json:"photo,omitempty"` // object storage reference
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VehiclePatchSchema lists the fields a vehicle update may touch. Ownership
// (userId) and the photo reference are not patchable through PATCH; the
// photo changes only via the image upload endpoint.
var VehiclePatchSchema = patch.Schema{
	{Name: "brand"},
	{Name: "model"},
	{Name: "plateNumber", Unique: true},
	{Name: "year"},
	{Name: "currentKm"},
}

// PatchFields snapshots the patchable state for the differ.
func (v *Vehicle) PatchFields() map[string]any {
	return map[string]any{
		"brand":       v.Brand,
		"model":       v.Model,
		"plateNumber": v.PlateNumber,
		"year":        v.Year,
		"currentKm":   v.CurrentKm,
	}
}
