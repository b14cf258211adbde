package model

import (
	"strings"
	"time"
)

// ReminderType enumerates the maintenance categories a reminder can track.
// At most one ReminderSetting of each type exists per vehicle.
type ReminderType string

const (
	ReminderOilChange      ReminderType = "OIL_CHANGE"
	ReminderGeneralService ReminderType = "GENERAL_SERVICE"
	ReminderTireRotation   ReminderType = "TIRE_ROTATION"
	ReminderBrakeCheck     ReminderType = "BRAKE_CHECK"
	ReminderBattery        ReminderType = "BATTERY"
)

// ReminderTypes lists every valid type, in the order shown in error
// messages.
var ReminderTypes = []ReminderType{
	ReminderOilChange,
	ReminderGeneralService,
	ReminderTireRotation,
	ReminderBrakeCheck,
	ReminderBattery,
}

// Valid reports whether t is a known reminder type.
func (t ReminderType) Valid() bool {
	for _, known := range ReminderTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ReminderTypeList formats the valid types for validation messages.
func ReminderTypeList() string {
	names := make([]string, len(ReminderTypes))
	for i, t := range ReminderTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ReminderSetting configures one maintenance reminder for a vehicle. The
// threshold fields are optional: a reminder may be distance-based, time-based
// or both. Ownership is transitive through the vehicle.
type ReminderSetting struct {
	ID              int64        `json:"id"`
	VehicleID       int64        `json:"vehicleId"`
	Type            ReminderType `json:"type"` // unique per vehicle
	ThresholdKm     *int64       `json:"thresholdKm,omitempty"`
	ThresholdDays   *int64       `json:"thresholdDays,omitempty"`
	LastServiceDate *time.Time   `json:"lastServiceDate,omitempty"`
	LastServiceKm   *int64       `json:"lastServiceKm,omitempty"`
	NextDueKm       *int64       `json:"nextDueKm,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}
