// Package model defines the persisted entities and, for each mutable one,
// the declarative patch schema consumed by the update differ and the
// uniqueness guard.
package model

import (
	"time"

	"github.com/garasiku/servicebook/internal/patch"
)

// User is a registered account. A User owns vehicles; vehicles own service
// records and reminder settings, so every resource in the system traces its
// ownership back to exactly one User.
//
// PasswordHash is a self-describing bcrypt digest and is never serialized.
// Role and Photo are optional; the zero string means unset.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`  // unique
	Email        string    `json:"email"` // unique
	PasswordHash string    `json:"-"`
	Role         string    `json:"role,omitempty"`
	Photo        string    `json:"photo,omitempty"` // object storage reference
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatchSchema lists the fields a profile update may touch. Password is
// deliberately absent: its equality is semantic (bcrypt comparison), so the
// user service handles it beside the schema diff.
var UserPatchSchema = patch.Schema{
	{Name: "name", Unique: true},
	{Name: "email", Unique: true},
}

// PatchFields snapshots the patchable state for the differ.
func (u *User) PatchFields() map[string]any {
	return map[string]any{
		"name":  u.Name,
		"email": u.Email,
	}
}
