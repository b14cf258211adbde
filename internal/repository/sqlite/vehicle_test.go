package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/repository"
)

// createTestVehicle creates a vehicle for userID and fails the test if it
// errors.
func createTestVehicle(t *testing.T, v *VehicleRepo, userID int64, plate string) *model.Vehicle {
	t.Helper()
	vehicle := &model.Vehicle{
		UserID:      userID,
		Brand:       "Toyota",
		Model:       "Avanza",
		PlateNumber: plate,
		Year:        2020,
		CurrentKm:   42000,
	}
	if err := v.Create(context.Background(), vehicle); err != nil {
		t.Fatalf("failed to create test vehicle: %v", err)
	}
	return vehicle
}

func TestVehicleCreate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)

	vehicle := createTestVehicle(t, v, user.ID, "B 1234 XY")

	if vehicle.ID == 0 {
		t.Error("Create() did not set vehicle.ID")
	}
	if vehicle.CreatedAt.IsZero() {
		t.Error("Create() did not set vehicle.CreatedAt")
	}
}

func TestVehicleCreate_DuplicatePlate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)
	createTestVehicle(t, v, user.ID, "B 1234 XY")

	duplicate := &model.Vehicle{
		UserID:      user.ID,
		Brand:       "Honda",
		Model:       "Brio",
		PlateNumber: "B 1234 XY",
		Year:        2021,
	}
	err := v.Create(context.Background(), duplicate)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestVehicleGetByID_NotFound(t *testing.T) {
	v := NewVehicleRepo(newTestDB(t))

	_, err := v.GetByID(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestVehicleListByUser(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	alice := createTestUser(t, users, "alice", "alice@example.com")
	bob := createTestUser(t, users, "bob", "bob@example.com")
	v := NewVehicleRepo(db)

	createTestVehicle(t, v, alice.ID, "B 1111 AA")
	createTestVehicle(t, v, alice.ID, "B 2222 BB")
	createTestVehicle(t, v, bob.ID, "B 3333 CC")

	got, err := v.ListByUser(context.Background(), alice.ID, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByUser() returned %d vehicles, want 2", len(got))
	}
	for _, vehicle := range got {
		if vehicle.UserID != alice.ID {
			t.Errorf("ListByUser() leaked vehicle owned by user %d", vehicle.UserID)
		}
	}

	count, err := v.CountByUser(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("CountByUser() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountByUser() = %d, want 2", count)
	}
}

func TestVehicleListByUser_Pagination(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)

	for _, plate := range []string{"B 1 A", "B 2 B", "B 3 C"} {
		createTestVehicle(t, v, user.ID, plate)
	}

	page, err := v.ListByUser(context.Background(), user.ID, repository.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(page) != 1 {
		t.Errorf("ListByUser() page = %d vehicles, want 1", len(page))
	}
}

func TestVehicleUpdate_DuplicatePlate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)
	createTestVehicle(t, v, user.ID, "B 1234 XY")
	other := createTestVehicle(t, v, user.ID, "B 5678 ZZ")

	other.PlateNumber = "B 1234 XY"
	err := v.Update(context.Background(), other)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Update() error = %v, want ErrConflict", err)
	}
}

func TestVehicleUpdatePhoto(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)
	vehicle := createTestVehicle(t, v, user.ID, "B 1234 XY")

	if err := v.UpdatePhoto(context.Background(), vehicle.ID, "vehicles/abc123.jpg"); err != nil {
		t.Fatalf("UpdatePhoto() error = %v", err)
	}

	found, err := v.GetByID(context.Background(), vehicle.ID)
	if err != nil {
		t.Fatalf("GetByID() after UpdatePhoto: %v", err)
	}
	if found.Photo != "vehicles/abc123.jpg" {
		t.Errorf("Photo = %q, want %q", found.Photo, "vehicles/abc123.jpg")
	}
}

// TestVehicleDelete_Cascades verifies that deleting a vehicle removes its
// service records and reminder settings through the foreign key cascade.
func TestVehicleDelete_Cascades(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)
	vehicle := createTestVehicle(t, v, user.ID, "B 1234 XY")

	records := NewServiceRecordRepo(db)
	record := &model.ServiceRecord{
		VehicleID:    vehicle.ID,
		ServiceDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		OdometerKm:   43000,
		Workshop:     "AutoFix",
		ServiceTitle: "Oil change",
		Cost:         350000,
	}
	if err := records.Create(context.Background(), record); err != nil {
		t.Fatalf("creating service record: %v", err)
	}

	reminders := NewReminderRepo(db)
	km := int64(5000)
	reminder := &model.ReminderSetting{
		VehicleID:   vehicle.ID,
		Type:        model.ReminderOilChange,
		ThresholdKm: &km,
	}
	if err := reminders.Create(context.Background(), reminder); err != nil {
		t.Fatalf("creating reminder: %v", err)
	}

	if err := v.Delete(context.Background(), vehicle.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := records.GetByID(context.Background(), record.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("service record survived vehicle delete: err = %v", err)
	}
	if _, err := reminders.GetByID(context.Background(), reminder.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("reminder survived vehicle delete: err = %v", err)
	}
}

func TestVehicleExistsByField(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)
	vehicle := createTestVehicle(t, v, user.ID, "B 1234 XY")

	exists, err := v.ExistsByField(context.Background(), "plateNumber", "B 1234 XY", 0)
	if err != nil {
		t.Fatalf("ExistsByField() error = %v", err)
	}
	if !exists {
		t.Error("ExistsByField() = false, want true for taken plate")
	}

	exists, err = v.ExistsByField(context.Background(), "plateNumber", "B 1234 XY", vehicle.ID)
	if err != nil {
		t.Fatalf("ExistsByField() with exclusion: %v", err)
	}
	if exists {
		t.Error("ExistsByField() = true, want false when excluding the owner")
	}
}
