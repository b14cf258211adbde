package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
)

func TestReminderCreate_DuplicateTypePerVehicle(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	vehicle := createTestVehicle(t, NewVehicleRepo(db), user.ID, "B 1234 XY")
	reminders := NewReminderRepo(db)

	km := int64(5000)
	first := &model.ReminderSetting{VehicleID: vehicle.ID, Type: model.ReminderOilChange, ThresholdKm: &km}
	if err := reminders.Create(context.Background(), first); err != nil {
		t.Fatalf("Create() first reminder: %v", err)
	}

	duplicate := &model.ReminderSetting{VehicleID: vehicle.ID, Type: model.ReminderOilChange, ThresholdKm: &km}
	err := reminders.Create(context.Background(), duplicate)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// The same type on a different vehicle is fine; uniqueness is per vehicle.
func TestReminderCreate_SameTypeDifferentVehicle(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	v := NewVehicleRepo(db)
	first := createTestVehicle(t, v, user.ID, "B 1111 AA")
	second := createTestVehicle(t, v, user.ID, "B 2222 BB")
	reminders := NewReminderRepo(db)

	days := int64(180)
	if err := reminders.Create(context.Background(), &model.ReminderSetting{
		VehicleID: first.ID, Type: model.ReminderBattery, ThresholdDays: &days,
	}); err != nil {
		t.Fatalf("Create() on first vehicle: %v", err)
	}
	if err := reminders.Create(context.Background(), &model.ReminderSetting{
		VehicleID: second.ID, Type: model.ReminderBattery, ThresholdDays: &days,
	}); err != nil {
		t.Errorf("Create() on second vehicle: %v", err)
	}
}

func TestReminderListByOwner(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	alice := createTestUser(t, users, "alice", "alice@example.com")
	bob := createTestUser(t, users, "bob", "bob@example.com")
	v := NewVehicleRepo(db)
	aliceCar := createTestVehicle(t, v, alice.ID, "B 1111 AA")
	bobCar := createTestVehicle(t, v, bob.ID, "B 2222 BB")
	reminders := NewReminderRepo(db)

	km := int64(5000)
	for _, rem := range []*model.ReminderSetting{
		{VehicleID: aliceCar.ID, Type: model.ReminderOilChange, ThresholdKm: &km},
		{VehicleID: aliceCar.ID, Type: model.ReminderTireRotation, ThresholdKm: &km},
		{VehicleID: bobCar.ID, Type: model.ReminderOilChange, ThresholdKm: &km},
	} {
		if err := reminders.Create(context.Background(), rem); err != nil {
			t.Fatalf("Create() reminder: %v", err)
		}
	}

	got, err := reminders.ListByOwner(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByOwner() returned %d reminders, want 2", len(got))
	}
	for _, rem := range got {
		if rem.VehicleID != aliceCar.ID {
			t.Errorf("ListByOwner() leaked reminder for vehicle %d", rem.VehicleID)
		}
	}
}

func TestReminderGetByID_RoundTripsOptionalFields(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	vehicle := createTestVehicle(t, NewVehicleRepo(db), user.ID, "B 1234 XY")
	reminders := NewReminderRepo(db)

	km := int64(5000)
	lastKm := int64(42000)
	nextDue := int64(47000)
	lastDate := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	created := &model.ReminderSetting{
		VehicleID:       vehicle.ID,
		Type:            model.ReminderGeneralService,
		ThresholdKm:     &km,
		LastServiceDate: &lastDate,
		LastServiceKm:   &lastKm,
		NextDueKm:       &nextDue,
	}
	if err := reminders.Create(context.Background(), created); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := reminders.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.ThresholdKm == nil || *found.ThresholdKm != km {
		t.Errorf("ThresholdKm = %v, want %d", found.ThresholdKm, km)
	}
	if found.ThresholdDays != nil {
		t.Errorf("ThresholdDays = %v, want nil", found.ThresholdDays)
	}
	if found.NextDueKm == nil || *found.NextDueKm != nextDue {
		t.Errorf("NextDueKm = %v, want %d", found.NextDueKm, nextDue)
	}
	if found.LastServiceDate == nil || !found.LastServiceDate.Equal(lastDate) {
		t.Errorf("LastServiceDate = %v, want %v", found.LastServiceDate, lastDate)
	}
}

func TestReminderDelete_NotFound(t *testing.T) {
	reminders := NewReminderRepo(newTestDB(t))

	err := reminders.Delete(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestReminderExistsByVehicleAndType(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepo(db), "alice", "alice@example.com")
	vehicle := createTestVehicle(t, NewVehicleRepo(db), user.ID, "B 1234 XY")
	reminders := NewReminderRepo(db)

	km := int64(5000)
	rem := &model.ReminderSetting{VehicleID: vehicle.ID, Type: model.ReminderBrakeCheck, ThresholdKm: &km}
	if err := reminders.Create(context.Background(), rem); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	exists, err := reminders.ExistsByVehicleAndType(context.Background(), vehicle.ID, model.ReminderBrakeCheck, 0)
	if err != nil {
		t.Fatalf("ExistsByVehicleAndType() error = %v", err)
	}
	if !exists {
		t.Error("ExistsByVehicleAndType() = false, want true")
	}

	exists, err = reminders.ExistsByVehicleAndType(context.Background(), vehicle.ID, model.ReminderBrakeCheck, rem.ID)
	if err != nil {
		t.Fatalf("ExistsByVehicleAndType() with exclusion: %v", err)
	}
	if exists {
		t.Error("ExistsByVehicleAndType() = true, want false when excluding the row itself")
	}
}
