package service

// Hand-written in-memory mocks for the repository interfaces. The services
// only see the interfaces, so these swap in for the sqlite implementations
// without the services noticing.

import (
	"context"
	"sort"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/repository"
)

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email || u.Name == user.Name {
			return apperror.Conflict("user", "Username or email is already registered.")
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("User")
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("User")
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("User")
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) ExistsByField(_ context.Context, field, value string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		if (field == "name" && u.Name == value) || (field == "email" && u.Email == value) {
			return true, nil
		}
	}
	return false, nil
}

type mockVehicleRepo struct {
	vehicles map[int64]*model.Vehicle
	nextID   int64
}

func newMockVehicleRepo() *mockVehicleRepo {
	return &mockVehicleRepo{vehicles: make(map[int64]*model.Vehicle)}
}

func (m *mockVehicleRepo) Create(_ context.Context, vehicle *model.Vehicle) error {
	for _, v := range m.vehicles {
		if v.PlateNumber == vehicle.PlateNumber {
			return apperror.Conflict("plateNumber", "PlateNumber already registered, Please check again.")
		}
	}
	m.nextID++
	vehicle.ID = m.nextID
	stored := *vehicle
	m.vehicles[vehicle.ID] = &stored
	return nil
}

func (m *mockVehicleRepo) GetByID(_ context.Context, id int64) (*model.Vehicle, error) {
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, apperror.NotFound("Vehicle")
	}
	result := *vehicle
	return &result, nil
}

func (m *mockVehicleRepo) ListByUser(_ context.Context, userID int64, opts repository.ListOptions) ([]model.Vehicle, error) {
	result := []model.Vehicle{}
	for _, v := range m.vehicles {
		if v.UserID == userID {
			result = append(result, *v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if opts.Offset >= len(result) {
		return []model.Vehicle{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockVehicleRepo) CountByUser(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, v := range m.vehicles {
		if v.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockVehicleRepo) Update(_ context.Context, vehicle *model.Vehicle) error {
	if _, ok := m.vehicles[vehicle.ID]; !ok {
		return apperror.NotFound("Vehicle")
	}
	stored := *vehicle
	m.vehicles[vehicle.ID] = &stored
	return nil
}

func (m *mockVehicleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.vehicles[id]; !ok {
		return apperror.NotFound("Vehicle")
	}
	delete(m.vehicles, id)
	return nil
}

func (m *mockVehicleRepo) UpdatePhoto(_ context.Context, id int64, photo string) error {
	vehicle, ok := m.vehicles[id]
	if !ok {
		return apperror.NotFound("Vehicle")
	}
	vehicle.Photo = photo
	return nil
}

func (m *mockVehicleRepo) ExistsByField(_ context.Context, field, value string, excludeID int64) (bool, error) {
	for _, v := range m.vehicles {
		if v.ID == excludeID {
			continue
		}
		if field == "plateNumber" && v.PlateNumber == value {
			return true, nil
		}
	}
	return false, nil
}

type mockRecordRepo struct {
	records map[int64]*model.ServiceRecord
	nextID  int64
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[int64]*model.ServiceRecord)}
}

func (m *mockRecordRepo) Create(_ context.Context, record *model.ServiceRecord) error {
	m.nextID++
	record.ID = m.nextID
	stored := *record
	m.records[record.ID] = &stored
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id int64) (*model.ServiceRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, apperror.NotFound("Service record")
	}
	result := *record
	return &result, nil
}

func (m *mockRecordRepo) ListByVehicle(_ context.Context, vehicleID int64) ([]model.ServiceRecord, error) {
	result := []model.ServiceRecord{}
	for _, r := range m.records {
		if r.VehicleID == vehicleID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ServiceDate.After(result[j].ServiceDate)
	})
	return result, nil
}

func (m *mockRecordRepo) Update(_ context.Context, record *model.ServiceRecord) error {
	if _, ok := m.records[record.ID]; !ok {
		return apperror.NotFound("Service record")
	}
	stored := *record
	m.records[record.ID] = &stored
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return apperror.NotFound("Service record")
	}
	delete(m.records, id)
	return nil
}

type mockReminderRepo struct {
	reminders map[int64]*model.ReminderSetting
	owners    *mockVehicleRepo // resolves vehicle ownership for ListByOwner
	nextID    int64
}

func newMockReminderRepo(owners *mockVehicleRepo) *mockReminderRepo {
	return &mockReminderRepo{
		reminders: make(map[int64]*model.ReminderSetting),
		owners:    owners,
	}
}

func (m *mockReminderRepo) Create(_ context.Context, reminder *model.ReminderSetting) error {
	for _, r := range m.reminders {
		if r.VehicleID == reminder.VehicleID && r.Type == reminder.Type {
			return apperror.Conflict("type", "reminder type already exists for this vehicle")
		}
	}
	m.nextID++
	reminder.ID = m.nextID
	stored := *reminder
	m.reminders[reminder.ID] = &stored
	return nil
}

func (m *mockReminderRepo) GetByID(_ context.Context, id int64) (*model.ReminderSetting, error) {
	reminder, ok := m.reminders[id]
	if !ok {
		return nil, apperror.NotFound("Reminder")
	}
	result := *reminder
	return &result, nil
}

func (m *mockReminderRepo) ListByOwner(_ context.Context, userID int64) ([]model.ReminderSetting, error) {
	result := []model.ReminderSetting{}
	for _, r := range m.reminders {
		vehicle, ok := m.owners.vehicles[r.VehicleID]
		if ok && vehicle.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockReminderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.reminders[id]; !ok {
		return apperror.NotFound("Reminder")
	}
	delete(m.reminders, id)
	return nil
}

func (m *mockReminderRepo) ExistsByVehicleAndType(_ context.Context, vehicleID int64, t model.ReminderType, excludeID int64) (bool, error) {
	for _, r := range m.reminders {
		if r.ID == excludeID {
			continue
		}
		if r.VehicleID == vehicleID && r.Type == t {
			return true, nil
		}
	}
	return false, nil
}

// Compile-time checks that the mocks track the interfaces.
var (
	_ repository.UserRepository          = (*mockUserRepo)(nil)
	_ repository.VehicleRepository       = (*mockVehicleRepo)(nil)
	_ repository.ServiceRecordRepository = (*mockRecordRepo)(nil)
	_ repository.ReminderRepository      = (*mockReminderRepo)(nil)
)
