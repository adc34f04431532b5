package service

import (
	"context"
	"sync"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

//
// In-memory fakes for the repository and gateway interfaces.
//

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices []models.Device

	offlineIDs  []string
	powerWrites map[string]bool
	telemetry   map[string]models.DeviceStatus
	listErr     error
}

func newFakeDeviceRepo(devices ...models.Device) *fakeDeviceRepo {
	return &fakeDeviceRepo{
		devices:     devices,
		powerWrites: make(map[string]bool),
		telemetry:   make(map[string]models.DeviceStatus),
	}
}

func (f *fakeDeviceRepo) List(context.Context) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Device, len(f.devices))
	copy(out, f.devices)
	return out, nil
}

func (f *fakeDeviceRepo) GetByID(_ context.Context, id string) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.devices {
		if f.devices[i].ID == id {
			d := f.devices[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeDeviceRepo) GetByAddress(_ context.Context, address string) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.devices {
		if f.devices[i].Address == address {
			d := f.devices[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeDeviceRepo) Create(_ context.Context, d models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = append(f.devices, d)
	return nil
}

func (f *fakeDeviceRepo) Update(_ context.Context, d models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.devices {
		if f.devices[i].ID == d.ID {
			f.devices[i] = d
		}
	}
	return nil
}

func (f *fakeDeviceRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.devices {
		if f.devices[i].ID == id {
			f.devices = append(f.devices[:i], f.devices[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDeviceRepo) UpdateTelemetry(_ context.Context, id string, st models.DeviceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.telemetry[id] = st
	return nil
}

func (f *fakeDeviceRepo) SetPowerState(_ context.Context, id string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.powerWrites[id] = on
	for i := range f.devices {
		if f.devices[i].ID == id {
			f.devices[i].PowerState = on
		}
	}
	return nil
}

func (f *fakeDeviceRepo) MarkOffline(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offlineIDs = append(f.offlineIDs, id)
	for i := range f.devices {
		if f.devices[i].ID == id {
			f.devices[i].Status = models.DeviceOffline
		}
	}
	return nil
}

type fakeCategoryRepo struct {
	categories []models.Category
}

func (f *fakeCategoryRepo) List(context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) GetByName(_ context.Context, name string) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].Name == name {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) Create(_ context.Context, c models.Category) error {
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c models.Category) error {
	for i := range f.categories {
		if f.categories[i].ID == c.ID {
			f.categories[i] = c
		}
	}
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			break
		}
	}
	return nil
}

type fakeReadingRepo struct {
	mu       sync.Mutex
	readings []models.EnergyReading
}

func (f *fakeReadingRepo) Append(_ context.Context, r models.EnergyReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings = append(f.readings, r)
	return nil
}

func (f *fakeReadingRepo) List(_ context.Context, deviceID string, from, to time.Time) ([]models.EnergyReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EnergyReading
	for _, r := range f.readings {
		if r.DeviceID != deviceID {
			continue
		}
		if !from.IsZero() && r.TakenAt.Before(from) {
			continue
		}
		if !to.IsZero() && r.TakenAt.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReadingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.readings)
}

type fakeWorkflowRepo struct {
	workflows  []models.Workflow
	executions []models.WorkflowExecution

	finishedID     string
	finishedStatus string
	finishedMsg    string
	finishedAt     time.Time
}

func (f *fakeWorkflowRepo) List(context.Context) ([]models.Workflow, error) {
	return f.workflows, nil
}

func (f *fakeWorkflowRepo) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	for i := range f.workflows {
		if f.workflows[i].ID == id {
			w := f.workflows[i]
			return &w, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkflowRepo) Create(_ context.Context, w models.Workflow) error {
	f.workflows = append(f.workflows, w)
	return nil
}

func (f *fakeWorkflowRepo) Update(_ context.Context, w models.Workflow) error {
	for i := range f.workflows {
		if f.workflows[i].ID == w.ID {
			f.workflows[i] = w
		}
	}
	return nil
}

func (f *fakeWorkflowRepo) Delete(_ context.Context, id string) error {
	for i := range f.workflows {
		if f.workflows[i].ID == id {
			f.workflows = append(f.workflows[:i], f.workflows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeWorkflowRepo) CreateExecution(_ context.Context, e models.WorkflowExecution) error {
	f.executions = append(f.executions, e)
	return nil
}

func (f *fakeWorkflowRepo) FinishExecution(_ context.Context, id, status string, completedAt time.Time, errMsg string) error {
	f.finishedID = id
	f.finishedStatus = status
	f.finishedMsg = errMsg
	f.finishedAt = completedAt
	return nil
}

func (f *fakeWorkflowRepo) ListExecutions(_ context.Context, workflowID string) ([]models.WorkflowExecution, error) {
	var out []models.WorkflowExecution
	for _, e := range f.executions {
		if e.WorkflowID == workflowID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeGateway scripts the device gateway per address.
type fakeGateway struct {
	mu       sync.Mutex
	statuses map[string]models.DeviceStatus
	toggles  map[string]models.ToggleResult
	calls    []string // addresses in call order
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		statuses: make(map[string]models.DeviceStatus),
		toggles:  make(map[string]models.ToggleResult),
	}
}

func (f *fakeGateway) record(address string) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	f.mu.Unlock()
}

func (f *fakeGateway) status(address string) models.DeviceStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.statuses[address]; ok {
		return st
	}
	return models.DeviceStatus{Address: address, Status: models.DeviceOffline, SignalDBm: -100, LastSeen: time.Now()}
}

func (f *fakeGateway) GetStatus(_ context.Context, address string, _ time.Duration) models.DeviceStatus {
	f.record(address)
	return f.status(address)
}

func (f *fakeGateway) GetEnergy(_ context.Context, address string, _ time.Duration) models.DeviceStatus {
	f.record(address)
	return f.status(address)
}

func (f *fakeGateway) Toggle(_ context.Context, address string, _ int, _ time.Duration) models.ToggleResult {
	f.record(address)
	return f.toggles[address]
}

func (f *fakeGateway) SetPower(_ context.Context, address string, on bool, _ int, _ time.Duration) models.ToggleResult {
	f.record(address)
	if res, ok := f.toggles[address]; ok {
		return res
	}
	return models.ToggleResult{Success: true, PowerState: on}
}
