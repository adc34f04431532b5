package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
)

// DeviceParams carries the user-editable device fields.
type DeviceParams struct {
	Name       string
	Address    string
	CategoryID *string
}

// How long the detached persistence of a live refresh may take before we
// give up on it.
const backgroundPersistTimeout = 10 * time.Second

type DeviceService struct {
	deviceRepo   repository.DeviceRepo
	categoryRepo repository.CategoryRepo
	gateway      DeviceGateway
	timeout      time.Duration
	log          *logger.Logger
}

func NewDeviceService(deviceRepo repository.DeviceRepo, categoryRepo repository.CategoryRepo, gateway DeviceGateway, timeout time.Duration, log *logger.Logger) *DeviceService {
	return &DeviceService{
		deviceRepo:   deviceRepo,
		categoryRepo: categoryRepo,
		gateway:      gateway,
		timeout:      timeout,
		log:          log,
	}
}

// List returns all devices. With live=true each device is queried
// concurrently for fresh status; an unreachable device shows up as offline
// instead of blocking or failing the whole list. The refreshed state is
// persisted in the background so the response does not wait on the store.
func (s *DeviceService) List(ctx context.Context, live bool) ([]models.Device, error) {
	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if !live || len(devices) == 0 {
		return devices, nil
	}

	var wg sync.WaitGroup
	for i := range devices {
		wg.Add(1)
		go func(d *models.Device) {
			defer wg.Done()
			st := s.gateway.GetStatus(ctx, d.Address, s.timeout)
			applyStatus(d, st)
			s.persistInBackground(d.ID, st)
		}(&devices[i])
	}
	wg.Wait()

	return devices, nil
}

func (s *DeviceService) Get(ctx context.Context, id string) (*models.Device, error) {
	d, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("device %q: %w", id, ErrNotFound)
	}
	return d, nil
}

func (s *DeviceService) Create(ctx context.Context, p DeviceParams) (*models.Device, error) {
	if err := s.validateParams(ctx, p); err != nil {
		return nil, err
	}

	existing, err := s.deviceRepo.GetByAddress(ctx, p.Address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("device with address %q: %w", p.Address, ErrConflict)
	}

	now := time.Now().UTC()
	d := models.Device{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(p.Name),
		Address:    p.Address,
		Status:     models.DeviceOffline, // unknown until first poll
		CategoryID: p.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.deviceRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DeviceService) Update(ctx context.Context, id string, p DeviceParams) (*models.Device, error) {
	if err := s.validateParams(ctx, p); err != nil {
		return nil, err
	}

	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// A changed address must not collide with another device.
	if p.Address != d.Address {
		other, err := s.deviceRepo.GetByAddress(ctx, p.Address)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, fmt.Errorf("device with address %q: %w", p.Address, ErrConflict)
		}
	}

	d.Name = strings.TrimSpace(p.Name)
	d.Address = p.Address
	d.CategoryID = p.CategoryID
	if err := s.deviceRepo.Update(ctx, *d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DeviceService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.deviceRepo.Delete(ctx, id)
}

// Toggle flips the device relay. On transport failure the device is marked
// offline in the store and ErrDeviceUnreachable is returned so the handler
// can answer 503 with an offline marker.
func (s *DeviceService) Toggle(ctx context.Context, id string) (models.ToggleResult, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return models.ToggleResult{}, err
	}
	res := s.gateway.Toggle(ctx, d.Address, 1, s.timeout)
	return s.settlePowerResult(ctx, d, res)
}

// SetPower drives the relay to an explicit state; same contract as Toggle.
func (s *DeviceService) SetPower(ctx context.Context, id string, on bool) (models.ToggleResult, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return models.ToggleResult{}, err
	}
	res := s.gateway.SetPower(ctx, d.Address, on, 1, s.timeout)
	return s.settlePowerResult(ctx, d, res)
}

// settlePowerResult persists the outcome of a power command. The command's
// reported power state is authoritative: a full-status poll running in
// parallel may race with the command and return the stale pre-command state,
// so power_state is written from the ToggleResult, never from such a poll.
func (s *DeviceService) settlePowerResult(ctx context.Context, d *models.Device, res models.ToggleResult) (models.ToggleResult, error) {
	if !res.Success {
		if err := s.deviceRepo.MarkOffline(ctx, d.ID); err != nil {
			s.log.Errorw("mark_offline_failed", "device", d.ID, "err", err)
		}
		return res, fmt.Errorf("device %q at %s: %w", d.ID, d.Address, ErrDeviceUnreachable)
	}
	if err := s.deviceRepo.SetPowerState(ctx, d.ID, res.PowerState); err != nil {
		s.log.Errorw("persist_power_state_failed", "device", d.ID, "err", err)
	}
	return res, nil
}

// persistInBackground writes a live-read status back to the store without
// blocking the caller. Detached from the request context on purpose; errors
// are logged rather than dropped.
func (s *DeviceService) persistInBackground(deviceID string, st models.DeviceStatus) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundPersistTimeout)
		defer cancel()
		if err := s.deviceRepo.UpdateTelemetry(ctx, deviceID, st); err != nil {
			s.log.Errorw("background_telemetry_persist_failed", "device", deviceID, "err", err)
		}
	}()
}

func (s *DeviceService) validateParams(ctx context.Context, p DeviceParams) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(p.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if strings.Contains(p.Address, "://") {
		return fmt.Errorf("%w: address must be host[:port] without scheme", ErrValidation)
	}
	if p.CategoryID != nil {
		cat, err := s.categoryRepo.GetByID(ctx, *p.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("category %q: %w", *p.CategoryID, ErrNotFound)
		}
	}
	return nil
}

// applyStatus folds a canonical status into the in-memory device record,
// mirroring what UpdateTelemetry does in the store.
func applyStatus(d *models.Device, st models.DeviceStatus) {
	d.Status = st.Status
	d.PowerState = st.PowerState
	d.PowerW = st.PowerW
	d.EnergyTodayKWh = st.EnergyTodayKWh
	d.EnergyTotalKWh = st.EnergyTotalKWh
	d.Voltage = st.Voltage
	d.Current = st.Current
	d.SignalDBm = st.SignalDBm
	d.UptimeSeconds = st.UptimeSeconds
	d.HasEnergyMonitoring = st.HasEnergyMonitoring
	d.LastSeen = st.LastSeen
}
