package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
)

type MetricsService struct {
	deviceRepo  repository.DeviceRepo
	readingRepo repository.ReadingRepo
	gateway     DeviceGateway
	timeout     time.Duration
	log         *logger.Logger
}

func NewMetricsService(deviceRepo repository.DeviceRepo, readingRepo repository.ReadingRepo, gateway DeviceGateway, timeout time.Duration, log *logger.Logger) *MetricsService {
	return &MetricsService{
		deviceRepo:  deviceRepo,
		readingRepo: readingRepo,
		gateway:     gateway,
		timeout:     timeout,
		log:         log,
	}
}

// Current fetches live energy data for a device. The refreshed telemetry and
// a history sample are persisted without blocking the response. An
// unreachable device yields ErrDeviceUnreachable (mapped to 503 upstream)
// after being marked offline.
func (s *MetricsService) Current(ctx context.Context, deviceID string) (models.DeviceStatus, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return models.DeviceStatus{}, err
	}
	if d == nil {
		return models.DeviceStatus{}, fmt.Errorf("device %q: %w", deviceID, ErrNotFound)
	}

	st := s.gateway.GetEnergy(ctx, d.Address, s.timeout)
	if st.Status == models.DeviceOffline {
		if err := s.deviceRepo.MarkOffline(ctx, d.ID); err != nil {
			s.log.Errorw("mark_offline_failed", "device", d.ID, "err", err)
		}
		return st, fmt.Errorf("device %q at %s: %w", d.ID, d.Address, ErrDeviceUnreachable)
	}

	go s.persistSample(d.ID, st)

	return st, nil
}

// History returns stored telemetry samples for [from, to]; zero bounds are
// open-ended.
func (s *MetricsService) History(ctx context.Context, deviceID string, from, to time.Time) ([]models.EnergyReading, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("device %q: %w", deviceID, ErrNotFound)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, fmt.Errorf("%w: 'from' must be <= 'to'", ErrValidation)
	}
	return s.readingRepo.List(ctx, deviceID, from, to)
}

// persistSample stores the telemetry refresh and, when the plug actually
// meters energy, appends a history row. Runs detached; errors are logged.
func (s *MetricsService) persistSample(deviceID string, st models.DeviceStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundPersistTimeout)
	defer cancel()

	if err := s.deviceRepo.UpdateTelemetry(ctx, deviceID, st); err != nil {
		s.log.Errorw("background_telemetry_persist_failed", "device", deviceID, "err", err)
	}
	if !st.HasEnergyMonitoring {
		return
	}
	if err := s.readingRepo.Append(ctx, models.EnergyReading{
		DeviceID:       deviceID,
		TakenAt:        st.LastSeen,
		PowerW:         st.PowerW,
		Voltage:        st.Voltage,
		Current:        st.Current,
		EnergyTodayKWh: st.EnergyTodayKWh,
		EnergyTotalKWh: st.EnergyTotalKWh,
	}); err != nil {
		s.log.Errorw("background_reading_append_failed", "device", deviceID, "err", err)
	}
}
