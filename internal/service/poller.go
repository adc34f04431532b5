package service

import (
	"context"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
)

// PollerService periodically refreshes device telemetry and appends energy
// history samples.
type PollerService struct {
	deviceRepo  repository.DeviceRepo
	readingRepo repository.ReadingRepo
	gateway     DeviceGateway
	timeout     time.Duration
	log         *logger.Logger
}

func NewPollerService(deviceRepo repository.DeviceRepo, readingRepo repository.ReadingRepo, gateway DeviceGateway, timeout time.Duration, log *logger.Logger) *PollerService {
	return &PollerService{
		deviceRepo:  deviceRepo,
		readingRepo: readingRepo,
		gateway:     gateway,
		timeout:     timeout,
		log:         log,
	}
}

// Run ticks at the given interval until ctx is canceled. Each tick polls all
// devices sequentially; every individual call is bounded by the device
// timeout, so a dead plug delays the sweep but cannot wedge it.
func (s *PollerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *PollerService) sweep(ctx context.Context) {
	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		s.log.Errorw("poller_list_devices_failed", "err", err)
		return
	}

	for _, d := range devices {
		if ctx.Err() != nil {
			return
		}
		st := s.gateway.GetEnergy(ctx, d.Address, s.timeout)
		if err := s.deviceRepo.UpdateTelemetry(ctx, d.ID, st); err != nil {
			s.log.Errorw("poller_persist_failed", "device", d.ID, "err", err)
			continue
		}
		if st.Status == models.DeviceOffline || !st.HasEnergyMonitoring {
			continue
		}
		if err := s.readingRepo.Append(ctx, models.EnergyReading{
			DeviceID:       d.ID,
			TakenAt:        st.LastSeen,
			PowerW:         st.PowerW,
			Voltage:        st.Voltage,
			Current:        st.Current,
			EnergyTodayKWh: st.EnergyTodayKWh,
			EnergyTotalKWh: st.EnergyTotalKWh,
		}); err != nil {
			s.log.Errorw("poller_reading_append_failed", "device", d.ID, "err", err)
		}
	}
}
