package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

func TestMetricsCurrent_LiveReading(t *testing.T) {
	devRepo := newFakeDeviceRepo(testDevice("a", true))
	readings := &fakeReadingRepo{}
	gw := newFakeGateway()
	gw.statuses["a.local"] = models.DeviceStatus{
		Address: "a.local", Status: models.DeviceOnline, PowerState: true,
		PowerW: 60.2, Voltage: 229.8, Current: 0.26,
		EnergyTodayKWh: 0.4, EnergyTotalKWh: 88.1,
		HasEnergyMonitoring: true, LastSeen: time.Now().UTC(),
	}
	s := NewMetricsService(devRepo, readings, gw, time.Second, logger.Nop())

	st, err := s.Current(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, 60.2, st.PowerW)
	assert.True(t, st.HasEnergyMonitoring)

	// The sample lands in history without blocking the response.
	assert.Eventually(t, func() bool { return readings.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestMetricsCurrent_NoEnergySensorSkipsHistory(t *testing.T) {
	devRepo := newFakeDeviceRepo(testDevice("a", true))
	readings := &fakeReadingRepo{}
	gw := newFakeGateway()
	gw.statuses["a.local"] = models.DeviceStatus{
		Address: "a.local", Status: models.DeviceOnline, PowerState: true,
		HasEnergyMonitoring: false, LastSeen: time.Now().UTC(),
	}
	s := NewMetricsService(devRepo, readings, gw, time.Second, logger.Nop())

	st, err := s.Current(context.Background(), "a")

	require.NoError(t, err)
	assert.False(t, st.HasEnergyMonitoring)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, readings.count())
}

func TestMetricsCurrent_UnreachableMarksOffline(t *testing.T) {
	devRepo := newFakeDeviceRepo(testDevice("a", true))
	s := NewMetricsService(devRepo, &fakeReadingRepo{}, newFakeGateway(), time.Second, logger.Nop())

	st, err := s.Current(context.Background(), "a")

	assert.ErrorIs(t, err, ErrDeviceUnreachable)
	assert.Equal(t, models.DeviceOffline, st.Status)
	assert.Equal(t, []string{"a"}, devRepo.offlineIDs)
}

func TestMetricsCurrent_UnknownDevice(t *testing.T) {
	s := NewMetricsService(newFakeDeviceRepo(), &fakeReadingRepo{}, newFakeGateway(), time.Second, logger.Nop())

	_, err := s.Current(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMetricsHistory(t *testing.T) {
	devRepo := newFakeDeviceRepo(testDevice("a", true))
	readings := &fakeReadingRepo{}
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_ = readings.Append(context.Background(), models.EnergyReading{
			DeviceID: "a", TakenAt: base.Add(time.Duration(i) * time.Hour), PowerW: float64(i),
		})
	}
	s := NewMetricsService(devRepo, readings, newFakeGateway(), time.Second, logger.Nop())

	got, err := s.History(context.Background(), "a", base.Add(30*time.Minute), time.Time{})

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMetricsHistory_InvertedRange(t *testing.T) {
	devRepo := newFakeDeviceRepo(testDevice("a", true))
	s := NewMetricsService(devRepo, &fakeReadingRepo{}, newFakeGateway(), time.Second, logger.Nop())

	now := time.Now()
	_, err := s.History(context.Background(), "a", now, now.Add(-time.Hour))

	assert.ErrorIs(t, err, ErrValidation)
}
