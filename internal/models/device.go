package models

import "time"

// Device connectivity states.
const (
	DeviceOnline  = "online"
	DeviceOffline = "offline"
	DeviceError   = "error"
)

// Device is a Tasmota-flashed smart plug as persisted in the store.
type Device struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Address             string    `json:"address"` // host[:port], no scheme
	Status              string    `json:"status"`  // online | offline | error
	PowerState          bool      `json:"power_state"`
	PowerW              float64   `json:"power_w"`         // instantaneous draw, W
	EnergyTodayKWh      float64   `json:"energy_today_kwh"`
	EnergyTotalKWh      float64   `json:"energy_total_kwh"`
	Voltage             float64   `json:"voltage"`
	Current             float64   `json:"current"`
	SignalDBm           int       `json:"signal_dbm"`
	UptimeSeconds       int64     `json:"uptime_seconds"`
	HasEnergyMonitoring bool      `json:"has_energy_monitoring"`
	CategoryID          *string   `json:"category_id,omitempty"`
	LastSeen            time.Time `json:"last_seen"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DeviceStatus is the canonical, always-well-formed view of a raw device
// response. Transient: recomputed on every poll, folded into Device fields.
type DeviceStatus struct {
	Address             string    `json:"address"`
	Status              string    `json:"status"` // online | offline
	PowerState          bool      `json:"power_state"`
	PowerW              float64   `json:"power_w"`
	EnergyTodayKWh      float64   `json:"energy_today_kwh"`
	EnergyTotalKWh      float64   `json:"energy_total_kwh"`
	Voltage             float64   `json:"voltage"`
	Current             float64   `json:"current"`
	SignalDBm           int       `json:"signal_dbm"`
	UptimeSeconds       int64     `json:"uptime_seconds"`
	HasEnergyMonitoring bool      `json:"has_energy_monitoring"`
	LastSeen            time.Time `json:"last_seen"`
}

// ToggleResult is the outcome of a single power command against a device.
type ToggleResult struct {
	Success    bool   `json:"success"`
	PowerState bool   `json:"power_state,omitempty"`
	Err        string `json:"error,omitempty"`
}

// EnergyReading is one telemetry sample for a device.
type EnergyReading struct {
	ID             int64     `json:"id"`
	DeviceID       string    `json:"device_id"`
	TakenAt        time.Time `json:"taken_at"`
	PowerW         float64   `json:"power_w"`
	Voltage        float64   `json:"voltage"`
	Current        float64   `json:"current"`
	EnergyTodayKWh float64   `json:"energy_today_kwh"`
	EnergyTotalKWh float64   `json:"energy_total_kwh"`
}
