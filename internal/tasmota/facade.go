package tasmota

import (
	"context"
	"fmt"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

// Commander is the transport surface the Facade composes. Satisfied by
// *Client; narrowed to an interface so services can be tested without a
// live device.
type Commander interface {
	SendCommand(ctx context.Context, address, command string, timeout time.Duration) (map[string]any, error)
}

// Facade composes Transport and Normalizer into the operations API routes
// consume. It is free of storage side effects: the "mark offline on failure"
// policy belongs to the service layer above.
type Facade struct {
	transport Commander
	log       *logger.Logger
}

func NewFacade(transport Commander, log *logger.Logger) *Facade {
	return &Facade{transport: transport, log: log}
}

// GetStatus issues the comprehensive status command. Unreachability is
// represented in the result, never as an error: callers always receive a
// well-formed record.
func (f *Facade) GetStatus(ctx context.Context, address string, timeout time.Duration) models.DeviceStatus {
	raw, err := f.transport.SendCommand(ctx, address, CmdStatusAll, timeout)
	if err != nil {
		return Normalize(nil, address)
	}
	return Normalize(raw, address)
}

// GetEnergy issues the sensor-status command. When the device has no energy
// sensor it falls back to the basic status command and reports
// HasEnergyMonitoring=false with zeroed energy fields rather than failing.
func (f *Facade) GetEnergy(ctx context.Context, address string, timeout time.Duration) models.DeviceStatus {
	raw, err := f.transport.SendCommand(ctx, address, CmdStatusSNS, timeout)
	if err != nil {
		return Normalize(nil, address)
	}

	st := Normalize(raw, address)
	if st.HasEnergyMonitoring {
		return st
	}

	// No ENERGY block: plug without a power meter. The basic status still
	// gives us power state, wifi and uptime.
	raw, err = f.transport.SendCommand(ctx, address, CmdStatusSTS, timeout)
	if err != nil {
		return Normalize(nil, address)
	}
	st = Normalize(raw, address)
	st.HasEnergyMonitoring = false
	return st
}

// Toggle flips the given relay and returns the resulting state.
func (f *Facade) Toggle(ctx context.Context, address string, relay int, timeout time.Duration) models.ToggleResult {
	return f.power(ctx, address, relayCommand(CmdPowerToggle, relay), timeout)
}

// SetPower drives the given relay to an explicit ON/OFF state.
func (f *Facade) SetPower(ctx context.Context, address string, on bool, relay int, timeout time.Duration) models.ToggleResult {
	cmd := CmdPowerOff
	if on {
		cmd = CmdPowerOn
	}
	return f.power(ctx, address, relayCommand(cmd, relay), timeout)
}

func (f *Facade) power(ctx context.Context, address, command string, timeout time.Duration) models.ToggleResult {
	raw, err := f.transport.SendCommand(ctx, address, command, timeout)
	if err != nil {
		return models.ToggleResult{Success: false, Err: err.Error()}
	}

	// A power command echoes the resulting relay state: {"POWER":"ON"}.
	st := Normalize(raw, address)
	return models.ToggleResult{Success: true, PowerState: st.PowerState}
}

// relayCommand rewrites "Power X" into "Power<n> X" for multi-relay strips.
// Relay 0 or 1 addresses the default relay.
func relayCommand(command string, relay int) string {
	if relay <= 1 {
		return command
	}
	var verb, arg string
	if _, err := fmt.Sscanf(command, "%s %s", &verb, &arg); err != nil {
		return command
	}
	return fmt.Sprintf("%s%d %s", verb, relay, arg)
}
