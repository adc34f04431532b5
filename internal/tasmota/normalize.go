package tasmota

import (
	"strings"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

// Fallbacks for partial or missing telemetry sub-objects.
const (
	NominalVoltage   = 230.0 // nominal mains voltage when the device omits it
	UnknownSignalDBm = -50   // device online but no wifi section reported
	OfflineSignalDBm = -100  // sentinel "very weak" for unreachable devices
)

// Firmware variants and simulators nest the same data under different keys.
// Each alias list is tried in order; the first hit wins.
var (
	energyAliases = []string{"StatusSNS", "SENSOR"}
	wifiAliases   = []string{"StatusSTS", "StatusNET"}
	powerAliases  = []string{"POWER", "POWER1", "Power"}
	uptimeAliases = []string{"UptimeSec", "Uptime"}
)

// Normalize maps a raw device response to the canonical status record.
// Pure and total: any input, including nil and adversarial partial JSON,
// yields a well-formed record. A nil raw means the device was unreachable.
func Normalize(raw map[string]any, address string) models.DeviceStatus {
	now := time.Now().UTC()

	if raw == nil {
		return models.DeviceStatus{
			Address:   address,
			Status:    models.DeviceOffline,
			Voltage:   0,
			SignalDBm: OfflineSignalDBm,
			LastSeen:  now,
		}
	}

	st := models.DeviceStatus{
		Address:   address,
		Status:    models.DeviceOnline,
		Voltage:   NominalVoltage,
		SignalDBm: UnknownSignalDBm,
		LastSeen:  now,
	}

	st.PowerState = extractPowerState(raw)

	if energy, ok := extractEnergy(raw); ok {
		st.HasEnergyMonitoring = true
		st.PowerW = numField(energy, 0, "Power")
		st.Voltage = numField(energy, NominalVoltage, "Voltage")
		st.Current = numField(energy, 0, "Current")
		st.EnergyTodayKWh = numField(energy, 0, "Today")
		st.EnergyTotalKWh = numField(energy, 0, "Total")
	}

	if wifi, ok := extractWifi(raw); ok {
		st.SignalDBm = int(numField(wifi, UnknownSignalDBm, "Signal", "RSSI"))
	}

	st.UptimeSeconds = extractUptime(raw)

	return st
}

// extractPowerState resolves the relay state from any of the known spots:
// a bare toggle reply {"POWER":"ON"}, the runtime status block
// {"StatusSTS":{"POWER":"ON"}}, or the device block {"Status":{"Power":1}}.
func extractPowerState(raw map[string]any) bool {
	if on, ok := powerFromKeys(raw); ok {
		return on
	}
	if sts, ok := subObject(raw, "StatusSTS"); ok {
		if on, ok := powerFromKeys(sts); ok {
			return on
		}
	}
	if status, ok := subObject(raw, "Status"); ok {
		if on, ok := powerFromKeys(status); ok {
			return on
		}
	}
	return false
}

func powerFromKeys(obj map[string]any) (bool, bool) {
	for _, key := range powerAliases {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			return strings.EqualFold(t, "ON") || t == "1", true
		case float64:
			return t != 0, true
		case bool:
			return t, true
		}
	}
	return false, false
}

// extractEnergy finds an ENERGY block either at the top level or under one
// of the sensor-status aliases.
func extractEnergy(raw map[string]any) (map[string]any, bool) {
	if energy, ok := subObject(raw, "ENERGY"); ok {
		return energy, true
	}
	for _, alias := range energyAliases {
		if sns, ok := subObject(raw, alias); ok {
			if energy, ok := subObject(sns, "ENERGY"); ok {
				return energy, true
			}
		}
	}
	return nil, false
}

func extractWifi(raw map[string]any) (map[string]any, bool) {
	if wifi, ok := subObject(raw, "Wifi"); ok {
		return wifi, true
	}
	for _, alias := range wifiAliases {
		if sts, ok := subObject(raw, alias); ok {
			if wifi, ok := subObject(sts, "Wifi"); ok {
				return wifi, true
			}
		}
	}
	return nil, false
}

func extractUptime(raw map[string]any) int64 {
	if sts, ok := subObject(raw, "StatusSTS"); ok {
		for _, key := range uptimeAliases {
			if v, ok := sts[key].(float64); ok {
				return int64(v)
			}
		}
	}
	for _, key := range uptimeAliases {
		if v, ok := raw[key].(float64); ok {
			return int64(v)
		}
	}
	return 0
}

// subObject returns raw[key] when it is a JSON object.
func subObject(raw map[string]any, key string) (map[string]any, bool) {
	obj, ok := raw[key].(map[string]any)
	return obj, ok
}

// numField returns the first present numeric value among keys, else def.
func numField(obj map[string]any, def float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := obj[key].(float64); ok {
			return v
		}
	}
	return def
}
