package tasmota

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &m))
	return m
}

func TestNormalize_NilMeansOffline(t *testing.T) {
	st := Normalize(nil, "192.168.1.50")

	assert.Equal(t, "192.168.1.50", st.Address)
	assert.Equal(t, models.DeviceOffline, st.Status)
	assert.False(t, st.PowerState)
	assert.Equal(t, 0.0, st.Voltage)
	assert.Equal(t, OfflineSignalDBm, st.SignalDBm)
	assert.False(t, st.LastSeen.IsZero())
}

func TestNormalize_FullStatusPayload(t *testing.T) {
	raw := decode(t, `{
		"Status": {"Power": 1},
		"StatusSTS": {"POWER": "ON", "UptimeSec": 86400, "Wifi": {"Signal": -67}},
		"StatusSNS": {"ENERGY": {"Power": 42.5, "Voltage": 231.2, "Current": 0.184, "Today": 0.35, "Total": 12.8}}
	}`)

	st := Normalize(raw, "plug-1.local")

	assert.Equal(t, models.DeviceOnline, st.Status)
	assert.True(t, st.PowerState)
	assert.True(t, st.HasEnergyMonitoring)
	assert.Equal(t, 42.5, st.PowerW)
	assert.Equal(t, 231.2, st.Voltage)
	assert.Equal(t, 0.184, st.Current)
	assert.Equal(t, 0.35, st.EnergyTodayKWh)
	assert.Equal(t, 12.8, st.EnergyTotalKWh)
	assert.Equal(t, -67, st.SignalDBm)
	assert.Equal(t, int64(86400), st.UptimeSeconds)
}

func TestNormalize_BareToggleReply(t *testing.T) {
	st := Normalize(decode(t, `{"POWER":"ON"}`), "plug")

	assert.Equal(t, models.DeviceOnline, st.Status)
	assert.True(t, st.PowerState)
	assert.False(t, st.HasEnergyMonitoring)
	// Defaults fill in what the reply omits.
	assert.Equal(t, NominalVoltage, st.Voltage)
	assert.Equal(t, UnknownSignalDBm, st.SignalDBm)
}

func TestNormalize_PowerStateAliases(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    bool
	}{
		{"upper on", `{"POWER":"ON"}`, true},
		{"lower off", `{"POWER":"off"}`, false},
		{"numeric string", `{"POWER":"1"}`, true},
		{"relay one", `{"POWER1":"ON"}`, true},
		{"mixed case key", `{"Power":"ON"}`, true},
		{"numeric", `{"Status":{"Power":1}}`, true},
		{"numeric zero", `{"Status":{"Power":0}}`, false},
		{"nested sts", `{"StatusSTS":{"POWER":"ON"}}`, true},
		{"absent", `{"Uptime":5}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := Normalize(decode(t, tc.payload), "plug")
			assert.Equal(t, tc.want, st.PowerState)
		})
	}
}

func TestNormalize_EnergyAliases(t *testing.T) {
	topLevel := decode(t, `{"ENERGY":{"Power":10}}`)
	sensor := decode(t, `{"SENSOR":{"ENERGY":{"Power":20}}}`)

	st := Normalize(topLevel, "plug")
	require.True(t, st.HasEnergyMonitoring)
	assert.Equal(t, 10.0, st.PowerW)

	st = Normalize(sensor, "plug")
	require.True(t, st.HasEnergyMonitoring)
	assert.Equal(t, 20.0, st.PowerW)
}

func TestNormalize_WifiAliases(t *testing.T) {
	st := Normalize(decode(t, `{"Wifi":{"RSSI":-55}}`), "plug")
	assert.Equal(t, -55, st.SignalDBm)

	st = Normalize(decode(t, `{"StatusNET":{"Wifi":{"Signal":-72}}}`), "plug")
	assert.Equal(t, -72, st.SignalDBm)
}

func TestNormalize_PartialEnergyBlockUsesDefaults(t *testing.T) {
	st := Normalize(decode(t, `{"StatusSNS":{"ENERGY":{"Power":5.5}}}`), "plug")

	assert.True(t, st.HasEnergyMonitoring)
	assert.Equal(t, 5.5, st.PowerW)
	assert.Equal(t, NominalVoltage, st.Voltage)
	assert.Equal(t, 0.0, st.Current)
	assert.Equal(t, 0.0, st.EnergyTodayKWh)
}

func TestNormalize_TotalOnMalformedShapes(t *testing.T) {
	// Wrong types must never panic; every input yields a well-formed record.
	cases := []string{
		`{}`,
		`{"ENERGY":"garbage"}`,
		`{"StatusSNS":42}`,
		`{"StatusSTS":{"Wifi":"weak"}}`,
		`{"POWER":null}`,
		`{"StatusSNS":{"ENERGY":{"Power":"lots"}}}`,
		`{"UptimeSec":"forever"}`,
	}
	for _, payload := range cases {
		st := Normalize(decode(t, payload), "plug")
		assert.Equal(t, models.DeviceOnline, st.Status, payload)
		assert.Equal(t, "plug", st.Address, payload)
	}
}

func TestNormalize_UptimeFallsBackToTopLevel(t *testing.T) {
	st := Normalize(decode(t, `{"UptimeSec":120}`), "plug")
	assert.Equal(t, int64(120), st.UptimeSeconds)
}
