package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite {
	return &DeviceSQLite{db: db}
}

// Ensure implementation of DeviceRepo interface at compile time.
var _ DeviceRepo = (*DeviceSQLite)(nil)

const (
	deviceColumns = `id, name, address, status, power_state, power_w,
		energy_today_kwh, energy_total_kwh, voltage, current, signal_dbm,
		uptime_s, has_energy_monitoring, category_id, last_seen, created_at, updated_at`

	selectDevicesSQL = `SELECT ` + deviceColumns + ` FROM devices ORDER BY name`

	selectDeviceByIDSQL      = `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`
	selectDeviceByAddressSQL = `SELECT ` + deviceColumns + ` FROM devices WHERE address = ?`

	insertDeviceSQL = `
		INSERT INTO devices (` + deviceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	updateDeviceSQL = `
		UPDATE devices SET name=?, address=?, category_id=?, updated_at=?
		WHERE id=?
	`

	deleteDeviceSQL = `DELETE FROM devices WHERE id = ?`

	updateTelemetrySQL = `
		UPDATE devices SET status=?, power_state=?, power_w=?, energy_today_kwh=?,
			energy_total_kwh=?, voltage=?, current=?, signal_dbm=?, uptime_s=?,
			has_energy_monitoring=?, last_seen=?, updated_at=?
		WHERE id=?
	`

	setPowerStateSQL = `
		UPDATE devices SET status=?, power_state=?, last_seen=?, updated_at=?
		WHERE id=?
	`

	markOfflineSQL = `UPDATE devices SET status=?, updated_at=? WHERE id=?`
)

func scanDevice(row interface{ Scan(dest ...any) error }) (models.Device, error) {
	var (
		d          models.Device
		categoryID sql.NullString
		lastSeen   sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Address, &d.Status, &d.PowerState, &d.PowerW,
		&d.EnergyTodayKWh, &d.EnergyTotalKWh, &d.Voltage, &d.Current,
		&d.SignalDBm, &d.UptimeSeconds, &d.HasEnergyMonitoring,
		&categoryID, &lastSeen, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return models.Device{}, err
	}
	if categoryID.Valid {
		d.CategoryID = &categoryID.String
	}
	if lastSeen.Valid {
		d.LastSeen = lastSeen.Time.UTC()
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

func (r *DeviceSQLite) List(ctx context.Context) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevicesSQL)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID fetches a device. Returns (nil, nil) if not found.
func (r *DeviceSQLite) GetByID(ctx context.Context, id string) (*models.Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDeviceByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select device %q: %w", id, err)
	}
	return &d, nil
}

// GetByAddress fetches a device by network address. Returns (nil, nil) if not found.
func (r *DeviceSQLite) GetByAddress(ctx context.Context, address string) (*models.Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDeviceByAddressSQL, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select device by address %q: %w", address, err)
	}
	return &d, nil
}

func (r *DeviceSQLite) Create(ctx context.Context, d models.Device) error {
	_, err := r.db.ExecContext(ctx, insertDeviceSQL,
		d.ID, d.Name, d.Address, d.Status, d.PowerState, d.PowerW,
		d.EnergyTodayKWh, d.EnergyTotalKWh, d.Voltage, d.Current,
		d.SignalDBm, d.UptimeSeconds, d.HasEnergyMonitoring,
		nullableString(d.CategoryID), nullableTime(d.LastSeen),
		d.CreatedAt.UTC(), d.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert device %q: %w", d.Name, err)
	}
	return nil
}

// Update rewrites the user-editable fields only; telemetry has its own path.
func (r *DeviceSQLite) Update(ctx context.Context, d models.Device) error {
	_, err := r.db.ExecContext(ctx, updateDeviceSQL,
		d.Name, d.Address, nullableString(d.CategoryID), time.Now().UTC(), d.ID,
	)
	if err != nil {
		return fmt.Errorf("update device %q: %w", d.ID, err)
	}
	return nil
}

func (r *DeviceSQLite) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteDeviceSQL, id)
	if err != nil {
		return fmt.Errorf("delete device %q: %w", id, err)
	}
	return nil
}

// UpdateTelemetry folds a canonical status into the stored record.
func (r *DeviceSQLite) UpdateTelemetry(ctx context.Context, id string, st models.DeviceStatus) error {
	now := time.Now().UTC()
	lastSeen := st.LastSeen
	if lastSeen.IsZero() {
		lastSeen = now
	}
	_, err := r.db.ExecContext(ctx, updateTelemetrySQL,
		st.Status, st.PowerState, st.PowerW, st.EnergyTodayKWh,
		st.EnergyTotalKWh, st.Voltage, st.Current, st.SignalDBm,
		st.UptimeSeconds, st.HasEnergyMonitoring, lastSeen.UTC(), now, id,
	)
	if err != nil {
		return fmt.Errorf("update telemetry for device %q: %w", id, err)
	}
	return nil
}

// SetPowerState records the relay state reported by a power command. This is
// the authoritative write for power_state: a concurrent full-status poll may
// race with the command and observe the pre-toggle state.
func (r *DeviceSQLite) SetPowerState(ctx context.Context, id string, on bool) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, setPowerStateSQL, models.DeviceOnline, on, now, now, id)
	if err != nil {
		return fmt.Errorf("set power state for device %q: %w", id, err)
	}
	return nil
}

func (r *DeviceSQLite) MarkOffline(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, markOfflineSQL, models.DeviceOffline, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark device %q offline: %w", id, err)
	}
	return nil
}

// nullableString maps a nil pointer to SQL NULL.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nullableTime maps a zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
