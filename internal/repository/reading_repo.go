package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db}
}

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	insertReadingSQL = `
		INSERT INTO energy_readings (device_id, taken_at, power_w, voltage, current, energy_today_kwh, energy_total_kwh)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectReadingsBaseSQL = `
		SELECT id, device_id, taken_at, power_w, voltage, current, energy_today_kwh, energy_total_kwh
		FROM energy_readings WHERE device_id = ?
	`
)

// Append inserts a new telemetry sample. A zero TakenAt is set to now.
func (r *ReadingSQLite) Append(ctx context.Context, reading models.EnergyReading) error {
	takenAt := reading.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.DeviceID, takenAt.UTC(), reading.PowerW, reading.Voltage,
		reading.Current, reading.EnergyTodayKWh, reading.EnergyTotalKWh,
	)
	if err != nil {
		return fmt.Errorf("insert reading for device %q: %w", reading.DeviceID, err)
	}
	return nil
}

// List returns samples for a device in [from, to], oldest first. Zero bounds
// mean no bound on that side.
func (r *ReadingSQLite) List(ctx context.Context, deviceID string, from, to time.Time) ([]models.EnergyReading, error) {
	query := selectReadingsBaseSQL
	args := []any{deviceID}

	if !from.IsZero() {
		query += " AND taken_at >= ?"
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += " AND taken_at <= ?"
		args = append(args, to.UTC())
	}
	query += " ORDER BY taken_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings for device %q: %w", deviceID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.EnergyReading
	for rows.Next() {
		var reading models.EnergyReading
		if err := rows.Scan(
			&reading.ID, &reading.DeviceID, &reading.TakenAt, &reading.PowerW,
			&reading.Voltage, &reading.Current, &reading.EnergyTodayKWh, &reading.EnergyTotalKWh,
		); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		reading.TakenAt = reading.TakenAt.UTC()
		out = append(out, reading)
	}
	return out, rows.Err()
}
