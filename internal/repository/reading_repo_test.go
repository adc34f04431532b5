package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

func newMockReadingRepo(t *testing.T) (*ReadingSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewReadingSQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func TestReadingSQLite_Append(t *testing.T) {
	repo, mock, cleanup := newMockReadingRepo(t)
	defer cleanup()

	taken := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(insertReadingSQL)).
		WithArgs("dev1", taken, 42.0, 230.1, 0.18, 0.3, 11.2).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Append(context.Background(), models.EnergyReading{
		DeviceID: "dev1", TakenAt: taken, PowerW: 42.0, Voltage: 230.1,
		Current: 0.18, EnergyTodayKWh: 0.3, EnergyTotalKWh: 11.2,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestReadingSQLite_Append_ZeroTimeDefaultsToNow(t *testing.T) {
	repo, mock, cleanup := newMockReadingRepo(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(insertReadingSQL)).
		WithArgs("dev1", sqlmock.AnyArg(), 0.0, 0.0, 0.0, 0.0, 0.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), models.EnergyReading{DeviceID: "dev1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func readingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "device_id", "taken_at", "power_w", "voltage", "current",
		"energy_today_kwh", "energy_total_kwh",
	})
}

func TestReadingSQLite_List_RangeBounds(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	cases := []struct {
		name     string
		from, to time.Time
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "unbounded",
			wantSQL:  selectReadingsBaseSQL + " ORDER BY taken_at ASC",
			wantArgs: []any{"dev1"},
		},
		{
			name:     "from only",
			from:     from,
			wantSQL:  selectReadingsBaseSQL + " AND taken_at >= ? ORDER BY taken_at ASC",
			wantArgs: []any{"dev1", from},
		},
		{
			name:     "both bounds",
			from:     from,
			to:       to,
			wantSQL:  selectReadingsBaseSQL + " AND taken_at >= ? AND taken_at <= ? ORDER BY taken_at ASC",
			wantArgs: []any{"dev1", from, to},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, cleanup := newMockReadingRepo(t)
			defer cleanup()

			args := make([]driver.Value, 0, len(tc.wantArgs))
			for _, a := range tc.wantArgs {
				args = append(args, a)
			}
			mock.ExpectQuery(regexp.QuoteMeta(tc.wantSQL)).
				WithArgs(args...).
				WillReturnRows(readingRows().
					AddRow(1, "dev1", from.Add(time.Hour), 10.0, 230.0, 0.05, 0.1, 5.0))

			got, err := repo.List(context.Background(), "dev1", tc.from, tc.to)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 reading, got %d", len(got))
			}
		})
	}
}
