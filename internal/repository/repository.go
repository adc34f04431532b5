package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// DeviceRepo persists smart plug records, including partial telemetry updates
// after live reads.
type DeviceRepo interface {
	List(ctx context.Context) ([]models.Device, error)
	GetByID(ctx context.Context, id string) (*models.Device, error)
	GetByAddress(ctx context.Context, address string) (*models.Device, error)
	Create(ctx context.Context, d models.Device) error
	Update(ctx context.Context, d models.Device) error
	Delete(ctx context.Context, id string) error

	// UpdateTelemetry folds a canonical status into the stored record.
	UpdateTelemetry(ctx context.Context, id string, st models.DeviceStatus) error
	// SetPowerState records the authoritative relay state from a power command.
	SetPowerState(ctx context.Context, id string, on bool) error
	// MarkOffline flags a device that failed to answer.
	MarkOffline(ctx context.Context, id string) error
}

type CategoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, c models.Category) error
	Update(ctx context.Context, c models.Category) error
	Delete(ctx context.Context, id string) error
}

// ReadingRepo is the append-mostly store of energy telemetry samples.
type ReadingRepo interface {
	Append(ctx context.Context, r models.EnergyReading) error
	List(ctx context.Context, deviceID string, from, to time.Time) ([]models.EnergyReading, error)
}

// WorkflowRepo reads workflows with their ordered steps and conditions, and
// tracks execution records to their terminal state.
type WorkflowRepo interface {
	List(ctx context.Context) ([]models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Create(ctx context.Context, w models.Workflow) error
	Update(ctx context.Context, w models.Workflow) error
	Delete(ctx context.Context, id string) error

	CreateExecution(ctx context.Context, e models.WorkflowExecution) error
	FinishExecution(ctx context.Context, id, status string, completedAt time.Time, errMsg string) error
	ListExecutions(ctx context.Context, workflowID string) ([]models.WorkflowExecution, error)
}

type Repository struct {
	Devices    DeviceRepo
	Categories CategoryRepo
	Readings   ReadingRepo
	Workflows  WorkflowRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Devices:    NewDeviceSQLite(db),
		Categories: NewCategorySQLite(db),
		Readings:   NewReadingSQLite(db),
		Workflows:  NewWorkflowSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
