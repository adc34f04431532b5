package service

import (
	"context"
	"errors"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
)

// Typed errors services return so handlers can pick the right status code.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrDeviceUnreachable = errors.New("device unreachable")
	ErrWorkflowDisabled  = errors.New("workflow is disabled")
)

// Default timeout budget for a single device call when the caller does not
// override it via config.
const DefaultDeviceTimeout = 5 * time.Second

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Devices exposes CRUD plus live power control for smart plugs.
type Devices interface {
	List(ctx context.Context, live bool) ([]models.Device, error)
	Get(ctx context.Context, id string) (*models.Device, error)
	Create(ctx context.Context, p DeviceParams) (*models.Device, error)
	Update(ctx context.Context, id string, p DeviceParams) (*models.Device, error)
	Delete(ctx context.Context, id string) error

	Toggle(ctx context.Context, id string) (models.ToggleResult, error)
	SetPower(ctx context.Context, id string, on bool) (models.ToggleResult, error)
}

type Categories interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, p CategoryParams) (*models.Category, error)
	Update(ctx context.Context, id string, p CategoryParams) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// Metrics exposes live energy data and stored telemetry history.
type Metrics interface {
	Current(ctx context.Context, deviceID string) (models.DeviceStatus, error)
	History(ctx context.Context, deviceID string, from, to time.Time) ([]models.EnergyReading, error)
}

// Workflows exposes workflow CRUD and sequential execution.
type Workflows interface {
	List(ctx context.Context) ([]models.Workflow, error)
	Get(ctx context.Context, id string) (*models.Workflow, error)
	Create(ctx context.Context, p WorkflowParams) (*models.Workflow, error)
	Update(ctx context.Context, id string, p WorkflowParams) (*models.Workflow, error)
	Delete(ctx context.Context, id string) error

	Execute(ctx context.Context, id string) (ExecutionOutcome, error)
	Executions(ctx context.Context, id string) ([]models.WorkflowExecution, error)
}

// Poller runs the background loop that refreshes device telemetry.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// DeviceGateway is the slice of the tasmota Facade the services consume.
// Satisfied by *tasmota.Facade; narrowed for testability.
type DeviceGateway interface {
	GetStatus(ctx context.Context, address string, timeout time.Duration) models.DeviceStatus
	GetEnergy(ctx context.Context, address string, timeout time.Duration) models.DeviceStatus
	Toggle(ctx context.Context, address string, relay int, timeout time.Duration) models.ToggleResult
	SetPower(ctx context.Context, address string, on bool, relay int, timeout time.Duration) models.ToggleResult
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Devices
	Categories
	Metrics
	Workflows
	Poller
	Authorization
}

// Config carries the tunables main() reads from the config file.
type Config struct {
	DeviceTimeout time.Duration // budget per device call; 0 means default
	SigningKey    string        // JWT signing key; empty means dev default
}

// NewService wires the repository layer and the device gateway into the
// concrete services.
func NewService(repos *repository.Repository, gateway DeviceGateway, cfg Config, log *logger.Logger) *Service {
	timeout := cfg.DeviceTimeout
	if timeout <= 0 {
		timeout = DefaultDeviceTimeout
	}
	devices := NewDeviceService(repos.Devices, repos.Categories, gateway, timeout, log)
	return &Service{
		Devices:       devices,
		Categories:    NewCategoryService(repos.Categories),
		Metrics:       NewMetricsService(repos.Devices, repos.Readings, gateway, timeout, log),
		Workflows:     NewWorkflowService(repos.Workflows, repos.Devices, devices, log),
		Poller:        NewPollerService(repos.Devices, repos.Readings, gateway, timeout, log),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey),
	}
}
