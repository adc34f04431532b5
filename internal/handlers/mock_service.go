package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDevices struct {
	devices   []models.Device
	device    *models.Device
	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	toggleRes models.ToggleResult
	toggleErr error
	powerRes  models.ToggleResult
	powerErr  error

	lastListLive bool
	lastGetID    string
	lastCreate   service.DeviceParams
	lastUpdateID string
	lastToggleID string
	lastPowerID  string
	lastPowerOn  bool

	toggleCalls int
	powerCalls  int
}

func (m *mockDevices) List(ctx context.Context, live bool) ([]models.Device, error) {
	m.lastListLive = live
	return m.devices, m.listErr
}
func (m *mockDevices) Get(ctx context.Context, id string) (*models.Device, error) {
	m.lastGetID = id
	return m.device, m.getErr
}
func (m *mockDevices) Create(ctx context.Context, p service.DeviceParams) (*models.Device, error) {
	m.lastCreate = p
	return m.device, m.createErr
}
func (m *mockDevices) Update(ctx context.Context, id string, p service.DeviceParams) (*models.Device, error) {
	m.lastUpdateID = id
	return m.device, m.updateErr
}
func (m *mockDevices) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}
func (m *mockDevices) Toggle(ctx context.Context, id string) (models.ToggleResult, error) {
	m.toggleCalls++
	m.lastToggleID = id
	return m.toggleRes, m.toggleErr
}
func (m *mockDevices) SetPower(ctx context.Context, id string, on bool) (models.ToggleResult, error) {
	m.powerCalls++
	m.lastPowerID = id
	m.lastPowerOn = on
	return m.powerRes, m.powerErr
}

type mockCategories struct {
	categories []models.Category
	category   *models.Category
	listErr    error
	createErr  error
	updateErr  error
	deleteErr  error

	lastCreate service.CategoryParams
}

func (m *mockCategories) List(ctx context.Context) ([]models.Category, error) {
	return m.categories, m.listErr
}
func (m *mockCategories) Create(ctx context.Context, p service.CategoryParams) (*models.Category, error) {
	m.lastCreate = p
	return m.category, m.createErr
}
func (m *mockCategories) Update(ctx context.Context, id string, p service.CategoryParams) (*models.Category, error) {
	return m.category, m.updateErr
}
func (m *mockCategories) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

type mockMetrics struct {
	status     models.DeviceStatus
	currentErr error
	readings   []models.EnergyReading
	historyErr error

	lastDeviceID string
	lastFrom     time.Time
	lastTo       time.Time
}

func (m *mockMetrics) Current(ctx context.Context, deviceID string) (models.DeviceStatus, error) {
	m.lastDeviceID = deviceID
	return m.status, m.currentErr
}
func (m *mockMetrics) History(ctx context.Context, deviceID string, from, to time.Time) ([]models.EnergyReading, error) {
	m.lastDeviceID = deviceID
	m.lastFrom = from
	m.lastTo = to
	return m.readings, m.historyErr
}

type mockWorkflows struct {
	workflows  []models.Workflow
	workflow   *models.Workflow
	executions []models.WorkflowExecution
	outcome    service.ExecutionOutcome

	listErr    error
	getErr     error
	createErr  error
	updateErr  error
	deleteErr  error
	execErr    error
	listExcErr error

	lastExecID string
	lastCreate service.WorkflowParams
	execCalls  int
}

func (m *mockWorkflows) List(ctx context.Context) ([]models.Workflow, error) {
	return m.workflows, m.listErr
}
func (m *mockWorkflows) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return m.workflow, m.getErr
}
func (m *mockWorkflows) Create(ctx context.Context, p service.WorkflowParams) (*models.Workflow, error) {
	m.lastCreate = p
	return m.workflow, m.createErr
}
func (m *mockWorkflows) Update(ctx context.Context, id string, p service.WorkflowParams) (*models.Workflow, error) {
	return m.workflow, m.updateErr
}
func (m *mockWorkflows) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}
func (m *mockWorkflows) Execute(ctx context.Context, id string) (service.ExecutionOutcome, error) {
	m.execCalls++
	m.lastExecID = id
	return m.outcome, m.execErr
}
func (m *mockWorkflows) Executions(ctx context.Context, id string) ([]models.WorkflowExecution, error) {
	return m.executions, m.listExcErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
