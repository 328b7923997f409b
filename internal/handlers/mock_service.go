package handlers

import (
	"context"
	"net/http"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/models"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockRooms struct {
	rooms      []models.Room
	room       models.Room
	err        error
	lastStates []string
}

func (m *mockRooms) List(ctx context.Context, states ...string) ([]models.Room, error) {
	m.lastStates = states
	return m.rooms, m.err
}
func (m *mockRooms) Get(ctx context.Context, id string) (models.Room, error) {
	return m.room, m.err
}

type mockSessions struct {
	session       models.CleaningSession
	log           models.CleaningLog
	err           error
	lastStart     service.StartParams
	lastConfirmed bool
	backgrounded  int
}

func (m *mockSessions) Start(ctx context.Context, p service.StartParams) (models.CleaningSession, error) {
	m.lastStart = p
	return m.session, m.err
}
func (m *mockSessions) Pause(ctx context.Context, roomID string) (models.CleaningSession, error) {
	return m.session, m.err
}
func (m *mockSessions) Stop(ctx context.Context, roomID string, c service.Confirmer) (models.CleaningLog, error) {
	ok, _ := c.Confirm(ctx, "")
	m.lastConfirmed = ok
	if !ok {
		return models.CleaningLog{}, service.ErrNotConfirmed
	}
	return m.log, m.err
}
func (m *mockSessions) Cancel(ctx context.Context, roomID string, c service.Confirmer) (models.CleaningSession, error) {
	ok, _ := c.Confirm(ctx, "")
	m.lastConfirmed = ok
	if !ok {
		return models.CleaningSession{}, service.ErrNotConfirmed
	}
	return m.session, m.err
}
func (m *mockSessions) Get(ctx context.Context, roomID string) (models.CleaningSession, error) {
	return m.session, m.err
}
func (m *mockSessions) Background(ctx context.Context, roomID string) error {
	m.backgrounded++
	return m.err
}
func (m *mockSessions) Close() {}

type mockDevices struct {
	id          string
	reg         models.DeviceRegistration
	err         error
	lastReq     service.RegistrationRequest
	lastCurrent bool
	available   []bool
	message     *models.CustomMessage
}

func (m *mockDevices) RegisterDevice(ctx context.Context, req service.RegistrationRequest) (string, error) {
	m.lastReq = req
	return m.id, m.err
}
func (m *mockDevices) SubscribeAvailability(ctx context.Context, deviceID string, onChange func(bool)) (func(), error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, v := range m.available {
		onChange(v)
	}
	return func() {}, nil
}
func (m *mockDevices) SubscribeCustomMessage(ctx context.Context, deviceID string, onMessage func(models.CustomMessage), onClear func()) (*service.MessageSubscription, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.message != nil {
		onMessage(*m.message)
	}
	return &service.MessageSubscription{}, nil
}
func (m *mockDevices) SetAvailability(ctx context.Context, deviceID string, current bool) (bool, error) {
	m.lastCurrent = current
	return !current, m.err
}
func (m *mockDevices) SetCustomMessage(ctx context.Context, deviceID, text string) (models.CustomMessage, error) {
	return models.CustomMessage{Text: text}, m.err
}
func (m *mockDevices) GetDevice(ctx context.Context, deviceID string) (models.DeviceRegistration, error) {
	return m.reg, m.err
}

type mockFanout struct {
	results []service.DeliveryResult
	err     error
}

func (m *mockFanout) NotifyAvailableDevices(ctx context.Context, roomLabel, actorName string) ([]service.DeliveryResult, error) {
	return m.results, m.err
}

type mockMaintenance struct {
	status     []models.MaintenanceStatus
	log        models.MaintenanceLog
	err        error
	lastAction string
}

func (m *mockMaintenance) CheckUpcomingMaintenance(ctx context.Context) (int, error) {
	return len(m.status), m.err
}
func (m *mockMaintenance) ListStatus(ctx context.Context) ([]models.MaintenanceStatus, error) {
	return m.status, m.err
}
func (m *mockMaintenance) LogMaintenance(ctx context.Context, roomID, action string) (models.MaintenanceLog, error) {
	m.lastAction = action
	return m.log, m.err
}
func (m *mockMaintenance) History(ctx context.Context, roomID string) ([]models.MaintenanceLog, error) {
	return []models.MaintenanceLog{m.log}, m.err
}

type mockReports struct {
	report     models.ProblemReport
	reports    []models.ProblemReport
	err        error
	lastCreate service.CreateReportParams
	lastFilter service.ReportFilter
}

func (m *mockReports) Create(ctx context.Context, p service.CreateReportParams) (models.ProblemReport, error) {
	m.lastCreate = p
	return m.report, m.err
}
func (m *mockReports) List(ctx context.Context, f service.ReportFilter) ([]models.ProblemReport, error) {
	m.lastFilter = f
	return m.reports, m.err
}
func (m *mockReports) Resolve(ctx context.Context, id string) (models.ProblemReport, error) {
	return m.report, m.err
}

type mockCleaningLogs struct {
	resp       []models.CleaningLog
	err        error
	lastFilter service.LogFilter
}

func (m *mockCleaningLogs) List(ctx context.Context, f service.LogFilter) ([]models.CleaningLog, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithHub(s, realtime.NewHub())
}

func newTestRouterWithHub(s *service.Service, hub *realtime.Hub) *gin.Engine {
	h := NewHandler(s, hub, logger.Nop())
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func deviceHeader(id string) http.Header {
	h := http.Header{}
	if id != "" {
		h.Set(deviceIDHeader, id)
	}
	return h
}
