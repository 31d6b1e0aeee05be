package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vz415/BridgeVentilator/internal/logger"
	"github.com/vz415/BridgeVentilator/internal/models"
	"github.com/vz415/BridgeVentilator/internal/service"

	"github.com/gin-gonic/gin"
)

// Hand-rolled mocks, one per service interface. Stub fields hold the canned
// results; last* fields capture what the handler passed in.

type mockAuth struct {
	signUpID  int
	signUpErr error
	token     string
	tokenErr  error
	parsedID  int
	parseErr  error

	lastSignUpUsername string
	lastSignUpPassword string
	lastTokenUsername  string
	lastTokenPassword  string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastTokenUsername = username
	m.lastTokenPassword = password
	return m.token, m.tokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parsedID, m.parseErr
}

type mockVentilator struct {
	runErr      error
	rateVal     float64
	rateErr     error
	tiVal       float64
	tiErr       error
	teVal       float64
	teErr       error
	volVal      float64
	volErr      error
	calVal      int
	calErr      error
	pulseErr    error
	runCalls    int
	lastRunning bool

	lastRate     float64
	lastTi       float64
	lastTe       float64
	lastVol      float64
	lastCalPoint service.CalibrationPoint
	lastCalPulse int
	lastPulse    int
}

func (m *mockVentilator) SetRunning(ctx context.Context, run bool) error {
	m.runCalls++
	m.lastRunning = run
	return m.runErr
}
func (m *mockVentilator) SetBreathRate(ctx context.Context, v float64) (float64, error) {
	m.lastRate = v
	return m.rateVal, m.rateErr
}
func (m *mockVentilator) SetInspiratoryPeriod(ctx context.Context, v float64) (float64, error) {
	m.lastTi = v
	return m.tiVal, m.tiErr
}
func (m *mockVentilator) SetExpiratoryPeriod(ctx context.Context, v float64) (float64, error) {
	m.lastTe = v
	return m.teVal, m.teErr
}
func (m *mockVentilator) SetVolume(ctx context.Context, v float64) (float64, error) {
	m.lastVol = v
	return m.volVal, m.volErr
}
func (m *mockVentilator) Calibrate(ctx context.Context, point service.CalibrationPoint, pulseUS int) (int, error) {
	m.lastCalPoint = point
	m.lastCalPulse = pulseUS
	return m.calVal, m.calErr
}
func (m *mockVentilator) SetPulseWidth(ctx context.Context, pulseUS int) error {
	m.lastPulse = pulseUS
	return m.pulseErr
}

type mockMonitoring struct {
	state models.VentilatorState
	err   error
}

func (m *mockMonitoring) State(ctx context.Context) (models.VentilatorState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	events   []models.VentEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.VentEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.events, m.err
}

type mockRecorder struct {
	lastState models.VentilatorState
	lastErr   error
}

func (m *mockRecorder) Run(ctx context.Context, interval time.Duration) {}
func (m *mockRecorder) Last(ctx context.Context) (models.VentilatorState, error) {
	return m.lastState, m.lastErr
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, logger.Nop()).InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
