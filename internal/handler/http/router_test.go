package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmployeeID = "0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"

type fakeAttendanceService struct {
	resp    attendance.DailyHoursResponse
	err     error
	lastReq attendance.DailyHoursRequest
}

func (f *fakeAttendanceService) GetDailyHours(ctx context.Context, req attendance.DailyHoursRequest) (attendance.DailyHoursResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeAttendanceService) ExportAudit(ctx context.Context, req attendance.DailyHoursRequest) ([]byte, error) {
	f.lastReq = req
	return []byte("PK"), f.err
}

type fakePayrollService struct {
	resp        payroll.PayslipResponse
	err         error
	lastReq     payroll.PayslipRequest
	invalidated bool
}

func (f *fakePayrollService) GetPayslip(ctx context.Context, req payroll.PayslipRequest) (payroll.PayslipResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakePayrollService) RenderPayslipPDF(ctx context.Context, req payroll.PayslipRequest) ([]byte, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.3"), nil
}

func (f *fakePayrollService) InvalidatePayslip(ctx context.Context, req payroll.PayslipRequest) error {
	f.lastReq = req
	f.invalidated = true
	return f.err
}

type testServer struct {
	handler    http.Handler
	jwt        jwt.Service
	attendance *fakeAttendanceService
	payroll    *fakePayrollService
}

func newTestServer(t *testing.T, ready ReadinessCheck) *testServer {
	t.Helper()
	s := &testServer{
		jwt:        jwt.NewJWTService("test-secret", "1h"),
		attendance: &fakeAttendanceService{},
		payroll:    &fakePayrollService{},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	s.handler = NewRouter(
		RouterConfig{LogLevel: slog.LevelInfo},
		logger,
		s.jwt,
		NewAttendanceHandler(s.attendance),
		NewPayrollHandler(s.payroll),
		ready,
	)
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken("user-1", "company-1", jwt.RoleManager)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestProbes(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/readyz", "").Code)

	down := newTestServer(t, func(ctx context.Context) error { return errors.New("pool closed") })
	rec := down.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decodeEnvelope(t, rec).Error.Code)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, nil)
	path := "/api/v1/payslips/" + testEmployeeID + "?pay_date=2025-03-31"

	t.Run("missing token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := jwt.NewJWTService("other-secret", "1h")
		token, _, err := other.GenerateAccessToken("user-1", "company-1", jwt.RoleOwner)
		require.NoError(t, err)
		rec := s.do(t, http.MethodGet, path, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without company", func(t *testing.T) {
		_, token, err := s.jwt.JWTAuth().Encode(map[string]interface{}{"user_id": "user-1", "type": "access"})
		require.NoError(t, err)
		rec := s.do(t, http.MethodGet, path, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("refresh token", func(t *testing.T) {
		_, token, err := s.jwt.JWTAuth().Encode(map[string]interface{}{"user_id": "user-1", "company_id": "company-1", "type": "refresh"})
		require.NoError(t, err)
		rec := s.do(t, http.MethodGet, path, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDailyHours(t *testing.T) {
	s := newTestServer(t, nil)
	s.attendance.resp = attendance.DailyHoursResponse{EmployeeID: testEmployeeID, TotalHours: 8}

	rec := s.do(t, http.MethodGet, "/api/v1/attendance/"+testEmployeeID+"/daily-hours?start_date=2025-03-03&end_date=2025-03-07", s.token(t))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	var body attendance.DailyHoursResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 8.0, body.TotalHours)

	assert.Equal(t, "2025-03-03", s.attendance.lastReq.StartDate)
	assert.Equal(t, "2025-03-07", s.attendance.lastReq.EndDate)

	rec = s.do(t, http.MethodGet, "/api/v1/attendance/not-a-uuid/daily-hours", s.token(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditExport(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/attendance/"+testEmployeeID+"/audit.xlsx?start_date=2025-03-01&end_date=2025-03-31", s.token(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_"+testEmployeeID)
}

func TestGetPayslip(t *testing.T) {
	s := newTestServer(t, nil)
	s.payroll.resp = payroll.PayslipResponse{
		EmployeeID: testEmployeeID,
		GrossPay:   payroll.NewMoney(decimal.NewFromInt(5200)),
		NetPay:     payroll.NewMoney(decimal.RequireFromString("4190.375")),
	}

	path := fmt.Sprintf("/api/v1/payslips/%s?pay_date=2025-03-31&period_start=2025-03-01&period_end=2025-03-15&force_refresh=true", testEmployeeID)
	rec := s.do(t, http.MethodGet, path, s.token(t))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "4190.38", body["net_pay"])
	assert.Equal(t, "5200.00", body["gross_pay"])

	req := s.payroll.lastReq
	assert.Equal(t, testEmployeeID, req.EmployeeID)
	assert.Equal(t, "2025-03-31", req.PayDate)
	require.NotNil(t, req.PeriodStart)
	assert.Equal(t, "2025-03-01", *req.PeriodStart)
	assert.True(t, req.ForceRefresh)

	rec = s.do(t, http.MethodGet, "/api/v1/payslips/"+testEmployeeID+"?pay_date=2025-03-31&force_refresh=maybe", s.token(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPayslip_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "salary not configured",
			err:      payroll.ErrSalaryNotConfigured,
			wantCode: http.StatusBadRequest,
			wantErr:  "SALARY_NOT_CONFIGURED",
		},
		{
			name:     "expected hours zero",
			err:      payroll.ErrExpectedHoursZero,
			wantCode: http.StatusBadRequest,
			wantErr:  "EXPECTED_HOURS_ZERO",
		},
		{
			name:     "attendance unavailable",
			err:      fmt.Errorf("%w: %w", payroll.ErrAttendanceUnavailable, attendance.ErrStoreUnavailable),
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "SERVICE_UNAVAILABLE",
		},
		{
			name:     "policy store unavailable",
			err:      fmt.Errorf("%w: failed to get working calendar policy: %w", attendance.ErrStoreUnavailable, errors.New("connection refused")),
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "SERVICE_UNAVAILABLE",
		},
		{
			name:     "invalid working calendar",
			err:      schedule.ErrInvalidWorkingDays,
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_WORKING_CALENDAR",
		},
		{
			name:     "employee not found",
			err:      employee.ErrEmployeeNotFound,
			wantCode: http.StatusNotFound,
			wantErr:  "NOT_FOUND",
		},
		{
			name:     "validation",
			err:      validator.ValidationErrors{{Field: "pay_date", Message: "must be in YYYY-MM-DD format"}},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "unexpected",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantErr:  "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			s.payroll.err = tt.err

			rec := s.do(t, http.MethodGet, "/api/v1/payslips/"+testEmployeeID+"?pay_date=2025-03-31", s.token(t))
			assert.Equal(t, tt.wantCode, rec.Code)

			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
		})
	}
}

func TestGetPayslipPDF(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/payslips/"+testEmployeeID+"/pdf?pay_date=2025-03-31", s.token(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, len(rec.Body.Bytes()) > 4)
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}

func TestInvalidatePayslip(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodDelete, "/api/v1/payslips/"+testEmployeeID+"/cache?pay_date=2025-03-31", s.token(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.payroll.invalidated)
	assert.Equal(t, "Payslip cache invalidated", decodeEnvelope(t, rec).Message)
}
