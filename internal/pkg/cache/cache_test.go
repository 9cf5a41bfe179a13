package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/alicebob/miniredis/v2"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = payroll.CacheKey{TenantID: "tenant-1", EmployeeID: "emp-1", PeriodKey: "2025-03-01_2025-03-31"}

func testSlip() payroll.PaySlip {
	actual := 150.5
	return payroll.PaySlip{
		EmployeeID:        "emp-1",
		TenantID:          "tenant-1",
		PeriodStart:       date.Date{Time: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		PeriodEnd:         date.Date{Time: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)},
		BasicSalary:       decimal.NewFromInt(5200),
		ExpectedHours:     168,
		ActualHoursWorked: &actual,
		GrossPay:          decimal.RequireFromString("4658.33"),
		PAYE:              decimal.RequireFromString("723.63"),
		NetPay:            decimal.RequireFromString("3678.49"),
		OtherDeductions: []payroll.Deduction{
			{Name: payroll.DeductionHoursShortfall, Amount: decimal.RequireFromString("541.67"), Informational: true},
		},
	}
}

func TestMemory_GetPut(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	m := NewMemory(2 * time.Hour).WithClock(func() time.Time { return now })

	_, ok, err := m.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, testKey, testSlip()))

	got, ok, err := m.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testSlip(), got)

	// Cached values do not alias the caller's slip.
	*got.ActualHoursWorked = 0
	got.OtherDeductions[0].Name = "changed"
	again, _, _ := m.Get(ctx, testKey)
	assert.Equal(t, testSlip(), again)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	m := NewMemory(2 * time.Hour).WithClock(func() time.Time { return now })

	require.NoError(t, m.Put(ctx, testKey, testSlip()))

	now = now.Add(2*time.Hour - time.Second)
	_, ok, _ := m.Get(ctx, testKey)
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, testKey)
	assert.False(t, ok)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.EvictExpired())
	assert.Equal(t, 0, m.Len())
}

func TestMemory_PutResetsTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	m := NewMemory(time.Hour).WithClock(func() time.Time { return now })

	require.NoError(t, m.Put(ctx, testKey, testSlip()))
	now = now.Add(50 * time.Minute)
	require.NoError(t, m.Put(ctx, testKey, testSlip()))
	now = now.Add(50 * time.Minute)

	_, ok, _ := m.Get(ctx, testKey)
	assert.True(t, ok)
	assert.Zero(t, m.EvictExpired())
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	require.NoError(t, m.Put(ctx, testKey, testSlip()))
	require.NoError(t, m.Invalidate(ctx, testKey))

	_, ok, _ := m.Get(ctx, testKey)
	assert.False(t, ok)
	assert.NoError(t, m.Invalidate(ctx, testKey))
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, 2*time.Hour), mr
}

func TestRedis_GetPut(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	_, ok, err := r.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)

	want := testSlip()
	require.NoError(t, r.Put(ctx, testKey, want))
	assert.True(t, mr.Exists(testKey.String()))
	assert.Equal(t, 2*time.Hour, mr.TTL(testKey.String()))

	got, ok, err := r.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, want.EmployeeID, got.EmployeeID)
	assert.Equal(t, want.PeriodStart.String(), got.PeriodStart.String())
	assert.True(t, want.GrossPay.Equal(got.GrossPay))
	assert.True(t, want.PAYE.Equal(got.PAYE))
	assert.True(t, want.NetPay.Equal(got.NetPay))
	require.NotNil(t, got.ActualHoursWorked)
	assert.Equal(t, *want.ActualHoursWorked, *got.ActualHoursWorked)
	require.Len(t, got.OtherDeductions, 1)
	assert.True(t, got.OtherDeductions[0].Informational)
}

func TestRedis_Expiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Put(ctx, testKey, testSlip()))
	mr.FastForward(2 * time.Hour)

	_, ok, err := r.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_Invalidate(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	require.NoError(t, r.Put(ctx, testKey, testSlip()))
	require.NoError(t, r.Invalidate(ctx, testKey))

	_, ok, err := r.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, mr.Set(testKey.String(), "not json"))

	_, ok, err := r.Get(ctx, testKey)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedis_Unreachable(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	mr.Close()

	_, _, err := r.Get(ctx, testKey)
	assert.Error(t, err)
	assert.Error(t, r.Ping(ctx))
}
