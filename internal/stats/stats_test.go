package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/neverland-admin/internal/model"
)

func TestCompute_Figures(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, loc)

	orders := []model.Order{
		{Total: 15000, Status: model.OrderPaid, CreatedAt: now.Add(-time.Hour)},
		{Total: 30000, Items: []model.OrderItem{{Title: "Genshin 300", Quantity: 2, Price: 15000}}, Status: model.OrderPending, CreatedAt: now.Add(-24 * time.Hour)},
		{Total: 5000, Status: model.OrderCancelled, CreatedAt: time.Date(2024, 2, 28, 9, 0, 0, 0, loc)},
		{Total: 1000, Status: model.OrderPaid},
	}
	s := Compute(orders, now)

	assert.Equal(t, 4, s.TotalOrders)
	assert.Equal(t, 1, s.OrdersToday)
	assert.Equal(t, 5, s.TotalSales)
	assert.Equal(t, int64(51000), s.Revenue)
	assert.Equal(t, int64(45000), s.MonthRevenue)
	assert.Equal(t, 2, s.ByStatus[model.OrderPaid])
	assert.Equal(t, 1, s.ByStatus[model.OrderPending])
}

func TestCompute_TodayUsesLocalCalendar(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2024, 3, 15, 1, 0, 0, 0, loc)
	// 2024-03-14T19:00Z is already the 15th in WIB
	o := model.Order{Total: 1, CreatedAt: time.Date(2024, 3, 14, 19, 0, 0, 0, time.UTC)}
	require.Equal(t, 1, Compute([]model.Order{o}, now).OrdersToday)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, time.Now())
	require.Zero(t, s.TotalOrders)
	require.Zero(t, s.Revenue)
	require.NotNil(t, s.ByStatus)
}

func TestCompute_Idempotent(t *testing.T) {
	now := time.Now()
	orders := []model.Order{{Total: 10, CreatedAt: now}, {Total: 20, Items: []model.OrderItem{{Title: "x", Quantity: 3}}}}
	require.Equal(t, Compute(orders, now), Compute(orders, now))
}
