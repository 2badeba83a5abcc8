// Package stats derives dashboard figures from the order collection.
package stats

import (
	"time"

	"github.com/and161185/neverland-admin/internal/model"
)

// Summary is a read-only snapshot of dashboard figures.
type Summary struct {
	TotalOrders  int                       `json:"totalOrders"`
	OrdersToday  int                       `json:"ordersToday"`
	TotalSales   int                       `json:"totalSales"`
	Revenue      int64                     `json:"revenue"`
	MonthRevenue int64                     `json:"monthRevenue"`
	ActiveUsers  int                       `json:"activeUsers"`
	ByStatus     map[model.OrderStatus]int `json:"byStatus"`
}

// Compute aggregates orders as seen at now. Calendar comparisons use now's location.
// Revenue sums every order total regardless of status.
func Compute(orders []model.Order, now time.Time) Summary {
	s := Summary{ByStatus: map[model.OrderStatus]int{}}
	ty, tm, td := now.Date()
	loc := now.Location()

	for i := range orders {
		o := &orders[i]
		s.TotalOrders++
		s.TotalSales += o.Units()
		s.Revenue += o.Total
		s.ByStatus[o.Status]++

		if o.CreatedAt.IsZero() {
			continue
		}
		y, m, d := o.CreatedAt.In(loc).Date()
		if y == ty && m == tm {
			s.MonthRevenue += o.Total
			if d == td {
				s.OrdersToday++
			}
		}
	}
	return s
}
