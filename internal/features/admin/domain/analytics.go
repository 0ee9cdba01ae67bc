package domain

import (
	"errors"

	orders "ecu-stand/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPassphrase is returned when the dashboard gate rejects a passphrase.
	ErrInvalidPassphrase = errors.New("invalid access code")
	// ErrLocked is returned by dashboard operations before a successful unlock.
	ErrLocked = errors.New("dashboard is locked")
	// ErrNoPendingDelete is returned when a delete is confirmed without being requested.
	ErrNoPendingDelete = errors.New("no delete pending confirmation")
)

// Analytics summarises the order list. It is recomputed from scratch on
// every change and never stored.
type Analytics struct {
	TotalOrders    int
	CanceledOrders int
	ActiveOrders   int
	// TotalRevenue sums the priced totals of every non-canceled order.
	TotalRevenue decimal.Decimal
	// StatusDistribution always holds all five statuses.
	StatusDistribution map[orders.OrderStatus]int
}

// Summary is the JSON shape of Analytics.
type Summary struct {
	TotalOrders        int            `json:"totalOrders"`
	CanceledOrders     int            `json:"canceledOrders"`
	ActiveOrders       int            `json:"activeOrders"`
	TotalRevenue       float64        `json:"totalRevenue"`
	StatusDistribution map[string]int `json:"statusDistribution"`
}

// ComputeAnalytics derives Analytics from orders.
func ComputeAnalytics(list []orders.Order) Analytics {
	a := Analytics{
		TotalOrders:        len(list),
		TotalRevenue:       decimal.Zero,
		StatusDistribution: make(map[orders.OrderStatus]int, len(orders.Statuses())),
	}
	for _, s := range orders.Statuses() {
		a.StatusDistribution[s] = 0
	}

	for _, o := range list {
		if _, known := a.StatusDistribution[o.Status]; known {
			a.StatusDistribution[o.Status]++
		}
		if o.Status == orders.OrderStatusCanceled {
			a.CanceledOrders++
			continue
		}
		a.TotalRevenue = a.TotalRevenue.Add(o.Pricing().Total)
	}
	a.ActiveOrders = a.TotalOrders - a.CanceledOrders

	return a
}

// Summary converts a for JSON responses.
func (a Analytics) Summary() Summary {
	dist := make(map[string]int, len(a.StatusDistribution))
	for s, n := range a.StatusDistribution {
		dist[string(s)] = n
	}
	return Summary{
		TotalOrders:        a.TotalOrders,
		CanceledOrders:     a.CanceledOrders,
		ActiveOrders:       a.ActiveOrders,
		TotalRevenue:       a.TotalRevenue.Round(2).InexactFloat64(),
		StatusDistribution: dist,
	}
}
