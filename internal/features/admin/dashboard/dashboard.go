package dashboard

import (
	"context"
	"fmt"
	"sync"

	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/admin/domain"
	orderdomain "ecu-stand/internal/features/orders/domain"

	"go.uber.org/zap"
)

// Service is the admin operation set a Dashboard drives.
type Service interface {
	Unlock(passphrase string) error
	ListOrders(ctx context.Context) ([]orderdomain.Order, error)
	ChangeStatus(ctx context.Context, id string, status string) (*orderdomain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	Subscribe(fn func()) (cancel func())
}

// Dashboard is one operator session over the order record store.
//
// All state lives in memory: the order list newest first, the analytics
// derived from it, the one expanded row and the one delete awaiting
// confirmation. Every operation except Unlock fails with domain.ErrLocked
// until the session is unlocked.
type Dashboard struct {
	svc    Service
	logger *zap.Logger

	mu            sync.Mutex
	unlocked      bool
	orders        []orderdomain.Order
	analytics     domain.Analytics
	expanded      string
	pendingDelete string
	cancel        func()
	onChange      func()
}

// New creates a locked dashboard.
func New(svc Service) *Dashboard {
	return &Dashboard{
		svc:       svc,
		logger:    logger.Named("dashboard"),
		orders:    []orderdomain.Order{},
		analytics: domain.ComputeAnalytics(nil),
	}
}

// OnChange registers fn to run after the list is reloaded because the
// store changed. fn runs without the dashboard lock held.
func (d *Dashboard) OnChange(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = fn
}

// Unlock opens the session and starts following store changes.
func (d *Dashboard) Unlock(ctx context.Context, passphrase string) error {
	if err := d.svc.Unlock(passphrase); err != nil {
		return err
	}

	d.mu.Lock()
	if d.unlocked {
		d.mu.Unlock()
		return nil
	}
	d.unlocked = true
	d.cancel = d.svc.Subscribe(func() {
		if err := d.Refresh(context.Background()); err != nil {
			d.logger.Warn("Dashboard refresh failed", zap.Error(err))
			return
		}
		d.mu.Lock()
		fn := d.onChange
		d.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
	d.mu.Unlock()

	return d.Refresh(ctx)
}

// Locked reports whether the passphrase gate is still closed.
func (d *Dashboard) Locked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.unlocked
}

// Close stops following store changes and locks the session again.
func (d *Dashboard) Close() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.unlocked = false
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Refresh reloads the order list and recomputes analytics.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if d.Locked() {
		return domain.ErrLocked
	}

	list, err := d.svc.ListOrders(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.set(list)
	return nil
}

// set replaces the list. Callers hold d.mu.
func (d *Dashboard) set(list []orderdomain.Order) {
	if list == nil {
		list = []orderdomain.Order{}
	}
	d.orders = list
	d.analytics = domain.ComputeAnalytics(list)

	if d.expanded != "" && !contains(list, d.expanded) {
		d.expanded = ""
	}
	if d.pendingDelete != "" && !contains(list, d.pendingDelete) {
		d.pendingDelete = ""
	}
}

func contains(list []orderdomain.Order, id string) bool {
	for _, o := range list {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Orders returns a copy of the current list, newest first.
func (d *Dashboard) Orders() []orderdomain.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]orderdomain.Order, len(d.orders))
	copy(out, d.orders)
	return out
}

// Analytics returns the summary of the current list.
func (d *Dashboard) Analytics() domain.Analytics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.analytics
}

// ChangeStatus writes the new status through and updates the list in place.
func (d *Dashboard) ChangeStatus(ctx context.Context, id string, status string) error {
	if d.Locked() {
		return domain.ErrLocked
	}

	updated, err := d.svc.ChangeStatus(ctx, id, status)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	next := make([]orderdomain.Order, len(d.orders))
	copy(next, d.orders)
	for i := range next {
		if next[i].ID == id {
			next[i] = *updated
		}
	}
	d.set(next)
	return nil
}

// RequestDelete marks id for deletion. Nothing is removed until
// ConfirmDelete.
func (d *Dashboard) RequestDelete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.unlocked {
		return domain.ErrLocked
	}
	if !contains(d.orders, id) {
		return fmt.Errorf("%w: %s", orderdomain.ErrOrderNotFound, id)
	}
	d.pendingDelete = id
	return nil
}

// PendingDelete is the id awaiting confirmation, or "".
func (d *Dashboard) PendingDelete() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingDelete
}

// CancelDelete drops the pending request.
func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingDelete = ""
}

// ConfirmDelete removes the pending order permanently. The expanded row
// collapses when it was the deleted one.
func (d *Dashboard) ConfirmDelete(ctx context.Context) error {
	d.mu.Lock()
	if !d.unlocked {
		d.mu.Unlock()
		return domain.ErrLocked
	}
	id := d.pendingDelete
	d.pendingDelete = ""
	d.mu.Unlock()

	if id == "" {
		return domain.ErrNoPendingDelete
	}

	if err := d.svc.DeleteOrder(ctx, id); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	next := make([]orderdomain.Order, 0, len(d.orders))
	for _, o := range d.orders {
		if o.ID != id {
			next = append(next, o)
		}
	}
	if d.expanded == id {
		d.expanded = ""
	}
	d.set(next)
	return nil
}

// ToggleExpand expands id, collapsing any other row, or collapses id if it
// was already expanded.
func (d *Dashboard) ToggleExpand(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.unlocked {
		return domain.ErrLocked
	}
	if d.expanded == id {
		d.expanded = ""
		return nil
	}
	if !contains(d.orders, id) {
		return fmt.Errorf("%w: %s", orderdomain.ErrOrderNotFound, id)
	}
	d.expanded = id
	return nil
}

// Expanded is the id of the expanded row, or "".
func (d *Dashboard) Expanded() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expanded
}
