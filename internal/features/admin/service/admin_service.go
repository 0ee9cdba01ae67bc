package service

import (
	"context"
	"fmt"

	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/admin/domain"
	orderdomain "ecu-stand/internal/features/orders/domain"
	"ecu-stand/internal/features/orders/ports"

	"go.uber.org/zap"
)

// AdminService exposes the order record store to the dashboard.
//
// The passphrase check is a convenience gate for a single operator, not an
// access control mechanism.
type AdminService struct {
	store      ports.OrderStore
	passphrase string
	logger     *zap.Logger
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(store ports.OrderStore, passphrase string) *AdminService {
	return &AdminService{
		store:      store,
		passphrase: passphrase,
		logger:     logger.Named("admin"),
	}
}

// Unlock checks passphrase against the configured one.
func (s *AdminService) Unlock(passphrase string) error {
	if passphrase != s.passphrase {
		s.logger.Warn("Dashboard unlock rejected")
		return domain.ErrInvalidPassphrase
	}
	return nil
}

// ListOrders returns every recorded order, newest first.
func (s *AdminService) ListOrders(ctx context.Context) ([]orderdomain.Order, error) {
	return s.store.LoadAll(ctx)
}

// Analytics computes the summary over every recorded order.
func (s *AdminService) Analytics(ctx context.Context) (domain.Analytics, error) {
	list, err := s.store.LoadAll(ctx)
	if err != nil {
		return domain.Analytics{}, err
	}
	return domain.ComputeAnalytics(list), nil
}

// ChangeStatus sets the status of order id and returns the updated order.
func (s *AdminService) ChangeStatus(ctx context.Context, id string, status string) (*orderdomain.Order, error) {
	parsed, err := orderdomain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertStatus(ctx, id, parsed); err != nil {
		return nil, err
	}

	list, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		if o.ID == id {
			s.logger.Info("Order status changed", zap.String("order_id", id), zap.String("status", string(parsed)))
			return &o, nil
		}
	}

	// Removed by another writer between the two calls.
	return nil, fmt.Errorf("%w: %s", orderdomain.ErrOrderNotFound, id)
}

// DeleteOrder removes order id permanently.
func (s *AdminService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.String("order_id", id))
	return nil
}

// Subscribe runs fn after every change to the order record store.
func (s *AdminService) Subscribe(fn func()) (cancel func()) {
	return s.store.Subscribe(fn)
}
