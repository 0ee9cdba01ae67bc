package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ecu-stand/internal/core/cache"
	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/orders/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ordersKey holds the whole JSON order list, newest first.
	ordersKey = "ecu_orders"
	// changeChannel carries the instance id of the writer after every write.
	changeChannel = "ecu_orders:changed"
)

// RedisOrderStore implements ports.OrderStore on a single cache entry.
//
// Writers in different processes are not coordinated: the last write wins.
// Within one process mu serialises read-modify-write cycles.
type RedisOrderStore struct {
	cache      cache.Cache
	instanceID string
	logger     *zap.Logger

	mu sync.Mutex

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int
}

// NewRedisOrderStore creates a store backed by c.
func NewRedisOrderStore(c cache.Cache) *RedisOrderStore {
	return &RedisOrderStore{
		cache:      c,
		instanceID: uuid.NewString(),
		logger:     logger.Named("order_store"),
		listeners:  make(map[int]func()),
	}
}

// LoadAll returns the stored orders, newest first.
// A missing or unreadable entry is an empty list.
func (s *RedisOrderStore) LoadAll(ctx context.Context) ([]domain.Order, error) {
	data, err := s.cache.Get(ctx, ordersKey)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		s.logger.Warn("Stored order list is unreadable, treating as empty", zap.Error(err))
		return []domain.Order{}, nil
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// Add prepends order. An order with the same id is replaced.
func (s *RedisOrderStore) Add(ctx context.Context, order domain.Order) error {
	return s.mutate(ctx, func(orders []domain.Order) ([]domain.Order, error) {
		next := make([]domain.Order, 0, len(orders)+1)
		next = append(next, order)
		for _, o := range orders {
			if o.ID != order.ID {
				next = append(next, o)
			}
		}
		return next, nil
	})
}

// UpsertStatus sets the status of the order with id.
func (s *RedisOrderStore) UpsertStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return s.mutate(ctx, func(orders []domain.Order) ([]domain.Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				orders[i].Status = status
				return orders, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	})
}

// Remove deletes the order with id.
func (s *RedisOrderStore) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(orders []domain.Order) ([]domain.Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	})
}

// Subscribe registers fn to run after every change, local or remote.
func (s *RedisOrderStore) Subscribe(fn func()) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// Watch relays changes written by other processes to local subscribers
// until ctx is done. It returns once the subscription is active.
func (s *RedisOrderStore) Watch(ctx context.Context) error {
	sub, err := s.cache.Subscribe(ctx, changeChannel)
	if err != nil {
		return fmt.Errorf("failed to watch orders: %w", err)
	}

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Messages():
				if !ok {
					s.logger.Warn("Order change subscription closed")
					return
				}
				if string(msg) == s.instanceID {
					continue
				}
				s.notify()
			}
		}
	}()

	return nil
}

func (s *RedisOrderStore) mutate(ctx context.Context, change func([]domain.Order) ([]domain.Order, error)) error {
	s.mu.Lock()
	orders, err := s.LoadAll(ctx)
	if err == nil {
		orders, err = change(orders)
	}
	if err == nil {
		err = s.save(ctx, orders)
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *RedisOrderStore) save(ctx context.Context, orders []domain.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to marshal orders: %w", err)
	}

	if err := s.cache.Set(ctx, ordersKey, data, 0); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}

	if err := s.cache.Publish(ctx, changeChannel, []byte(s.instanceID)); err != nil {
		s.logger.Warn("Failed to publish order change", zap.Error(err))
	}
	return nil
}

func (s *RedisOrderStore) notify() {
	s.listenersMu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
