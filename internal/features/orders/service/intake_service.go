package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ecu-stand/internal/core/config"
	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/orders/domain"
	"ecu-stand/internal/features/orders/ports"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OrderPayload is the inbound order schema.
type OrderPayload struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Country     string `json:"country" validate:"required"`
	City        string `json:"city" validate:"required"`
	Address     string `json:"address" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	// Quantity defaults to 1 when absent. An explicit null is rejected.
	Quantity *int `json:"quantity" validate:"omitempty,min=1"`

	quantityNull bool
}

// UnmarshalJSON records whether quantity was sent as null, which a plain
// decode cannot tell apart from an absent key.
func (p *OrderPayload) UnmarshalJSON(data []byte) error {
	type plain OrderPayload

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = OrderPayload(decoded)

	// Keys match case-insensitively, like the struct decode above.
	for key, raw := range fields {
		if strings.EqualFold(key, "quantity") && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			p.quantityNull = true
		}
	}
	return nil
}

// OrderRequest is the body of POST /api/order.
type OrderRequest struct {
	Order *OrderPayload `json:"order" validate:"required"`
	Notes *string       `json:"notes,omitempty"`
}

// Receipt is returned for an accepted order.
type Receipt struct {
	Order   domain.Order
	Pricing domain.PricingResult
}

// IntakeService validates, prices and announces orders.
// It keeps no state between calls.
type IntakeService struct {
	notifier ports.Notifier
	store    ports.OrderStore
	mail     config.MailConfig
	validate *validator.Validate
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewIntakeService creates a new instance of IntakeService.
// store may be nil, in which case accepted orders are only emailed.
func NewIntakeService(notifier ports.Notifier, store ports.OrderStore, mail config.MailConfig) *IntakeService {
	return &IntakeService{
		notifier: notifier,
		store:    store,
		mail:     mail,
		validate: validator.New(),
		logger:   logger.Named("intake"),
		now:      time.Now,
		newID:    domain.NewOrderID,
	}
}

// Intake accepts one order.
//
// Errors wrap domain.ErrValidation, domain.ErrConfiguration or
// domain.ErrDelivery. On any error no order id is issued to the caller.
func (s *IntakeService) Intake(ctx context.Context, req OrderRequest) (*Receipt, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.Order.quantityNull {
		return nil, fmt.Errorf("%w: quantity must be a number", domain.ErrValidation)
	}

	if missing := s.mail.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}

	quantity := 1
	if req.Order.Quantity != nil {
		quantity = *req.Order.Quantity
	}

	order := domain.Order{
		OrderFormData: domain.OrderFormData{
			FirstName:   req.Order.FirstName,
			LastName:    req.Order.LastName,
			Country:     req.Order.Country,
			City:        req.Order.City,
			Address:     req.Order.Address,
			PhoneNumber: req.Order.PhoneNumber,
			Email:       req.Order.Email,
			Quantity:    quantity,
		},
		ID:     s.newID(),
		Date:   domain.FormatTimestamp(s.now()),
		Status: domain.OrderStatusPending,
	}
	pricing := order.Pricing()

	log := s.logger.With(zap.String("order_id", order.ID))

	if err := s.notify(ctx, log, order, pricing, req.Notes); err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Add(ctx, order); err != nil {
			log.Warn("Order emailed but not recorded", zap.Error(err))
		}
	}

	log.Info("Order accepted",
		zap.String("country", order.Country),
		zap.Int("quantity", order.Quantity),
		zap.String("total", pricing.Total.StringFixed(2)),
	)

	return &Receipt{Order: order, Pricing: pricing}, nil
}

// notify sends both emails concurrently and waits for both to settle.
func (s *IntakeService) notify(ctx context.Context, log *zap.Logger, order domain.Order, pricing domain.PricingResult, notes *string) error {
	customer, err := customerEmail(s.mail.FromEmail, s.mail.ShopName, order, pricing)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	owner := ownerEmail(s.mail.FromEmail, s.mail.OwnerEmail, order, pricing, notes)

	var g errgroup.Group
	for _, email := range []struct {
		kind string
		msg  ports.Email
	}{
		{kind: "customer", msg: customer},
		{kind: "owner", msg: owner},
	} {
		email := email
		g.Go(func() error {
			if err := s.notifier.Send(ctx, email.msg); err != nil {
				log.Error("Notification send failed", zap.String("recipient", email.kind), zap.Error(err))
				return fmt.Errorf("%s notification: %w", email.kind, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return nil
}
