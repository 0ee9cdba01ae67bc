package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/checkout/ports"
	"ecu-stand/internal/features/orders/domain"
	orderports "ecu-stand/internal/features/orders/ports"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// State is the lifecycle position of a Form.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// ErrNotEditable is returned when the form is submitting or already succeeded.
var ErrNotEditable = errors.New("form is not editable")

// formInput mirrors the required inputs of the order form.
type formInput struct {
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	Country     string `validate:"required"`
	City        string `validate:"required"`
	Address     string `validate:"required"`
	PhoneNumber string `validate:"required"`
	Email       string `validate:"required,email"`
}

// Form is one customer's pass through the order form.
//
// The form is editable in the idle and error states. A successful submit
// records the order and freezes the form until Reset.
type Form struct {
	client   ports.IntakeClient
	store    orderports.OrderStore
	validate *validator.Validate
	logger   *zap.Logger

	now   func() time.Time
	newID func() string

	mu           sync.Mutex
	data         domain.OrderFormData
	quantityText string
	phonePrefix  string
	customCity   bool
	state        State
	lastErr      error
	placed       *domain.Order
}

// NewForm creates an empty form. store may be nil.
func NewForm(client ports.IntakeClient, store orderports.OrderStore) *Form {
	f := &Form{
		client:   client,
		store:    store,
		validate: validator.New(),
		logger:   logger.Named("checkout"),
		now:      time.Now,
		newID:    domain.NewFallbackID,
	}
	f.reset()
	return f
}

func (f *Form) reset() {
	f.data = domain.OrderFormData{Quantity: 1}
	f.quantityText = "1"
	f.phonePrefix = domain.DefaultCallingCode
	f.customCity = false
	f.state = StateIdle
	f.lastErr = nil
	f.placed = nil
}

// Reset starts a fresh flow.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// edit runs change if the form is editable.
func (f *Form) edit(change func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting || f.state == StateSuccess {
		return ErrNotEditable
	}
	change()
	return nil
}

func (f *Form) SetFirstName(v string) error { return f.edit(func() { f.data.FirstName = v }) }

func (f *Form) SetLastName(v string) error { return f.edit(func() { f.data.LastName = v }) }

func (f *Form) SetAddress(v string) error { return f.edit(func() { f.data.Address = v }) }

func (f *Form) SetEmail(v string) error { return f.edit(func() { f.data.Email = v }) }

// SetPhoneNumber sets the local part of the phone number, without prefix.
func (f *Form) SetPhoneNumber(v string) error { return f.edit(func() { f.data.PhoneNumber = v }) }

// SetPhonePrefix overrides the calling code picked by SetCountry.
func (f *Form) SetPhonePrefix(code string) error { return f.edit(func() { f.phonePrefix = code }) }

// SetCountry changes the destination. The city is cleared, custom city
// mode is left and the calling code follows the country.
func (f *Form) SetCountry(name string) error {
	return f.edit(func() {
		f.data.Country = name
		f.data.City = ""
		f.customCity = false
		if c, ok := domain.LookupCountry(name); ok {
			f.phonePrefix = c.CallingCode
		}
	})
}

// SelectCity picks a listed city. domain.OtherCity switches to free text.
func (f *Form) SelectCity(city string) error {
	return f.edit(func() {
		if city == domain.OtherCity {
			f.customCity = true
			f.data.City = ""
			return
		}
		f.data.City = city
	})
}

// SetCustomCity sets the typed city while in custom city mode.
func (f *Form) SetCustomCity(city string) error {
	return f.edit(func() {
		f.customCity = true
		f.data.City = city
	})
}

// LeaveCustomCity returns to the city list and discards the typed value.
func (f *Form) LeaveCustomCity() error {
	return f.edit(func() {
		f.customCity = false
		f.data.City = ""
	})
}

// Increment adds one stand.
func (f *Form) Increment() error { return f.step(1) }

// Decrement removes one stand, never going below one.
func (f *Form) Decrement() error { return f.step(-1) }

func (f *Form) step(delta int) error {
	return f.edit(func() {
		q := f.data.Quantity + delta
		if q < 1 {
			q = 1
		}
		f.data.Quantity = q
		f.quantityText = strconv.Itoa(q)
	})
}

// TypeQuantity tracks the raw text of the quantity input. A text whose
// leading integer is at least one is committed immediately.
func (f *Form) TypeQuantity(text string) error {
	return f.edit(func() {
		f.quantityText = text
		if q, ok := leadingInt(text); ok && q >= 1 {
			f.data.Quantity = q
		}
	})
}

// BlurQuantity rewrites the input text from the committed quantity.
func (f *Form) BlurQuantity() error {
	return f.edit(func() {
		f.quantityText = strconv.Itoa(f.data.Quantity)
	})
}

// leadingInt parses an optional sign followed by digits, ignoring any tail.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	q, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return q, true
}

// Data returns the current input, phone number without prefix.
func (f *Form) Data() domain.OrderFormData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

func (f *Form) QuantityText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quantityText
}

func (f *Form) PhonePrefix() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phonePrefix
}

func (f *Form) CustomCity() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customCity
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err is the failure of the last submit while in the error state.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Placed is the recorded order once the form succeeded.
func (f *Form) Placed() *domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placed == nil {
		return nil
	}
	o := *f.placed
	return &o
}

// Preview prices the current input.
func (f *Form) Preview() domain.PricingResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Price(f.data.Country, f.data.Quantity)
}

// Validate runs the checks the form performs before submitting.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check()
}

func (f *Form) check() error {
	in := formInput{
		FirstName:   f.data.FirstName,
		LastName:    f.data.LastName,
		Country:     f.data.Country,
		City:        f.data.City,
		Address:     f.data.Address,
		PhoneNumber: f.data.PhoneNumber,
		Email:       f.data.Email,
	}
	if err := f.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Submit sends the order once. Local validation failures leave the state
// unchanged. An accepted order is prepended to the order store.
func (f *Form) Submit(ctx context.Context) (*domain.Order, error) {
	f.mu.Lock()
	if f.state == StateSubmitting || f.state == StateSuccess {
		f.mu.Unlock()
		return nil, ErrNotEditable
	}
	if err := f.check(); err != nil {
		f.mu.Unlock()
		return nil, err
	}

	payload := f.data
	payload.PhoneNumber = f.phonePrefix + " " + f.data.PhoneNumber
	f.state = StateSubmitting
	f.lastErr = nil
	f.mu.Unlock()

	result, err := f.client.SubmitOrder(ctx, payload)
	if err != nil {
		f.logger.Error("Order submission failed", zap.Error(err))
		f.mu.Lock()
		f.state = StateError
		f.lastErr = err
		f.mu.Unlock()
		return nil, err
	}

	order := domain.Order{
		OrderFormData: payload,
		ID:            result.OrderID,
		Date:          result.CreatedAt,
		Status:        domain.OrderStatusPending,
	}
	if order.ID == "" {
		order.ID = f.newID()
		f.logger.Warn("Intake API returned no order id, using a local one", zap.String("order_id", order.ID))
	}
	if order.Date == "" {
		order.Date = domain.FormatTimestamp(f.now())
	}

	if f.store != nil {
		if err := f.store.Add(ctx, order); err != nil {
			f.logger.Warn("Order placed but not recorded", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	f.mu.Lock()
	f.state = StateSuccess
	f.placed = &order
	f.mu.Unlock()

	f.logger.Info("Order placed", zap.String("order_id", order.ID))
	return &order, nil
}
