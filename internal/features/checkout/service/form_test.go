package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecu-stand/internal/features/checkout/ports"
	"ecu-stand/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIntakeClient is a mock implementation of ports.IntakeClient.
type MockIntakeClient struct {
	mock.Mock
}

func (m *MockIntakeClient) SubmitOrder(ctx context.Context, order domain.OrderFormData) (*ports.IntakeResult, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.IntakeResult), args.Error(1)
}

// MockOrderStore is a mock implementation of ports.OrderStore.
type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) LoadAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderStore) Add(ctx context.Context, order domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderStore) UpsertStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOrderStore) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderStore) Subscribe(fn func()) func() {
	m.Called(fn)
	return func() {}
}

func newTestForm(client ports.IntakeClient, store *MockOrderStore) *Form {
	var f *Form
	if store == nil {
		f = NewForm(client, nil)
	} else {
		f = NewForm(client, store)
	}
	f.now = func() time.Time { return time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC) }
	f.newID = func() string { return "LOCAL1234" }
	return f
}

func fill(t *testing.T, f *Form) {
	t.Helper()
	require.NoError(t, f.SetFirstName("Blerta"))
	require.NoError(t, f.SetLastName("Hoxha"))
	require.NoError(t, f.SetCountry(domain.CountryAlbania))
	require.NoError(t, f.SelectCity("Durrës"))
	require.NoError(t, f.SetAddress("Rr. Taulantia 8"))
	require.NoError(t, f.SetPhoneNumber("691234567"))
	require.NoError(t, f.SetEmail("blerta@example.com"))
}

func TestForm_Defaults(t *testing.T) {
	f := NewForm(new(MockIntakeClient), nil)

	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, 1, f.Data().Quantity)
	assert.Equal(t, "1", f.QuantityText())
	assert.Equal(t, "+383", f.PhonePrefix())
	assert.False(t, f.CustomCity())
	assert.Nil(t, f.Placed())
}

func TestForm_SetCountry(t *testing.T) {
	f := NewForm(new(MockIntakeClient), nil)

	require.NoError(t, f.SetCountry(domain.CountryKosovo))
	require.NoError(t, f.SelectCity(domain.OtherCity))
	require.NoError(t, f.SetCustomCity("Kaçanik"))
	assert.True(t, f.CustomCity())

	require.NoError(t, f.SetCountry(domain.CountryNorthMacedonia))
	assert.Empty(t, f.Data().City)
	assert.False(t, f.CustomCity())
	assert.Equal(t, "+389", f.PhonePrefix())

	require.NoError(t, f.SetCountry(domain.CountryAlbania))
	assert.Equal(t, "+355", f.PhonePrefix())

	// Unknown countries keep the current prefix.
	require.NoError(t, f.SetCountry("Mali i Zi"))
	assert.Equal(t, "+355", f.PhonePrefix())
}

func TestForm_CustomCity(t *testing.T) {
	f := NewForm(new(MockIntakeClient), nil)
	require.NoError(t, f.SetCountry(domain.CountryKosovo))
	require.NoError(t, f.SelectCity("Pejë"))

	require.NoError(t, f.SelectCity(domain.OtherCity))
	assert.True(t, f.CustomCity())
	assert.Empty(t, f.Data().City)

	require.NoError(t, f.SetCustomCity("Deçan"))
	assert.Equal(t, "Deçan", f.Data().City)

	require.NoError(t, f.LeaveCustomCity())
	assert.False(t, f.CustomCity())
	assert.Empty(t, f.Data().City)
}

func TestForm_Quantity(t *testing.T) {
	f := NewForm(new(MockIntakeClient), nil)

	require.NoError(t, f.Decrement())
	assert.Equal(t, 1, f.Data().Quantity)

	require.NoError(t, f.Increment())
	require.NoError(t, f.Increment())
	assert.Equal(t, 3, f.Data().Quantity)
	assert.Equal(t, "3", f.QuantityText())

	tests := []struct {
		typed    string
		quantity int
	}{
		{typed: "7", quantity: 7},
		{typed: "", quantity: 7},
		{typed: "0", quantity: 7},
		{typed: "-4", quantity: 7},
		{typed: "abc", quantity: 7},
		{typed: "12abc", quantity: 12},
	}
	for _, tt := range tests {
		require.NoError(t, f.TypeQuantity(tt.typed))
		assert.Equal(t, tt.typed, f.QuantityText())
		assert.Equal(t, tt.quantity, f.Data().Quantity, tt.typed)
	}

	require.NoError(t, f.TypeQuantity(""))
	require.NoError(t, f.BlurQuantity())
	assert.Equal(t, "12", f.QuantityText())
}

func TestForm_Preview(t *testing.T) {
	f := NewForm(new(MockIntakeClient), nil)

	require.NoError(t, f.SetCountry(domain.CountryKosovo))
	require.NoError(t, f.TypeQuantity("3"))
	assert.Equal(t, "44.97", f.Preview().Total.StringFixed(2))

	require.NoError(t, f.SetCountry(domain.CountryNorthMacedonia))
	require.NoError(t, f.TypeQuantity("1"))
	preview := f.Preview()
	assert.Equal(t, "5.00", preview.ShippingCost.StringFixed(2))
	assert.Equal(t, "19.99", preview.Total.StringFixed(2))
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Form) error
	}{
		{name: "MissingFirstName", mutate: func(f *Form) error { return f.SetFirstName("") }},
		{name: "MissingCity", mutate: func(f *Form) error { return f.SelectCity(domain.OtherCity) }},
		{name: "MissingPhone", mutate: func(f *Form) error { return f.SetPhoneNumber("") }},
		{name: "BadEmail", mutate: func(f *Form) error { return f.SetEmail("blerta@") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockIntakeClient)
			f := newTestForm(client, nil)
			fill(t, f)
			require.NoError(t, f.Validate())
			require.NoError(t, tt.mutate(f))

			assert.ErrorIs(t, f.Validate(), domain.ErrValidation)

			_, err := f.Submit(context.Background())
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, StateIdle, f.State())
			client.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
		})
	}
}

func TestForm_Submit_Success(t *testing.T) {
	client := new(MockIntakeClient)
	store := new(MockOrderStore)
	f := newTestForm(client, store)
	fill(t, f)
	require.NoError(t, f.Increment())
	ctx := context.Background()

	client.On("SubmitOrder", ctx, mock.MatchedBy(func(o domain.OrderFormData) bool {
		return o.PhoneNumber == "+355 691234567" && o.Quantity == 2 && o.City == "Durrës"
	})).Return(&ports.IntakeResult{OrderID: "Q1W2E3R4", CreatedAt: "2026-10-14T10:00:00.000Z"}, nil).Once()
	store.On("Add", ctx, mock.MatchedBy(func(o domain.Order) bool {
		return o.ID == "Q1W2E3R4" && o.Status == domain.OrderStatusPending && o.PhoneNumber == "+355 691234567"
	})).Return(nil).Once()

	order, err := f.Submit(ctx)

	require.NoError(t, err)
	assert.Equal(t, "Q1W2E3R4", order.ID)
	assert.Equal(t, "2026-10-14T10:00:00.000Z", order.Date)
	assert.Equal(t, StateSuccess, f.State())
	assert.Equal(t, order, f.Placed())
	client.AssertExpectations(t)
	store.AssertExpectations(t)

	// The form is frozen until reset.
	assert.ErrorIs(t, f.SetFirstName("Other"), ErrNotEditable)
	_, err = f.Submit(ctx)
	assert.ErrorIs(t, err, ErrNotEditable)

	f.Reset()
	assert.Equal(t, StateIdle, f.State())
	assert.Empty(t, f.Data().FirstName)
	assert.Nil(t, f.Placed())
}

func TestForm_Submit_FallbackIdentity(t *testing.T) {
	client := new(MockIntakeClient)
	store := new(MockOrderStore)
	f := newTestForm(client, store)
	fill(t, f)
	ctx := context.Background()

	client.On("SubmitOrder", ctx, mock.Anything).Return(&ports.IntakeResult{}, nil).Once()
	store.On("Add", ctx, mock.Anything).Return(nil).Once()

	order, err := f.Submit(ctx)

	require.NoError(t, err)
	assert.Equal(t, "LOCAL1234", order.ID)
	assert.Equal(t, "2026-10-14T11:00:00.000Z", order.Date)
}

func TestForm_Submit_Failure(t *testing.T) {
	client := new(MockIntakeClient)
	store := new(MockOrderStore)
	f := newTestForm(client, store)
	fill(t, f)
	ctx := context.Background()

	client.On("SubmitOrder", ctx, mock.Anything).Return(nil, errors.New("intake API returned status: 500")).Once()

	order, err := f.Submit(ctx)

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.Equal(t, StateError, f.State())
	assert.EqualError(t, f.Err(), "intake API returned status: 500")
	store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)

	// The error state stays editable and can be re-submitted.
	require.NoError(t, f.SetAddress("Rr. Taulantia 10"))
	client.On("SubmitOrder", ctx, mock.MatchedBy(func(o domain.OrderFormData) bool {
		return o.Address == "Rr. Taulantia 10"
	})).Return(&ports.IntakeResult{OrderID: "Z9X8C7V6"}, nil).Once()
	store.On("Add", ctx, mock.Anything).Return(nil).Once()

	order, err = f.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Z9X8C7V6", order.ID)
	assert.Equal(t, StateSuccess, f.State())
	assert.NoError(t, f.Err())
}

func TestForm_Submit_StoreFailureIsNotFatal(t *testing.T) {
	client := new(MockIntakeClient)
	store := new(MockOrderStore)
	f := newTestForm(client, store)
	fill(t, f)
	ctx := context.Background()

	client.On("SubmitOrder", ctx, mock.Anything).Return(&ports.IntakeResult{OrderID: "Q1W2E3R4"}, nil).Once()
	store.On("Add", ctx, mock.Anything).Return(errors.New("redis down")).Once()

	_, err := f.Submit(ctx)

	assert.NoError(t, err)
	assert.Equal(t, StateSuccess, f.State())
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "5", want: 5, ok: true},
		{in: " 42 ", want: 42, ok: true},
		{in: "3.7", want: 3, ok: true},
		{in: "-1", want: -1, ok: true},
		{in: "", ok: false},
		{in: "x1", ok: false},
		{in: "+", ok: false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
