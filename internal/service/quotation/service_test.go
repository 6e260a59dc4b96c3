package quotation

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cotizador/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateQuotation(ctx context.Context, q *storage.Quotation, folio func(id int64) string) (int64, error) {
	args := m.Called(ctx, q, folio)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetQuotation(ctx context.Context, id int64) (*storage.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Quotation), args.Error(1)
}

func (m *MockStorage) ListQuotations(ctx context.Context, filter storage.QuotationFilter) ([]*storage.Quotation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Quotation), args.Error(1)
}

func (m *MockStorage) UpdateQuotationStatus(ctx context.Context, id int64, from, to string) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockStorage) MarkQuotationPaid(ctx context.Context, p storage.QuotationPayment) ([]storage.Allocation, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Allocation), args.Error(1)
}

type stubRates struct {
	rate decimal.Decimal
	err  error
}

func (s stubRates) USDMXN(context.Context) (decimal.Decimal, error) {
	return s.rate, s.err
}

var now = time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)

func newService(st Storage, rates ExchangeRates) *Service {
	return NewService(slog.Default(), st, rates, decimal.RequireFromString("0.16")).
		WithClock(func() time.Time { return now })
}

func TestService_Create_USD(t *testing.T) {
	st := new(MockStorage)
	st.On("CreateQuotation", mock.Anything, mock.MatchedBy(func(q *storage.Quotation) bool {
		return q.Currency == CurrencyUSD &&
			q.ExchangeRate.Equal(decimal.RequireFromString("17.2345")) &&
			q.Status == StatusBorrador &&
			q.Subtotal.Equal(decimal.NewFromInt(200)) &&
			q.Tax.Equal(decimal.NewFromInt(32)) &&
			q.Total.Equal(decimal.NewFromInt(232))
	}), mock.Anything).Return(int64(42), nil)
	st.On("GetQuotation", mock.Anything, int64(42)).
		Return(&storage.Quotation{ID: 42, Folio: "FK-202605-42", Status: StatusBorrador}, nil)

	svc := newService(st, stubRates{rate: decimal.RequireFromString("17.2345")})

	q, err := svc.Create(context.Background(), CreateRequest{
		ClientID: 7,
		Currency: "usd",
		Items:    []storage.QuotationItem{{ProductID: 1, Quantity: 4, UnitPrice: decimal.NewFromInt(50)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "FK-202605-42", q.Folio)

	st.AssertExpectations(t)
}

func TestService_Create_FolioUsesClock(t *testing.T) {
	st := new(MockStorage)
	var folio func(int64) string
	st.On("CreateQuotation", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { folio = args.Get(2).(func(int64) string) }).
		Return(int64(3), nil)
	st.On("GetQuotation", mock.Anything, int64(3)).Return(&storage.Quotation{ID: 3}, nil)

	_, err := newService(st, stubRates{}).Create(context.Background(), CreateRequest{
		ClientID: 1,
		Items:    []storage.QuotationItem{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	require.NotNil(t, folio)
	assert.Equal(t, "FK-202605-3", folio(3))
}

func TestService_Create_RateError(t *testing.T) {
	st := new(MockStorage)

	_, err := newService(st, stubRates{err: errors.New("banxico down")}).Create(context.Background(), CreateRequest{
		ClientID: 1,
		Currency: CurrencyUSD,
		Items:    []storage.QuotationItem{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.ErrorContains(t, err, "banxico down")
	st.AssertNotCalled(t, "CreateQuotation", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_Invalid(t *testing.T) {
	st := new(MockStorage)

	_, err := newService(st, stubRates{}).Create(context.Background(), CreateRequest{ClientID: 1})
	assert.ErrorIs(t, err, ErrInvalidQuotation)
}

func TestService_UpdateStatus(t *testing.T) {
	st := new(MockStorage)
	st.On("GetQuotation", mock.Anything, int64(8)).Return(&storage.Quotation{ID: 8, Status: StatusEnviada}, nil)
	st.On("UpdateQuotationStatus", mock.Anything, int64(8), StatusEnviada, StatusAprobada).Return(nil)

	q, err := newService(st, stubRates{}).UpdateStatus(context.Background(), 8, StatusAprobada)
	require.NoError(t, err)
	assert.Equal(t, StatusAprobada, q.Status)
}

func TestService_UpdateStatus_Rejected(t *testing.T) {
	st := new(MockStorage)
	st.On("GetQuotation", mock.Anything, int64(8)).Return(&storage.Quotation{ID: 8, Status: StatusBorrador}, nil)

	_, err := newService(st, stubRates{}).UpdateStatus(context.Background(), 8, StatusAprobada)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = newService(st, stubRates{}).UpdateStatus(context.Background(), 8, StatusPagada)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	st.AssertNotCalled(t, "UpdateQuotationStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_MarkPaid(t *testing.T) {
	st := new(MockStorage)
	st.On("GetQuotation", mock.Anything, int64(9)).Return(&storage.Quotation{ID: 9, Status: StatusAprobada}, nil)
	st.On("MarkQuotationPaid", mock.Anything, storage.QuotationPayment{
		QuotationID: 9,
		Premium:     true,
		PaidAt:      now,
	}).Return([]storage.Allocation{{ID: 1, ProductID: 2, Quantity: 30}}, nil)

	res, err := newService(st, stubRates{}).MarkPaid(context.Background(), 9, false, true)
	require.NoError(t, err)

	assert.Equal(t, StatusPagada, res.Quotation.Status)
	assert.True(t, res.Quotation.Premium)
	require.NotNil(t, res.Quotation.PaidAt)
	assert.Equal(t, now, *res.Quotation.PaidAt)
	assert.Len(t, res.Allocations, 1)
}

func TestService_MarkPaid_NotApproved(t *testing.T) {
	st := new(MockStorage)
	st.On("GetQuotation", mock.Anything, int64(9)).Return(&storage.Quotation{ID: 9, Status: StatusEnviada}, nil)

	_, err := newService(st, stubRates{}).MarkPaid(context.Background(), 9, true, false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_Get_NotFound(t *testing.T) {
	st := new(MockStorage)
	st.On("GetQuotation", mock.Anything, int64(1)).Return(nil, storage.ErrNotFound)

	_, err := newService(st, stubRates{}).Get(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
