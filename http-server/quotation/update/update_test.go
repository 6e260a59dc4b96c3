package update

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cotizador/internal/service/quotation"
	"cotizador/internal/storage"
)

type MockQuotationUpdater struct {
	mock.Mock
}

func (m *MockQuotationUpdater) UpdateStatus(ctx context.Context, id int64, to string) (*storage.Quotation, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Quotation), args.Error(1)
}

func (m *MockQuotationUpdater) MarkPaid(ctx context.Context, id int64, priority, premium bool) (*quotation.PaymentResult, error) {
	args := m.Called(ctx, id, priority, premium)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quotation.PaymentResult), args.Error(1)
}

func router(m *MockQuotationUpdater) http.Handler {
	r := chi.NewRouter()
	r.Put("/api/quotations/{id}/status", UpdateStatus(slog.Default(), m))
	r.Post("/api/quotations/{id}/pay", MarkPaid(slog.Default(), m))
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestUpdateStatus(t *testing.T) {
	m := new(MockQuotationUpdater)
	m.On("UpdateStatus", mock.Anything, int64(4), "enviada").
		Return(&storage.Quotation{ID: 4, Status: "enviada"}, nil)
	m.On("UpdateStatus", mock.Anything, int64(5), "aprobada").
		Return(nil, fmt.Errorf("svc: %w", quotation.ErrInvalidTransition))
	m.On("UpdateStatus", mock.Anything, int64(6), "enviada").
		Return(nil, fmt.Errorf("svc: %w", storage.ErrNotFound))

	assert.Equal(t, http.StatusOK, do(router(m), http.MethodPut, "/api/quotations/4/status", `{"status":"enviada"}`).Code)
	assert.Equal(t, http.StatusConflict, do(router(m), http.MethodPut, "/api/quotations/5/status", `{"status":"aprobada"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(router(m), http.MethodPut, "/api/quotations/6/status", `{"status":"enviada"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router(m), http.MethodPut, "/api/quotations/6/status", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router(m), http.MethodPut, "/api/quotations/x/status", `{"status":"enviada"}`).Code)
}

func TestMarkPaid(t *testing.T) {
	m := new(MockQuotationUpdater)
	m.On("MarkPaid", mock.Anything, int64(9), true, false).Return(&quotation.PaymentResult{
		Quotation:   &storage.Quotation{ID: 9, Status: quotation.StatusPagada},
		Allocations: []storage.Allocation{{ID: 1, ProductID: 2, Quantity: 30}},
	}, nil)
	m.On("MarkPaid", mock.Anything, int64(10), false, false).
		Return(nil, fmt.Errorf("svc: %w", storage.ErrConflict))

	rr := do(router(m), http.MethodPost, "/api/quotations/9/pay", `{"priority":true}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"allocations"`)

	// empty body is a regular payment
	rr = do(router(m), http.MethodPost, "/api/quotations/10/pay", ``)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(router(m), http.MethodPost, "/api/quotations/9/pay", `{"priority":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	m.AssertExpectations(t)
}
