package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cotizador/internal/service/eta"
	"cotizador/internal/storage"
)

type MockQueueProjector struct {
	mock.Mock
}

func (m *MockQueueProjector) ProjectQueue(ctx context.Context, productID int64) (*eta.QueueProjection, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eta.QueueProjection), args.Error(1)
}

func TestProductionQueueExcel(t *testing.T) {
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	queues := new(MockQueueProjector)
	queues.On("ProjectQueue", mock.Anything, int64(1)).Return(&eta.QueueProjection{
		Product: &storage.Product{ID: 1, SKU: "TZ-12", Name: "Taza 12oz", VueltasMaxDia: 10},
		Items: eta.Project(10, []eta.QueueItem{
			{AllocationID: 1, Folio: "FK-202605-1", Quantity: 20, Pending: 20, PaidAt: today.AddDate(0, 0, -3)},
			{AllocationID: 2, Folio: "FK-202605-2", Quantity: 5, Pending: 5, Priority: true, PaidAt: today.AddDate(0, 0, -1)},
		}, today),
	}, nil)
	queues.On("ProjectQueue", mock.Anything, int64(2)).Return(&eta.QueueProjection{
		Product: &storage.Product{ID: 2, SKU: "PL-01", Name: "Plato"},
	}, nil)

	data, err := NewGenerateService(queues).ProductionQueueExcel(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"Taza 12oz", "TZ-12", "10", "1", "FK-202605-2", "prioridad", "5", "5", "2026-05-31", "1", "2026-06-02"}, rows[1])
	assert.Equal(t, "FK-202605-1", rows[2][4])
	assert.Equal(t, "2026-06-04", rows[2][10])
}

func TestProductionQueueExcel_Error(t *testing.T) {
	queues := new(MockQueueProjector)
	queues.On("ProjectQueue", mock.Anything, int64(1)).Return(nil, storage.ErrNotFound)

	_, err := NewGenerateService(queues).ProductionQueueExcel(context.Background(), []int64{1})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
