package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"cotizador/internal/service/eta"
)

type QueueProjector interface {
	ProjectQueue(ctx context.Context, productID int64) (*eta.QueueProjection, error)
}

type GenerateExcelService struct {
	queues QueueProjector
}

func NewGenerateService(queues QueueProjector) *GenerateExcelService {
	return &GenerateExcelService{queues: queues}
}

const sheet = "Cola de produccion"

var headers = []string{"Producto", "SKU", "Vueltas/dia", "Posicion", "Folio", "Nivel", "Cantidad", "Pendiente", "Fecha pago", "Dias", "Entrega estimada"}

// ProductionQueueExcel builds one sheet with the projected queue of every requested product.
func (g *GenerateExcelService) ProductionQueueExcel(ctx context.Context, productIDs []int64) ([]byte, error) {
	const op = "service.generate_excel.ProductionQueueExcel"

	projections := make([]*eta.QueueProjection, len(productIDs))

	g1, gctx := errgroup.WithContext(ctx)
	g1.SetLimit(4)

	for i, id := range productIDs {
		i, id := i, id
		g1.Go(func() error {
			p, err := g.queues.ProjectQueue(gctx, id)
			if err != nil {
				return fmt.Errorf("producto id=%d: %w", id, err)
			}
			projections[i] = p
			return nil
		})
	}

	if err := g1.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}

	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	row := 2
	for _, p := range projections {
		for _, it := range p.Items {
			values := []any{
				p.Product.Name,
				p.Product.SKU,
				eta.EffectiveCapacity(p.Product.VueltasMaxDia),
				it.Position,
				it.Folio,
				it.Tier,
				it.Quantity,
				it.Pending,
				it.PaidAt.Format("2006-01-02"),
				it.CumulativeDays,
				it.ETA.Format("2006-01-02"),
			}
			for col, v := range values {
				f.SetCellValue(sheet, cellName(col+1, row), v)
			}
			row++
		}
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheet, "A", "K", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
