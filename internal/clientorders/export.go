package clientorders

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

const exportSheet = "Production"

var exportColumns = []struct {
	title string
	width float64
}{
	{"Order #", 14},
	{"Store", 28},
	{"Status", 16},
	{"Production Start", 18},
	{"Delivery Date", 16},
	{"Ship ASAP", 11},
	{"Items", 48},
	{"Total", 12},
	{"Rep", 22},
}

// openStatuses are the statuses that still need production work.
var openStatuses = []enums.ClientOrderStatus{
	enums.ClientOrderWaiting,
	enums.ClientOrderStage1,
	enums.ClientOrderStage2,
	enums.ClientOrderStage3,
	enums.ClientOrderStage4,
	enums.ClientOrderReadyToShip,
}

// ExportProductionSchedule writes an XLSX workbook of the orders matching
// input, earliest production start first. Without a status filter only open
// orders are exported.
func (s *service) ExportProductionSchedule(ctx context.Context, input ListOrdersInput, w io.Writer) error {
	filter, err := buildFilter(input)
	if err != nil {
		return err
	}
	if len(filter.Statuses) == 0 {
		filter.Statuses = openStatuses
	}
	filter.OrderBy = "client_orders.production_start_date ASC"
	orders, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders for export")
	}

	storeByClient := map[uuid.UUID]uuid.UUID{}
	var storeIDs, repIDs []uuid.UUID
	for _, order := range orders {
		if _, seen := storeByClient[order.ClientID]; !seen {
			client, err := s.clients.Lookup(ctx, order.ClientID)
			switch {
			case err == nil:
				storeByClient[order.ClientID] = client.StoreID
				storeIDs = append(storeIDs, client.StoreID)
			case pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound:
				storeByClient[order.ClientID] = uuid.Nil
			default:
				return err
			}
		}
		if order.AssignedRepID != nil {
			repIDs = append(repIDs, *order.AssignedRepID)
		}
	}
	stores, err := s.directory.StoreNames(ctx, storeIDs)
	if err != nil {
		return err
	}
	reps, err := s.directory.RepNames(ctx, repIDs)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prepare export sheet")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prepare export style")
	}
	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col.title)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, name, name, col.width)
	}

	for rowIdx, order := range orders {
		rep := ""
		if order.AssignedRepID != nil {
			rep = reps[*order.AssignedRepID]
		}
		asap := "No"
		if order.ShipASAP {
			asap = "Yes"
		}
		total, _ := order.Total.Float64()
		values := []any{
			order.OrderNumber,
			stores[storeByClient[order.ClientID]],
			string(order.Status),
			types.NewDate(order.ProductionStartDate).String(),
			types.NewDate(order.DeliveryDate).String(),
			asap,
			describeItems(order.Items),
			total,
			rep,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(exportSheet, cell, value)
		}
	}

	if err := f.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export")
	}
	return nil
}

func describeItems(items []models.ClientOrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (%s) x%d", item.FlavorName, item.ProductType, item.Quantity))
	}
	return strings.Join(parts, "; ")
}
