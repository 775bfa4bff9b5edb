package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dshills/posengine/internal/reporting"
	"github.com/dshills/posengine/pkg/types"
)

func sampleReport() *reporting.DailyReport {
	return &reporting.DailyReport{
		Date: "2025-03-01",
		Summary: reporting.Summary{
			TotalOrders:     2,
			TotalSalesCents: 1666,
			CashCents:       1038,
			CardCents:       628,
		},
		Orders: []reporting.OrderRow{
			{OrderNumber: 2, Method: types.PaymentCard, AmountCents: 628, PaidAt: time.Date(2025, 3, 1, 13, 10, 0, 0, time.UTC)},
			{OrderNumber: 1, Method: types.PaymentCash, AmountCents: 1038, PaidAt: time.Date(2025, 3, 1, 10, 20, 0, 0, time.UTC)},
		},
		Items: []reporting.ItemRow{
			{ItemName: "Fries", Quantity: 2},
			{ItemName: "Classic Burger", Quantity: 1},
		},
		Categories: []reporting.CategoryRow{
			{CategoryName: "Burgers", Quantity: 1, RevenueCents: 799},
		},
		TopItems: []reporting.TopItemRow{
			{ItemName: "Fries", Quantity: 2, RevenueCents: 598},
		},
		Hourly: []reporting.HourlyRow{
			{Hour: 10, Label: "10:00", RevenueCents: 1038},
		},
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteFile(sampleReport(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetOrders, SheetItems, SheetCategories, SheetTopItems, SheetHourly}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"2025-03-01", "2", "16.66", "10.38", "6.28", "0.00", "0.00"}, summary[1])

	orders, err := f.GetRows(SheetOrders)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{"2", "Card", "6.28", "2025-03-01 13:10:00"}, orders[1])

	top, err := f.GetRows(SheetTopItems)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Fries", "2", "5.98"}, top[1])
}

func TestWriteEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&reporting.DailyReport{Date: "2025-06-01"}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetHourly)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hour (UTC)", "Revenue"}}, rows)
}
