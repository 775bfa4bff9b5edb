// Package export writes a daily report to an XLSX workbook, one sheet per
// section.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dshills/posengine/internal/money"
	"github.com/dshills/posengine/internal/reporting"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetOrders     = "Orders"
	SheetItems      = "Items"
	SheetCategories = "Categories"
	SheetTopItems   = "Top Items"
	SheetHourly     = "Hourly"
)

// defaultSheet is the sheet excelize creates with a new file.
const defaultSheet = "Sheet1"

// Workbook builds the report workbook. The caller closes it.
func Workbook(report *reporting.DailyReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := &writer{f: f, header: header}
	s := report.Summary
	w.sheet(SheetSummary, []interface{}{"Date", "Orders", "Sales", "Cash", "Card", "UPI", "Gift"}, [][]interface{}{{
		report.Date, s.TotalOrders,
		money.Format(s.TotalSalesCents), money.Format(s.CashCents), money.Format(s.CardCents),
		money.Format(s.UpiCents), money.Format(s.GiftCents),
	}})

	orders := make([][]interface{}, 0, len(report.Orders))
	for _, o := range report.Orders {
		orders = append(orders, []interface{}{o.OrderNumber, string(o.Method), money.Format(o.AmountCents), o.PaidAt.UTC().Format(time.DateTime)})
	}
	w.sheet(SheetOrders, []interface{}{"Order #", "Method", "Amount", "Paid At (UTC)"}, orders)

	items := make([][]interface{}, 0, len(report.Items))
	for _, i := range report.Items {
		items = append(items, []interface{}{i.ItemName, i.Quantity})
	}
	w.sheet(SheetItems, []interface{}{"Item", "Quantity"}, items)

	cats := make([][]interface{}, 0, len(report.Categories))
	for _, c := range report.Categories {
		cats = append(cats, []interface{}{c.CategoryName, c.Quantity, money.Format(c.RevenueCents)})
	}
	w.sheet(SheetCategories, []interface{}{"Category", "Quantity", "Revenue"}, cats)

	top := make([][]interface{}, 0, len(report.TopItems))
	for i, t := range report.TopItems {
		top = append(top, []interface{}{i + 1, t.ItemName, t.Quantity, money.Format(t.RevenueCents)})
	}
	w.sheet(SheetTopItems, []interface{}{"Rank", "Item", "Quantity", "Revenue"}, top)

	hourly := make([][]interface{}, 0, len(report.Hourly))
	for _, h := range report.Hourly {
		hourly = append(hourly, []interface{}{h.Label, money.Format(h.RevenueCents)})
	}
	w.sheet(SheetHourly, []interface{}{"Hour (UTC)", "Revenue"}, hourly)

	if w.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to build workbook: %w", w.err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteFile saves the report workbook to path.
func WriteFile(report *reporting.DailyReport, path string) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// Write streams the report workbook to w.
func Write(report *reporting.DailyReport, w io.Writer) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writer keeps the first error so sheet building reads straight through.
type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) sheet(name string, header []interface{}, rows [][]interface{}) {
	if w.err != nil {
		return
	}
	if name != SheetSummary {
		if _, w.err = w.f.NewSheet(name); w.err != nil {
			return
		}
	}
	if w.err = w.f.SetSheetRow(name, "A1", &header); w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		w.err = err
		return
	}
	if w.err = w.f.SetCellStyle(name, "A1", last, w.header); w.err != nil {
		return
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			w.err = err
			return
		}
		if w.err = w.f.SetSheetRow(name, cell, &rows[i]); w.err != nil {
			return
		}
	}
}
