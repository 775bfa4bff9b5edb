package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/export"
	"github.com/dshills/posengine/internal/money"
	"github.com/dshills/posengine/internal/reporting"
	"github.com/dshills/posengine/internal/storage"
)

var (
	// Report flags
	reportDate string
	reportXLSX string
	reportTop  int
)

// reportCmd prints or exports a day's sales
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print or export the daily sales report",
	Long: `Build the sales report for one UTC day from paid orders and payments.

Examples:
  posengine report                            # today
  posengine report --date 2025-03-01          # a past day
  posengine report --date 2025-03-01 --xlsx day.xlsx
  posengine report --json`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Day as YYYY-MM-DD (default today, UTC)")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "Write the report to this XLSX file")
	reportCmd.Flags().IntVar(&reportTop, "top", 0, "Rows in the top items section (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	date := time.Now().UTC()
	if reportDate != "" {
		var err error
		date, err = time.ParseInLocation(time.DateOnly, reportDate, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", reportDate)
		}
	}
	top := reportTop
	if top <= 0 {
		top = conf.Report.TopItems
	}

	store, err := storage.NewSQLiteStorage(conf.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := reporting.NewService(store, log, 0).Daily(cmd.Context(), date, top)
	if err != nil {
		return err
	}

	if reportXLSX != "" {
		if err := export.WriteFile(report, reportXLSX); err != nil {
			return err
		}
		log.WithField("file", reportXLSX).Info("report exported")
	}
	if jsonOutput {
		return printJSON(report)
	}
	printReport(report)
	return nil
}

func printReport(r *reporting.DailyReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	s := r.Summary
	_, _ = fmt.Fprintf(w, "Daily report %s\n\n", r.Date)
	_, _ = fmt.Fprintf(w, "Orders\t%d\n", s.TotalOrders)
	_, _ = fmt.Fprintf(w, "Sales\t%s\n", money.Format(s.TotalSalesCents))
	_, _ = fmt.Fprintf(w, "Cash\t%s\nCard\t%s\nUPI\t%s\nGift\t%s\n",
		money.Format(s.CashCents), money.Format(s.CardCents), money.Format(s.UpiCents), money.Format(s.GiftCents))

	_, _ = fmt.Fprintf(w, "\nPAYMENTS\nORDER\tMETHOD\tAMOUNT\tPAID AT (UTC)\n")
	for _, o := range r.Orders {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", o.OrderNumber, o.Method, money.Format(o.AmountCents), o.PaidAt.Format(time.DateTime))
	}

	_, _ = fmt.Fprintf(w, "\nCATEGORIES\nCATEGORY\tQTY\tREVENUE\n")
	for _, c := range r.Categories {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", c.CategoryName, c.Quantity, money.Format(c.RevenueCents))
	}

	_, _ = fmt.Fprintf(w, "\nTOP ITEMS\n#\tITEM\tQTY\tREVENUE\n")
	for i, t := range r.TopItems {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i+1, t.ItemName, t.Quantity, money.Format(t.RevenueCents))
	}

	_, _ = fmt.Fprintf(w, "\nHOURLY (UTC)\nHOUR\tREVENUE\n")
	for _, h := range r.Hourly {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", h.Label, money.Format(h.RevenueCents))
	}
}
