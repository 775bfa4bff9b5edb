package reporting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

// DefaultTopItems is the row limit of TopItems when none is given.
const DefaultTopItems = 10

// Summary is the day's headline numbers. Order count and sales come from
// paid orders created that day; the method split comes from payments taken
// that day.
type Summary struct {
	TotalOrders     int   `json:"total_orders"`
	TotalSalesCents int64 `json:"total_sales_cents"`
	CashCents       int64 `json:"cash_cents"`
	CardCents       int64 `json:"card_cents"`
	UpiCents        int64 `json:"upi_cents"`
	GiftCents       int64 `json:"gift_cents"`
}

// OrderRow is one payment on the day's order list.
type OrderRow struct {
	OrderNumber int                 `json:"order_number"`
	Method      types.PaymentMethod `json:"method"`
	AmountCents int64               `json:"amount_cents"`
	PaidAt      time.Time           `json:"paid_at"`
}

// ItemRow is the quantity sold of one item name.
type ItemRow struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// CategoryRow is quantity and revenue per category.
type CategoryRow struct {
	CategoryName string `json:"category_name"`
	Quantity     int    `json:"quantity"`
	RevenueCents int64  `json:"revenue_cents"`
}

// TopItemRow is an item ranked by quantity, then revenue.
type TopItemRow struct {
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	RevenueCents int64  `json:"revenue_cents"`
}

// HourlyRow is payment revenue for one UTC hour.
type HourlyRow struct {
	Hour         int    `json:"hour"`
	Label        string `json:"label"`
	RevenueCents int64  `json:"revenue_cents"`
}

// DailyReport bundles every section for one UTC day.
type DailyReport struct {
	Date       string        `json:"date"`
	Summary    Summary       `json:"summary"`
	Orders     []OrderRow    `json:"orders"`
	Items      []ItemRow     `json:"items"`
	Categories []CategoryRow `json:"categories"`
	TopItems   []TopItemRow  `json:"top_items"`
	Hourly     []HourlyRow   `json:"hourly"`
}

// cacheEntry is a report with its expiry
type cacheEntry struct {
	report    *DailyReport
	expiresAt time.Time
}

// Service aggregates paid orders and payments. It never writes.
type Service struct {
	storage  storage.Storage
	log      logrus.FieldLogger
	cache    *lru.Cache[string, *cacheEntry]
	cacheMu  sync.Mutex
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService creates a reporting service. Full daily reports are cached for
// cacheTTL; zero disables the cache.
func NewService(store storage.Storage, log logrus.FieldLogger, cacheTTL time.Duration) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cache, err := lru.New[string, *cacheEntry](64)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Service{
		storage:  store,
		log:      log.WithField("component", "reporting"),
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// DayRange returns the UTC calendar day containing date as [from, to).
func DayRange(date time.Time) (from, to time.Time) {
	d := date.UTC()
	from = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

func (s *Service) DailySummary(ctx context.Context, date time.Time) (Summary, error) {
	from, to := DayRange(date)
	var summary Summary

	orders, err := s.storage.ListPaidOrders(ctx, from, to)
	if err != nil {
		return summary, err
	}
	summary.TotalOrders = len(orders)
	for _, o := range orders {
		summary.TotalSalesCents += o.TotalCents
	}

	payments, err := s.storage.ListPaymentRows(ctx, from, to)
	if err != nil {
		return summary, err
	}
	for _, row := range payments {
		switch row.Payment.Method {
		case types.PaymentCash:
			summary.CashCents += row.Payment.AmountCents
		case types.PaymentCard:
			summary.CardCents += row.Payment.AmountCents
		case types.PaymentUpi:
			summary.UpiCents += row.Payment.AmountCents
		case types.PaymentGift:
			summary.GiftCents += row.Payment.AmountCents
		}
	}
	return summary, nil
}

// DailyOrders lists the day's payments, newest first.
func (s *Service) DailyOrders(ctx context.Context, date time.Time) ([]OrderRow, error) {
	from, to := DayRange(date)
	payments, err := s.storage.ListPaymentRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rows := make([]OrderRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, OrderRow{
			OrderNumber: p.OrderNumber,
			Method:      p.Payment.Method,
			AmountCents: p.Payment.AmountCents,
			PaidAt:      p.Payment.PaidAt,
		})
	}
	return rows, nil
}

// DailyItemSales totals quantity per item name, largest first.
func (s *Service) DailyItemSales(ctx context.Context, date time.Time) ([]ItemRow, error) {
	top, err := s.itemTotals(ctx, date)
	if err != nil {
		return nil, err
	}
	rows := make([]ItemRow, 0, len(top))
	for _, t := range top {
		rows = append(rows, ItemRow{ItemName: t.ItemName, Quantity: t.Quantity})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		return rows[i].ItemName < rows[j].ItemName
	})
	return rows, nil
}

// DailyCategorySales totals quantity and revenue per category, highest
// revenue first. Lines whose menu item no longer resolves are left out.
func (s *Service) DailyCategorySales(ctx context.Context, date time.Time) ([]CategoryRow, error) {
	from, to := DayRange(date)
	lines, err := s.storage.ListSoldLines(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*CategoryRow)
	for _, l := range lines {
		if l.CategoryName == "" {
			continue
		}
		row, ok := byName[l.CategoryName]
		if !ok {
			row = &CategoryRow{CategoryName: l.CategoryName}
			byName[l.CategoryName] = row
		}
		row.Quantity += l.Qty
		row.RevenueCents += l.LineTotalCents
	}

	rows := make([]CategoryRow, 0, len(byName))
	for _, r := range byName {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RevenueCents != rows[j].RevenueCents {
			return rows[i].RevenueCents > rows[j].RevenueCents
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows, nil
}

// TopItems ranks items by quantity, then revenue, then name. limit <= 0
// means DefaultTopItems.
func (s *Service) TopItems(ctx context.Context, date time.Time, limit int) ([]TopItemRow, error) {
	if limit <= 0 {
		limit = DefaultTopItems
	}
	rows, err := s.itemTotals(ctx, date)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		if rows[i].RevenueCents != rows[j].RevenueCents {
			return rows[i].RevenueCents > rows[j].RevenueCents
		}
		return rows[i].ItemName < rows[j].ItemName
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// itemTotals groups sold lines by item name snapshot, unordered.
func (s *Service) itemTotals(ctx context.Context, date time.Time) ([]TopItemRow, error) {
	from, to := DayRange(date)
	lines, err := s.storage.ListSoldLines(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*TopItemRow)
	for _, l := range lines {
		row, ok := byName[l.ItemName]
		if !ok {
			row = &TopItemRow{ItemName: l.ItemName}
			byName[l.ItemName] = row
		}
		row.Quantity += l.Qty
		row.RevenueCents += l.LineTotalCents
	}

	rows := make([]TopItemRow, 0, len(byName))
	for _, r := range byName {
		rows = append(rows, *r)
	}
	return rows, nil
}

// HourlySales totals the day's payments per UTC hour, in hour order. Hours
// without payments are omitted.
func (s *Service) HourlySales(ctx context.Context, date time.Time) ([]HourlyRow, error) {
	from, to := DayRange(date)
	payments, err := s.storage.ListPaymentRows(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var byHour [24]int64
	var seen [24]bool
	for _, p := range payments {
		h := p.Payment.PaidAt.UTC().Hour()
		byHour[h] += p.Payment.AmountCents
		seen[h] = true
	}

	var rows []HourlyRow
	for h := 0; h < 24; h++ {
		if seen[h] {
			rows = append(rows, HourlyRow{Hour: h, Label: fmt.Sprintf("%02d:00", h), RevenueCents: byHour[h]})
		}
	}
	return rows, nil
}

// Daily builds every section concurrently. Results are served from the
// cache while fresh.
func (s *Service) Daily(ctx context.Context, date time.Time, top int) (*DailyReport, error) {
	from, _ := DayRange(date)
	key := fmt.Sprintf("%s/%d", from.Format(time.DateOnly), top)

	if report := s.cached(key); report != nil {
		return report, nil
	}

	report := &DailyReport{Date: from.Format(time.DateOnly)}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.DailySummary(gctx, date)
		report.Summary = summary
		return err
	})
	g.Go(func() error {
		rows, err := s.DailyOrders(gctx, date)
		report.Orders = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.DailyItemSales(gctx, date)
		report.Items = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.DailyCategorySales(gctx, date)
		report.Categories = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.TopItems(gctx, date, top)
		report.TopItems = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.HourlySales(gctx, date)
		report.Hourly = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build daily report: %w", err)
	}

	s.store(key, report)
	s.log.WithFields(logrus.Fields{
		"date":   report.Date,
		"orders": report.Summary.TotalOrders,
	}).Debug("daily report built")
	return report, nil
}

func (s *Service) cached(key string) *DailyReport {
	if s.cacheTTL <= 0 {
		return nil
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	entry, ok := s.cache.Get(key)
	if !ok {
		return nil
	}
	if s.now().After(entry.expiresAt) {
		s.cache.Remove(key)
		return nil
	}
	return entry.report
}

func (s *Service) store(key string, report *DailyReport) {
	if s.cacheTTL <= 0 {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache.Add(key, &cacheEntry{report: report, expiresAt: s.now().Add(s.cacheTTL)})
}

// Invalidate drops every cached report.
func (s *Service) Invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache.Purge()
}
