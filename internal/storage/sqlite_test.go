package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/posengine/internal/numbering"
	"github.com/dshills/posengine/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func seededDB(t *testing.T) *SQLiteStorage {
	storage := setupTestDB(t)
	_, err := storage.Seed(context.Background(), "hash", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return storage
}

func dayWindow(day time.Time) numbering.Window {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return numbering.Window{Start: start, End: start.AddDate(0, 0, 1)}
}

func newOrderAt(t *testing.T, s *SQLiteStorage, at time.Time) *types.Order {
	t.Helper()
	order := types.NewOrder(0, types.OrderDineIn, SeedAdminUserID, at)
	require.NoError(t, s.CreateOrder(context.Background(), order, dayWindow(at)))
	return order
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)

	assert.NotNil(t, storage.db)
	version, err := storage.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, storage.db))
	version, err := storage.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestRollbackMigration(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, storage.Rollback(ctx))
	version, err := storage.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", version)

	_, err = storage.GetSetting(ctx, SettingOrderNumberResetMode)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, ApplyMigrations(ctx, storage.db))
	mode, err := storage.GetSetting(ctx, SettingOrderNumberResetMode)
	require.NoError(t, err)
	assert.Equal(t, "Daily", mode)
}

func TestSettings_Defaults(t *testing.T) {
	storage := setupTestDB(t)

	settings, err := storage.ListSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		SettingRestaurantName:            "Restaurant POS",
		SettingOrderNumberResetMode:      "Daily",
		SettingDailyStartHour:            "0",
		SettingBusinessDayStartHour:      "0",
		SettingDaypartBreakfastStartHour: "6",
		SettingDaypartLunchStartHour:     "11",
		SettingDaypartDinnerStartHour:    "16",
	}, settings)
}

func TestSetSetting_Upsert(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, storage.SetSetting(ctx, SettingRestaurantName, "Bob's"))
	require.NoError(t, storage.SetSetting(ctx, "Custom", "x"))

	name, err := storage.GetSetting(ctx, SettingRestaurantName)
	require.NoError(t, err)
	assert.Equal(t, "Bob's", name)

	custom, err := storage.GetSetting(ctx, "Custom")
	require.NoError(t, err)
	assert.Equal(t, "x", custom)

	_, err = storage.GetSetting(ctx, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSettings_AllOrNothing(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, storage.SetSettings(ctx, map[string]string{
		SettingDaypartBreakfastStartHour: "5",
		SettingDaypartLunchStartHour:     "10",
		SettingDaypartDinnerStartHour:    "17",
	}))
	settings, err := storage.ListSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5", settings[SettingDaypartBreakfastStartHour])
	assert.Equal(t, "10", settings[SettingDaypartLunchStartHour])
	assert.Equal(t, "17", settings[SettingDaypartDinnerStartHour])

	// Breakfast sorts before dinner, so it is written before the failure.
	_, err = storage.db.ExecContext(ctx, `
		CREATE TRIGGER lock_dinner BEFORE UPDATE ON app_settings
		WHEN NEW.key = 'DaypartDinnerStartHour'
		BEGIN SELECT RAISE(ABORT, 'dinner hour is locked'); END`)
	require.NoError(t, err)

	err = storage.SetSettings(ctx, map[string]string{
		SettingDaypartBreakfastStartHour: "7",
		SettingDaypartLunchStartHour:     "12",
		SettingDaypartDinnerStartHour:    "18",
	})
	require.Error(t, err)

	after, err := storage.ListSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, after)
}

func TestSeed_Idempotent(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := storage.Seed(ctx, "hash", now)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Users: 1, Categories: 3, MenuItems: 10, Customizations: 3, Assignments: 9}, first)

	second, err := storage.Seed(ctx, "hash", now)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{}, second)

	categories, err := storage.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Burgers", categories[0].Name)
	assert.Equal(t, "Drinks", categories[2].Name)

	admin, err := storage.GetUser(ctx, SeedAdminUserID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
}

func TestCategories_SortAndFilter(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	for _, c := range []*types.MenuCategory{
		{ID: "c1", Name: "Zeta", SortOrder: 1, IsActive: true},
		{ID: "c2", Name: "Alpha", SortOrder: 1, IsActive: true},
		{ID: "c3", Name: "Beta", SortOrder: 0, IsActive: false},
	} {
		require.NoError(t, storage.CreateCategory(ctx, c))
	}

	all, err := storage.ListCategories(ctx, false)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Beta", "Alpha", "Zeta"}, names)

	active, err := storage.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	err = storage.CreateCategory(ctx, &types.MenuCategory{ID: "c1", Name: "Dup"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = storage.UpdateCategory(ctx, &types.MenuCategory{ID: "missing", Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategory_BlockedByMenuItems(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	err := storage.DeleteCategory(ctx, SeedCategoryDrinks)
	assert.ErrorIs(t, err, ErrInUse)

	_, err = storage.GetCategory(ctx, SeedCategoryDrinks)
	assert.NoError(t, err)

	require.NoError(t, storage.CreateCategory(ctx, &types.MenuCategory{ID: "empty", Name: "Empty", IsActive: true}))
	require.NoError(t, storage.DeleteCategory(ctx, "empty"))

	err = storage.DeleteCategory(ctx, "empty")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMenuItems_ListAndGetMany(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	drinks, err := storage.ListMenuItems(ctx, MenuItemFilter{CategoryID: SeedCategoryDrinks, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, drinks, 4)
	assert.Equal(t, "Bottled Water", drinks[0].Name)

	items, err := storage.GetMenuItems(ctx, []string{SeedItemCola, SeedItemFries, "gone"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 500, items[SeedItemFries].TaxRateBps)

	empty, err := storage.GetMenuItems(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteMenuItem_BlockedByOrderLines(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	order := newOrderAt(t, storage, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	cola, err := storage.GetMenuItem(ctx, SeedItemCola)
	require.NoError(t, err)
	order.AddLine(cola)
	order.Recalculate(map[string]int{cola.ID: cola.TaxRateBps})
	require.NoError(t, storage.SaveOrder(ctx, order))

	err = storage.DeleteMenuItem(ctx, SeedItemCola)
	assert.ErrorIs(t, err, ErrInUse)
	_, err = storage.GetMenuItem(ctx, SeedItemCola)
	assert.NoError(t, err)

	// Lemonade has no lines; its deletion succeeds.
	require.NoError(t, storage.DeleteMenuItem(ctx, SeedItemLemonade))
	_, err = storage.GetMenuItem(ctx, SeedItemLemonade)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMenuItem_CascadesAssignments(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	require.NoError(t, storage.DeleteMenuItem(ctx, SeedItemVeggieBurger))

	assigned, err := storage.IsAssignedToMenuItem(ctx, SeedCustomizationExtraCheese, SeedItemVeggieBurger)
	require.NoError(t, err)
	assert.False(t, assigned)
}

func TestDeleteCustomization_Blocked(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	err := storage.DeleteCustomization(ctx, SeedCustomizationExtraSauce)
	assert.ErrorIs(t, err, ErrInUse)

	require.NoError(t, storage.CreateCustomization(ctx, &types.CustomizationItem{ID: "free", Name: "No Onion", IsActive: true}))
	require.NoError(t, storage.DeleteCustomization(ctx, "free"))
}

func TestAssignments(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	category := SeedCategoryDrinks
	require.NoError(t, storage.CreateCustomization(ctx, &types.CustomizationItem{ID: "ice", Name: "No Ice", IsActive: true}))
	require.NoError(t, storage.CreateAssignment(ctx, &types.CustomizationAssignment{
		ID: "a1", CustomizationItemID: "ice", MenuCategoryID: &category,
	}))

	assignments, err := storage.ListAssignments(ctx, "ice")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Nil(t, assignments[0].MenuItemID)
	require.NotNil(t, assignments[0].MenuCategoryID)
	assert.Equal(t, SeedCategoryDrinks, *assignments[0].MenuCategoryID)

	// The table rejects an assignment without a target even if validation is bypassed.
	err = storage.CreateAssignment(ctx, &types.CustomizationAssignment{ID: "a2", CustomizationItemID: "ice"})
	assert.Error(t, err)

	require.NoError(t, storage.DeleteAssignment(ctx, "a1"))
	assert.ErrorIs(t, storage.DeleteAssignment(ctx, "a1"), ErrNotFound)
}

func TestListCustomizationsForMenuItem(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	all, err := storage.ListCustomizationsForMenuItem(ctx, SeedItemClassicBurger, true)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Extra Cheese", "Extra Sauce", "No Cheese"}, names)

	sauce, err := storage.GetCustomization(ctx, SeedCustomizationExtraSauce)
	require.NoError(t, err)
	sauce.IsActive = false
	require.NoError(t, storage.UpdateCustomization(ctx, sauce))

	active, err := storage.ListCustomizationsForMenuItem(ctx, SeedItemClassicBurger, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	none, err := storage.ListCustomizationsForMenuItem(ctx, SeedItemCola, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateOrder_NumbersPerWindow(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	a := newOrderAt(t, storage, day1)
	b := newOrderAt(t, storage, day1.Add(time.Hour))
	c := newOrderAt(t, storage, day2)

	assert.Equal(t, 1, a.OrderNumber)
	assert.Equal(t, 2, b.OrderNumber)
	assert.Equal(t, 1, c.OrderNumber)
	assert.Equal(t, int64(1), a.Version)

	// The global window sees every order.
	max, err := storage.MaxOrderNumber(ctx, numbering.GlobalWindow())
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	global := types.NewOrder(0, types.OrderTakeaway, SeedAdminUserID, day2)
	require.NoError(t, storage.CreateOrder(ctx, global, numbering.GlobalWindow()))
	assert.Equal(t, 3, global.OrderNumber)
}

func TestGetOrder_RoundTrip(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	order := newOrderAt(t, storage, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	burger, err := storage.GetMenuItem(ctx, SeedItemClassicBurger)
	require.NoError(t, err)
	sauce, err := storage.GetCustomization(ctx, SeedCustomizationExtraSauce)
	require.NoError(t, err)
	cheese, err := storage.GetCustomization(ctx, SeedCustomizationExtraCheese)
	require.NoError(t, err)

	line := order.AddLine(burger)
	line.AttachCustomization(sauce)
	line.AttachCustomization(cheese)
	order.SetCustomerName("Ana")
	order.Recalculate(map[string]int{burger.ID: burger.TaxRateBps})
	require.NoError(t, storage.SaveOrder(ctx, order))
	assert.Equal(t, int64(2), order.Version)

	loaded, err := storage.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, loaded.OrderNumber)
	assert.Equal(t, order.CreatedAt, loaded.CreatedAt)
	assert.Equal(t, order.TotalCents, loaded.TotalCents)
	assert.Equal(t, int64(2), loaded.Version)
	require.NotNil(t, loaded.CustomerName)
	assert.Equal(t, "Ana", *loaded.CustomerName)

	require.Len(t, loaded.Items, 1)
	got := loaded.Items[0]
	assert.Equal(t, "Extra Sauce, Extra Cheese", got.Notes)
	assert.Equal(t, int64(874), got.LineTotalCents)
	require.Len(t, got.Customizations, 2)
	assert.Equal(t, SeedCustomizationExtraSauce, got.Customizations[0].CustomizationItemID)
	assert.Equal(t, SeedCustomizationExtraCheese, got.Customizations[1].CustomizationItemID)
}

func TestGetOrder_NotFound(t *testing.T) {
	storage := setupTestDB(t)

	_, err := storage.GetOrder(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveOrder_StaleVersionConflicts(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	order := newOrderAt(t, storage, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	first, err := storage.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	second, err := storage.GetOrder(ctx, order.ID)
	require.NoError(t, err)

	first.SetCustomerName("first")
	require.NoError(t, storage.SaveOrder(ctx, first))

	second.SetCustomerName("second")
	err = storage.SaveOrder(ctx, second)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, int64(1), second.Version)

	stored, err := storage.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", *stored.CustomerName)
}

func TestSaveOrder_MissingRow(t *testing.T) {
	storage := setupTestDB(t)

	order := types.NewOrder(1, types.OrderDineIn, "u", time.Now())
	order.Version = 1
	err := storage.SaveOrder(context.Background(), order)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveOrder_PaymentsAppendOnly(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	order := newOrderAt(t, storage, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	fries, err := storage.GetMenuItem(ctx, SeedItemFries)
	require.NoError(t, err)
	order.AddLine(fries)
	order.Recalculate(map[string]int{fries.ID: fries.TaxRateBps})

	payment := types.NewPayment(order, types.PaymentCard, "ref-1", order.CreatedAt.Add(time.Minute))
	order.Payments = append(order.Payments, payment)
	order.Status = types.StatusPaid
	require.NoError(t, storage.SaveOrder(ctx, order))

	// Saving again must not duplicate the payment row.
	require.NoError(t, storage.SaveOrder(ctx, order))

	payments, err := storage.ListPayments(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(314), payments[0].AmountCents)
	assert.Equal(t, types.PaymentCard, payments[0].Method)
	require.NotNil(t, payments[0].Reference)
	assert.Equal(t, "ref-1", *payments[0].Reference)
}

func TestListOrders_StatusFilter(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	open1 := newOrderAt(t, storage, base)
	cancelled := newOrderAt(t, storage, base.Add(time.Minute))
	open2 := newOrderAt(t, storage, base.Add(2*time.Minute))

	cancelled.Status = types.StatusCancelled
	require.NoError(t, storage.SaveOrder(ctx, cancelled))

	open, err := storage.ListOrders(ctx, OrderFilter{Status: types.StatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, open2.ID, open[0].ID)
	assert.Equal(t, open1.ID, open[1].ID)

	limited, err := storage.ListOrders(ctx, OrderFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReportReads(t *testing.T) {
	storage := seededDB(t)
	ctx := context.Background()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	burger, err := storage.GetMenuItem(ctx, SeedItemClassicBurger)
	require.NoError(t, err)

	paid := newOrderAt(t, storage, day.Add(10*time.Hour))
	paid.AddLine(burger)
	paid.Recalculate(map[string]int{burger.ID: burger.TaxRateBps})
	paid.Payments = append(paid.Payments, types.NewPayment(paid, types.PaymentCash, "", day.Add(11*time.Hour)))
	paid.Status = types.StatusPaid
	require.NoError(t, storage.SaveOrder(ctx, paid))

	open := newOrderAt(t, storage, day.Add(12*time.Hour))
	open.AddLine(burger)
	open.Recalculate(map[string]int{burger.ID: burger.TaxRateBps})
	require.NoError(t, storage.SaveOrder(ctx, open))

	from, to := day, day.AddDate(0, 0, 1)

	orders, err := storage.ListPaidOrders(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, paid.ID, orders[0].ID)

	rows, err := storage.ListPaymentRows(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, paid.OrderNumber, rows[0].OrderNumber)
	assert.Equal(t, int64(839), rows[0].Payment.AmountCents)

	lines, err := storage.ListSoldLines(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, SoldLine{ItemName: "Classic Burger", CategoryName: "Burgers", Qty: 1, LineTotalCents: 799}, lines[0])

	next, err := storage.ListPaidOrders(ctx, to, to.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestUsers(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, storage.CreateUser(ctx, &types.User{
		ID: "u1", DisplayName: "Zoe", PinHash: "h1", Role: types.RoleCashier, IsActive: true, CreatedAt: now,
	}))
	require.NoError(t, storage.CreateUser(ctx, &types.User{
		ID: "u2", DisplayName: "Amy", PinHash: "h2", Role: types.RoleManager, IsActive: false, CreatedAt: now,
	}))

	all, err := storage.ListUsers(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Amy", all[0].DisplayName)

	active, err := storage.ListUsers(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "u1", active[0].ID)
	assert.Equal(t, now, active[0].CreatedAt)

	err = storage.CreateUser(ctx, &types.User{ID: "u1", DisplayName: "Dup", PinHash: "x", Role: types.RoleCashier, CreatedAt: now})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = storage.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
