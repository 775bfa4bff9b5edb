package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/posengine/internal/numbering"
	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

func setupTestSettings(t *testing.T) (*Service, *storage.SQLiteStorage, *test.Hook) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger, hook := test.NewNullLogger()
	return NewService(store, logger, time.UTC), store, hook
}

func TestDefaults(t *testing.T) {
	svc, _, _ := setupTestSettings(t)
	ctx := context.Background()

	name, err := svc.RestaurantName(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultRestaurantName, name)

	p, err := svc.Policy(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbering.ModeDaily, p.Mode)
	assert.Equal(t, 0, p.DailyStartHour)
	assert.Equal(t, numbering.DefaultDayparts(), p.Dayparts)
	assert.Equal(t, time.UTC, p.Location)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults, all)
}

func TestRestaurantName(t *testing.T) {
	svc, store, _ := setupTestSettings(t)
	ctx := context.Background()

	require.NoError(t, svc.SetRestaurantName(ctx, "  Corner Diner "))
	name, err := svc.RestaurantName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Diner", name)

	err = svc.SetRestaurantName(ctx, "   ")
	assert.ErrorIs(t, err, types.ErrValidation)

	// A blank stored value still reads as the default.
	require.NoError(t, store.SetSetting(ctx, storage.SettingRestaurantName, ""))
	name, err = svc.RestaurantName(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultRestaurantName, name)
}

func TestSet(t *testing.T) {
	svc, _, _ := setupTestSettings(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"mode", storage.SettingOrderNumberResetMode, "daypart", nil},
		{"bad mode", storage.SettingOrderNumberResetMode, "weekly", numbering.ErrInvalidMode},
		{"daily hour", storage.SettingDailyStartHour, "2", nil},
		{"hour out of range", storage.SettingBusinessDayStartHour, "24", numbering.ErrInvalidHour},
		{"hour not a number", storage.SettingBusinessDayStartHour, "six", numbering.ErrInvalidHour},
		{"lunch", storage.SettingDaypartLunchStartHour, "12", nil},
		{"lunch after dinner", storage.SettingDaypartLunchStartHour, "17", numbering.ErrInvalidDayparts},
		{"unknown", "Theme", "dark", ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Set(ctx, tt.key, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	p, err := svc.Policy(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbering.ModeDaypart, p.Mode)
	assert.Equal(t, 2, p.DailyStartHour)
	assert.Equal(t, numbering.Dayparts{Breakfast: 6, Lunch: 12, Dinner: 16}, p.Dayparts)
}

func TestPolicy_FallsBackOnCorruptValues(t *testing.T) {
	svc, store, hook := setupTestSettings(t)
	ctx := context.Background()

	require.NoError(t, store.SetSetting(ctx, storage.SettingOrderNumberResetMode, "Hourly"))
	require.NoError(t, store.SetSetting(ctx, storage.SettingBusinessDayStartHour, "x"))
	require.NoError(t, store.SetSetting(ctx, storage.SettingDaypartBreakfastStartHour, "20"))

	p, err := svc.Policy(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbering.ModeDaily, p.Mode)
	assert.Equal(t, 0, p.BusinessDayStartHour)
	assert.Equal(t, numbering.DefaultDayparts(), p.Dayparts)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestSetDayparts(t *testing.T) {
	svc, _, _ := setupTestSettings(t)
	ctx := context.Background()

	require.NoError(t, svc.SetDayparts(ctx, numbering.Dayparts{Breakfast: 5, Lunch: 10, Dinner: 17}))
	d, err := svc.Dayparts(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbering.Dayparts{Breakfast: 5, Lunch: 10, Dinner: 17}, d)

	err = svc.SetDayparts(ctx, numbering.Dayparts{Breakfast: 10, Lunch: 10, Dinner: 17})
	assert.ErrorIs(t, err, numbering.ErrInvalidDayparts)
}

// batchOnlyStore refuses single-key writes so a multi-key update has to go
// through one SetSettings call.
type batchOnlyStore struct {
	storage.Storage
	batches []map[string]string
}

func (b *batchOnlyStore) SetSetting(context.Context, string, string) error {
	return errors.New("single-key write")
}

func (b *batchOnlyStore) SetSettings(ctx context.Context, values map[string]string) error {
	b.batches = append(b.batches, values)
	return b.Storage.SetSettings(ctx, values)
}

func TestSetDayparts_SingleWrite(t *testing.T) {
	_, store, _ := setupTestSettings(t)
	batch := &batchOnlyStore{Storage: store}
	logger, _ := test.NewNullLogger()
	svc := NewService(batch, logger, time.UTC)
	ctx := context.Background()

	require.NoError(t, svc.SetDayparts(ctx, numbering.Dayparts{Breakfast: 4, Lunch: 12, Dinner: 19}))
	require.Len(t, batch.batches, 1)
	assert.Equal(t, map[string]string{
		storage.SettingDaypartBreakfastStartHour: "4",
		storage.SettingDaypartLunchStartHour:     "12",
		storage.SettingDaypartDinnerStartHour:    "19",
	}, batch.batches[0])

	d, err := svc.Dayparts(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbering.Dayparts{Breakfast: 4, Lunch: 12, Dinner: 19}, d)

	assert.Error(t, svc.SetDayparts(ctx, numbering.Dayparts{Breakfast: 12, Lunch: 4, Dinner: 19}))
	assert.Len(t, batch.batches, 1, "invalid dayparts never reach storage")
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, len(Defaults))
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, storage.SettingOrderNumberResetMode)
}
