// Package settings gives typed access to the key/value business settings:
// the restaurant name and the order numbering configuration.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/posengine/internal/numbering"
	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

// DefaultRestaurantName is shown until a name is configured.
const DefaultRestaurantName = "Restaurant POS"

// ErrUnknownKey is returned by Set for keys this package does not manage.
var ErrUnknownKey = errors.New("unknown setting")

// Defaults holds the value used when a key is missing or unreadable.
var Defaults = map[string]string{
	storage.SettingRestaurantName:            DefaultRestaurantName,
	storage.SettingOrderNumberResetMode:      string(numbering.ModeDaily),
	storage.SettingDailyStartHour:            "0",
	storage.SettingBusinessDayStartHour:      "0",
	storage.SettingDaypartBreakfastStartHour: "6",
	storage.SettingDaypartLunchStartHour:     "11",
	storage.SettingDaypartDinnerStartHour:    "16",
}

// Service reads and writes settings. Writes are last-write-wins per key.
type Service struct {
	storage  storage.Storage
	log      logrus.FieldLogger
	location *time.Location
}

// NewService creates a settings service. loc is the store's wall clock used
// for numbering boundaries; nil means time.Local.
func NewService(store storage.Storage, log logrus.FieldLogger, loc *time.Location) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{storage: store, log: log.WithField("component", "settings"), location: loc}
}

// Location is the wall clock numbering boundaries are computed in.
func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) raw(ctx context.Context, key string) (string, error) {
	value, err := s.storage.GetSetting(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return Defaults[key], nil
	}
	return value, err
}

// RestaurantName returns the configured name, or the default when blank.
func (s *Service) RestaurantName(ctx context.Context) (string, error) {
	name, err := s.raw(ctx, storage.SettingRestaurantName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return DefaultRestaurantName, nil
	}
	return name, nil
}

// SetRestaurantName stores the trimmed name. A blank name is rejected.
func (s *Service) SetRestaurantName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: restaurant name is required", types.ErrValidation)
	}
	return s.storage.SetSetting(ctx, storage.SettingRestaurantName, name)
}

func (s *Service) SetNumberingMode(ctx context.Context, mode numbering.Mode) error {
	parsed, err := numbering.ParseMode(string(mode))
	if err != nil {
		return err
	}
	return s.storage.SetSetting(ctx, storage.SettingOrderNumberResetMode, string(parsed))
}

func (s *Service) SetDailyStartHour(ctx context.Context, hour int) error {
	return s.setHour(ctx, storage.SettingDailyStartHour, hour)
}

func (s *Service) SetBusinessDayStartHour(ctx context.Context, hour int) error {
	return s.setHour(ctx, storage.SettingBusinessDayStartHour, hour)
}

// SetDayparts stores all three daypart boundaries in one write; they must be
// strictly increasing.
func (s *Service) SetDayparts(ctx context.Context, d numbering.Dayparts) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.storage.SetSettings(ctx, map[string]string{
		storage.SettingDaypartBreakfastStartHour: strconv.Itoa(d.Breakfast),
		storage.SettingDaypartLunchStartHour:     strconv.Itoa(d.Lunch),
		storage.SettingDaypartDinnerStartHour:    strconv.Itoa(d.Dinner),
	})
}

func (s *Service) setHour(ctx context.Context, key string, hour int) error {
	if err := numbering.ValidateHour(hour); err != nil {
		return err
	}
	return s.storage.SetSetting(ctx, key, strconv.Itoa(hour))
}

// Set validates and stores a setting given as text, the way an admin screen
// or tool call supplies it.
func (s *Service) Set(ctx context.Context, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case storage.SettingRestaurantName:
		return s.SetRestaurantName(ctx, value)
	case storage.SettingOrderNumberResetMode:
		return s.SetNumberingMode(ctx, numbering.Mode(value))
	case storage.SettingDailyStartHour, storage.SettingBusinessDayStartHour:
		hour, err := parseHour(value)
		if err != nil {
			return err
		}
		return s.setHour(ctx, key, hour)
	case storage.SettingDaypartBreakfastStartHour, storage.SettingDaypartLunchStartHour, storage.SettingDaypartDinnerStartHour:
		hour, err := parseHour(value)
		if err != nil {
			return err
		}
		d, err := s.Dayparts(ctx)
		if err != nil {
			return err
		}
		switch key {
		case storage.SettingDaypartBreakfastStartHour:
			d.Breakfast = hour
		case storage.SettingDaypartLunchStartHour:
			d.Lunch = hour
		default:
			d.Dinner = hour
		}
		return s.SetDayparts(ctx, d)
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

func parseHour(value string) (int, error) {
	hour, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", numbering.ErrInvalidHour, value)
	}
	return hour, numbering.ValidateHour(hour)
}

// Keys returns the managed setting keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(Defaults))
	for k := range Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns every managed setting, with defaults filled in for missing keys.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	stored, err := s.storage.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	all := make(map[string]string, len(Defaults))
	for key, def := range Defaults {
		if v, ok := stored[key]; ok {
			all[key] = v
		} else {
			all[key] = def
		}
	}
	return all, nil
}

// hour reads an hour setting. Unreadable values fall back to the default.
func (s *Service) hour(ctx context.Context, key string) (int, error) {
	value, err := s.raw(ctx, key)
	if err != nil {
		return 0, err
	}
	hour, err := parseHour(strings.TrimSpace(value))
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "value": value}).Warn("invalid stored hour, using default")
		hour, _ = strconv.Atoi(Defaults[key])
	}
	return hour, nil
}

// Dayparts returns the stored daypart boundaries, or the defaults when the
// stored triple is not strictly increasing.
func (s *Service) Dayparts(ctx context.Context) (numbering.Dayparts, error) {
	var d numbering.Dayparts
	var err error
	if d.Breakfast, err = s.hour(ctx, storage.SettingDaypartBreakfastStartHour); err != nil {
		return d, err
	}
	if d.Lunch, err = s.hour(ctx, storage.SettingDaypartLunchStartHour); err != nil {
		return d, err
	}
	if d.Dinner, err = s.hour(ctx, storage.SettingDaypartDinnerStartHour); err != nil {
		return d, err
	}
	if err := d.Validate(); err != nil {
		s.log.WithError(err).Warn("invalid stored dayparts, using defaults")
		return numbering.DefaultDayparts(), nil
	}
	return d, nil
}

// NumberingMode returns the stored mode, or Daily when it is unreadable.
func (s *Service) NumberingMode(ctx context.Context) (numbering.Mode, error) {
	value, err := s.raw(ctx, storage.SettingOrderNumberResetMode)
	if err != nil {
		return "", err
	}
	mode, err := numbering.ParseMode(value)
	if err != nil {
		s.log.WithField("value", value).Warn("invalid stored numbering mode, using Daily")
		return numbering.ModeDaily, nil
	}
	return mode, nil
}

// Policy assembles the numbering policy from the current settings. It is
// read fresh on every call so that changes apply to the next order.
func (s *Service) Policy(ctx context.Context) (numbering.Policy, error) {
	p := numbering.Policy{Location: s.location}
	var err error
	if p.Mode, err = s.NumberingMode(ctx); err != nil {
		return p, err
	}
	if p.DailyStartHour, err = s.hour(ctx, storage.SettingDailyStartHour); err != nil {
		return p, err
	}
	if p.BusinessDayStartHour, err = s.hour(ctx, storage.SettingBusinessDayStartHour); err != nil {
		return p, err
	}
	if p.Dayparts, err = s.Dayparts(ctx); err != nil {
		return p, err
	}
	return p, nil
}
