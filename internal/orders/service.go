package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/posengine/internal/catalog"
	"github.com/dshills/posengine/internal/numbering"
	"github.com/dshills/posengine/internal/settings"
	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

// Service runs the order lifecycle. Every mutating call loads the order,
// applies the change, recomputes totals and saves with one conflict retry.
type Service struct {
	storage  storage.Storage
	catalog  *catalog.Service
	settings *settings.Service
	log      logrus.FieldLogger
	now      func() time.Time
	epochs   numbering.EpochLocks
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests around epoch boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an order service
func NewService(store storage.Storage, cat *catalog.Service, set *settings.Service, log logrus.FieldLogger, opts ...Option) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		storage:  store,
		catalog:  cat,
		settings: set,
		log:      log.WithField("component", "orders"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutation edits a loaded open order in place. It returns false when the
// call turned out to be a no-op, in which case nothing is written.
type mutation func(ctx context.Context, order *types.Order) (changed bool, err error)

// mutate is the single write path for existing orders.
func (s *Service) mutate(ctx context.Context, orderID, op string, fn mutation) (*types.Order, error) {
	log := s.log.WithFields(logrus.Fields{"order_id": orderID, "op": op})

	order, err := retryOnConflict(ctx, log, func(attempt int) (*types.Order, error) {
		order, err := s.load(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !order.IsOpen() {
			return nil, fmt.Errorf("%w: order %d is %s", types.ErrOrderClosed, order.OrderNumber, order.Status)
		}

		changed, err := fn(ctx, order)
		if err != nil {
			return nil, err
		}
		if !changed {
			log.Debug("no change, nothing saved")
			return order, nil
		}

		order.UpdatedAt = s.now().UTC()
		if err := s.storage.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		return order, nil
	})
	if errors.Is(err, storage.ErrConflict) {
		log.WithError(err).Error("order save failed after retry")
		return nil, fmt.Errorf("failed to save order %s: %w", orderID, err)
	}
	return order, err
}

func (s *Service) load(ctx context.Context, orderID string) (*types.Order, error) {
	order, err := s.storage.GetOrder(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return order, nil
}

// recalculate rebuilds the totals against the current tax rates of the
// lines' menu items.
func (s *Service) recalculate(ctx context.Context, order *types.Order) error {
	rates, err := s.catalog.TaxRates(ctx, order.MenuItemIDs())
	if err != nil {
		return fmt.Errorf("failed to load tax rates: %w", err)
	}
	order.Recalculate(rates)
	return nil
}

// CreateOrder opens an empty order numbered within the current epoch.
func (s *Service) CreateOrder(ctx context.Context, userID string, orderType types.OrderType) (*types.Order, error) {
	orderType, err := types.ParseOrderType(string(orderType))
	if err != nil {
		return nil, err
	}
	user, err := s.storage.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s does not exist", types.ErrValidation, userID)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %s is inactive", types.ErrValidation, userID)
	}

	policy, err := s.settings.Policy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read numbering policy: %w", err)
	}
	now := s.now()
	window, err := policy.Window(now)
	if err != nil {
		return nil, err
	}

	unlock := s.epochs.Lock(window.Key())
	defer unlock()

	order := types.NewOrder(0, orderType, user.ID, now)
	if err := s.storage.CreateOrder(ctx, order, window); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"mode":         policy.Mode,
	}).Info("order created")
	return order, nil
}

// GetOrder returns the full order or types.ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*types.Order, error) {
	return s.load(ctx, orderID)
}

// ListOpenOrders returns open order headers, newest first.
func (s *Service) ListOpenOrders(ctx context.Context) ([]*types.Order, error) {
	return s.storage.ListOrders(ctx, storage.OrderFilter{Status: types.StatusOpen})
}
