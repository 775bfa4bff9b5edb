package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

// Service exposes the menu to the register and to catalog administration.
type Service struct {
	storage storage.Storage
	log     logrus.FieldLogger
}

// NewService creates a catalog service
func NewService(store storage.Storage, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{storage: store, log: log.WithField("component", "catalog")}
}

// Register reads

// ListActiveCategories returns active categories by sort order, then name.
func (s *Service) ListActiveCategories(ctx context.Context) ([]*types.MenuCategory, error) {
	return s.storage.ListCategories(ctx, true)
}

// ListActiveMenuItems returns active items, optionally limited to one category.
func (s *Service) ListActiveMenuItems(ctx context.Context, categoryID string) ([]*types.MenuItem, error) {
	return s.storage.ListMenuItems(ctx, storage.MenuItemFilter{CategoryID: categoryID, ActiveOnly: true})
}

func (s *Service) ListActiveCustomizations(ctx context.Context) ([]*types.CustomizationItem, error) {
	return s.storage.ListCustomizations(ctx, true)
}

// ListCustomizationsEligibleFor returns the active customizations assigned
// directly to the menu item.
func (s *Service) ListCustomizationsEligibleFor(ctx context.Context, menuItemID string) ([]*types.CustomizationItem, error) {
	return s.storage.ListCustomizationsForMenuItem(ctx, menuItemID, true)
}

// Eligible returns the customization if it may be attached to a line of the
// menu item: it must exist, be active, and be assigned to the item by id.
// Category assignments do not grant eligibility. A nil result with a nil
// error means "not eligible".
func (s *Service) Eligible(ctx context.Context, customizationID, menuItemID string) (*types.CustomizationItem, error) {
	c, err := s.storage.GetCustomization(ctx, customizationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, nil
	}
	assigned, err := s.storage.IsAssignedToMenuItem(ctx, customizationID, menuItemID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, nil
	}
	return c, nil
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (*types.MenuItem, error) {
	return s.storage.GetMenuItem(ctx, id)
}

// TaxRates maps each requested menu item id to its current tax rate. Ids
// that no longer resolve are absent.
func (s *Service) TaxRates(ctx context.Context, menuItemIDs []string) (map[string]int, error) {
	items, err := s.storage.GetMenuItems(ctx, menuItemIDs)
	if err != nil {
		return nil, err
	}
	rates := make(map[string]int, len(items))
	for id, item := range items {
		rates[id] = item.TaxRateBps
	}
	return rates, nil
}

// Administration

func (s *Service) ListAllCategories(ctx context.Context) ([]*types.MenuCategory, error) {
	return s.storage.ListCategories(ctx, false)
}

func (s *Service) ListAllMenuItems(ctx context.Context, categoryID string) ([]*types.MenuItem, error) {
	return s.storage.ListMenuItems(ctx, storage.MenuItemFilter{CategoryID: categoryID})
}

func (s *Service) ListAllCustomizations(ctx context.Context) ([]*types.CustomizationItem, error) {
	return s.storage.ListCustomizations(ctx, false)
}

// AddCategory creates an active category.
func (s *Service) AddCategory(ctx context.Context, name string, sortOrder int) (*types.MenuCategory, error) {
	c := &types.MenuCategory{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		SortOrder: sortOrder,
		IsActive:  true,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.log.WithField("category_id", c.ID).Info("category added")
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, c *types.MenuCategory) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateCategory(ctx, c)
}

func (s *Service) SetCategoryActive(ctx context.Context, id string, active bool) error {
	c, err := s.storage.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	c.IsActive = active
	return s.storage.UpdateCategory(ctx, c)
}

// DeleteCategory reports false, with no error, when menu items still use the category.
func (s *Service) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return s.deleted("category", id, s.storage.DeleteCategory(ctx, id))
}

// MenuItemInput carries the editable fields of a menu item.
type MenuItemInput struct {
	CategoryID string
	Name       string
	PriceCents int64
	TaxRateBps int
	IsActive   bool
}

// AddMenuItem creates a menu item in an existing category.
func (s *Service) AddMenuItem(ctx context.Context, in MenuItemInput) (*types.MenuItem, error) {
	item := &types.MenuItem{ID: uuid.NewString()}
	applyMenuItemInput(item, in)
	if err := s.validateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.storage.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"menu_item_id": item.ID, "price_cents": item.PriceCents}).Info("menu item added")
	return item, nil
}

// UpdateMenuItem edits a menu item. Existing order lines keep their snapshots.
func (s *Service) UpdateMenuItem(ctx context.Context, id string, in MenuItemInput) (*types.MenuItem, error) {
	item, err := s.storage.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMenuItemInput(item, in)
	if err := s.validateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.storage.UpdateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) SetMenuItemActive(ctx context.Context, id string, active bool) error {
	item, err := s.storage.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}
	item.IsActive = active
	return s.storage.UpdateMenuItem(ctx, item)
}

// DeleteMenuItem reports false, with no error, when order lines reference the item.
func (s *Service) DeleteMenuItem(ctx context.Context, id string) (bool, error) {
	return s.deleted("menu item", id, s.storage.DeleteMenuItem(ctx, id))
}

func applyMenuItemInput(item *types.MenuItem, in MenuItemInput) {
	item.CategoryID = in.CategoryID
	item.Name = strings.TrimSpace(in.Name)
	item.PriceCents = in.PriceCents
	item.TaxRateBps = in.TaxRateBps
	item.IsActive = in.IsActive
}

func (s *Service) validateMenuItem(ctx context.Context, item *types.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if _, err := s.storage.GetCategory(ctx, item.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: category %s does not exist", types.ErrValidation, item.CategoryID)
		}
		return err
	}
	return nil
}

// AddCustomization creates an active customization with the given price delta.
func (s *Service) AddCustomization(ctx context.Context, name string, priceCents int64) (*types.CustomizationItem, error) {
	c := &types.CustomizationItem{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		PriceCents: priceCents,
		IsActive:   true,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.CreateCustomization(ctx, c); err != nil {
		return nil, err
	}
	s.log.WithField("customization_id", c.ID).Info("customization added")
	return c, nil
}

func (s *Service) UpdateCustomization(ctx context.Context, c *types.CustomizationItem) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateCustomization(ctx, c)
}

func (s *Service) SetCustomizationActive(ctx context.Context, id string, active bool) error {
	c, err := s.storage.GetCustomization(ctx, id)
	if err != nil {
		return err
	}
	c.IsActive = active
	return s.storage.UpdateCustomization(ctx, c)
}

// DeleteCustomization reports false, with no error, while the customization
// is assigned anywhere or attached to an order line.
func (s *Service) DeleteCustomization(ctx context.Context, id string) (bool, error) {
	return s.deleted("customization", id, s.storage.DeleteCustomization(ctx, id))
}

// Assign links a customization to a menu item, a category, or both. Blank
// targets are treated as unset; an assignment with no target is rejected
// with types.ErrInvalidAssignment.
func (s *Service) Assign(ctx context.Context, customizationID, menuItemID, categoryID string) (*types.CustomizationAssignment, error) {
	a := &types.CustomizationAssignment{
		ID:                  uuid.NewString(),
		CustomizationItemID: customizationID,
		MenuItemID:          optional(menuItemID),
		MenuCategoryID:      optional(categoryID),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetCustomization(ctx, customizationID); err != nil {
		return nil, s.missingTarget("customization", customizationID, err)
	}
	if a.MenuItemID != nil {
		if _, err := s.storage.GetMenuItem(ctx, *a.MenuItemID); err != nil {
			return nil, s.missingTarget("menu item", *a.MenuItemID, err)
		}
	}
	if a.MenuCategoryID != nil {
		if _, err := s.storage.GetCategory(ctx, *a.MenuCategoryID); err != nil {
			return nil, s.missingTarget("category", *a.MenuCategoryID, err)
		}
	}
	if err := s.storage.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Unassign(ctx context.Context, assignmentID string) error {
	return s.storage.DeleteAssignment(ctx, assignmentID)
}

func (s *Service) ListAssignments(ctx context.Context, customizationID string) ([]*types.CustomizationAssignment, error) {
	return s.storage.ListAssignments(ctx, customizationID)
}

func (s *Service) missingTarget(kind, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", types.ErrValidation, kind, id)
	}
	return err
}

// deleted turns storage.ErrInUse into a plain false.
func (s *Service) deleted(kind, id string, err error) (bool, error) {
	if errors.Is(err, storage.ErrInUse) {
		s.log.WithField("id", id).Debugf("%s still referenced, not deleted", kind)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.WithField("id", id).Infof("%s deleted", kind)
	return true, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
