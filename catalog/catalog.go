/*
Package catalog manages the product catalog the counter sells from.

PURPOSE:
  CRUD over products plus synchronous change notification for consumers
  (the cart UI's product grid, badge counters). The catalog is a
  collaborator of the ledger core, not part of it: checkout never
  validates stock against the catalog, and editing a price here never
  changes a recorded sale.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tiendita/pos-engine/ledger"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidProduct is returned when a product fails validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// =============================================================================
// PRODUCT
// =============================================================================

// Product is a catalog entry. Price is integer cents like everything else.
type Product struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    ledger.Cents `json:"unitPriceCents"`
	Unit     string       `json:"unit"`
	Category string       `json:"category"`
	Stock    int          `json:"stock"`
}

// CartItem returns the product as a cart line snapshot with the given
// quantity. This is the hand-off point between catalog and ledger.
func (p Product) CartItem(quantity int) ledger.CartItem {
	return ledger.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		Unit:      p.Unit,
	}
}

// ProductStore persists catalog entries.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	SaveProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// =============================================================================
// SERVICE
// =============================================================================

// Service validates catalog mutations and notifies subscribers.
type Service struct {
	store ProductStore

	mu   sync.Mutex
	subs []func()
}

func NewService(store ProductStore) *Service {
	return &Service{store: store}
}

// Subscribe registers a callback invoked synchronously after each mutation.
func (s *Service) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Products lists the catalog.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.store.ListProducts(ctx)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.GetProduct(ctx, id)
}

// Create validates and stores a new product, assigning an id when absent.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if err := validate(p); err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := s.store.SaveProduct(ctx, p); err != nil {
		return Product{}, err
	}
	s.notify()
	return p, nil
}

// Update validates and replaces an existing product.
func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if err := validate(p); err != nil {
		return Product{}, err
	}

	existing, err := s.store.GetProduct(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	if existing == nil {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, p.ID)
	}

	if err := s.store.SaveProduct(ctx, p); err != nil {
		return Product{}, err
	}
	s.notify()
	return p, nil
}

// Delete removes a product. Recorded sales keep their item snapshots, so
// deleting a product never rewrites history.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.notify()
	return nil
}

func validate(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}

func (s *Service) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
