/*
Package redisblob persists the ledger as a single JSON blob in Redis.

PURPOSE:
  Faithful port of the reference's key-value blob persistence: the whole
  sale sequence lives under one fixed key, rewritten on every mutation.
  Products get a second blob. This is deliberately last-write-wins and
  single-client; for multi-client deployments use the sqlite or rest
  backends instead.

KEYS:
  <prefix>:sales     JSON array of ledger.Sale
  <prefix>:products  JSON array of catalog.Product
*/
package redisblob

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tiendita/pos-engine/catalog"
	"github.com/tiendita/pos-engine/ledger"
)

// Store implements ledger.SaleStore and catalog.ProductStore on Redis.
type Store struct {
	client *redis.Client
	prefix string
	log    *zap.Logger

	mu sync.Mutex // serializes read-modify-write of the blobs
}

// New connects to Redis using a URL (redis://host:port/db) and verifies the
// connection with a ping.
func New(ctx context.Context, url, prefix string, log *zap.Logger) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, &ledger.TransportError{Op: "connect", Err: err}
	}
	if prefix == "" {
		prefix = "pos"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, prefix: prefix, log: log}, nil
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) salesKey() string    { return s.prefix + ":sales" }
func (s *Store) productsKey() string { return s.prefix + ":products" }

// =============================================================================
// SALE STORE (ledger.SaleStore interface)
// =============================================================================

func (s *Store) Load(ctx context.Context) ([]ledger.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSales(ctx)
}

func (s *Store) Append(ctx context.Context, sale ledger.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.loadSales(ctx)
	if err != nil {
		return err
	}
	sales = append(sales, sale)
	return s.storeSales(ctx, sales)
}

func (s *Store) Patch(ctx context.Context, id ledger.SaleID, pending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.loadSales(ctx)
	if err != nil {
		return err
	}
	for i := range sales {
		if sales[i].ID == id {
			sales[i].IsPending = pending
			return s.storeSales(ctx, sales)
		}
	}
	return &ledger.NotFoundError{SaleID: id}
}

func (s *Store) loadSales(ctx context.Context) ([]ledger.Sale, error) {
	data, err := s.client.Get(ctx, s.salesKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: err}
	}

	var sales []ledger.Sale
	if err := json.Unmarshal(data, &sales); err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: fmt.Errorf("corrupt sales blob: %w", err)}
	}
	return sales, nil
}

func (s *Store) storeSales(ctx context.Context, sales []ledger.Sale) error {
	data, err := json.Marshal(sales)
	if err != nil {
		return &ledger.TransportError{Op: "append", Err: err}
	}
	if err := s.client.Set(ctx, s.salesKey(), data, 0).Err(); err != nil {
		return &ledger.TransportError{Op: "append", Err: err}
	}
	s.log.Debug("sales blob written", zap.Int("sales", len(sales)), zap.Int("bytes", len(data)))
	return nil
}

// =============================================================================
// PRODUCT STORE (catalog.ProductStore interface)
// =============================================================================

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProducts(ctx)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) SaveProduct(ctx context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadProducts(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, p)
	}
	return s.storeProducts(ctx, products)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadProducts(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == id {
			products = append(products[:i], products[i+1:]...)
			return s.storeProducts(ctx, products)
		}
	}
	return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
}

func (s *Store) loadProducts(ctx context.Context) ([]catalog.Product, error) {
	data, err := s.client.Get(ctx, s.productsKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: err}
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: fmt.Errorf("corrupt products blob: %w", err)}
	}
	return products, nil
}

func (s *Store) storeProducts(ctx context.Context, products []catalog.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return &ledger.TransportError{Op: "save", Err: err}
	}
	if err := s.client.Set(ctx, s.productsKey(), data, 0).Err(); err != nil {
		return &ledger.TransportError{Op: "save", Err: err}
	}
	return nil
}
