/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.SaleStore and catalog.ProductStore on a single SQLite
  database. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

APPEND-MOSTLY ENFORCEMENT:
  The sales tables honor the ledger contract:
  - INSERT only into sales and sale_items
  - The single UPDATE statement touches is_pending and nothing else
  - No DELETE on sales, ever

KEY TABLES:
  sales:      One row per recorded sale; rowid preserves insertion order
  sale_items: Line snapshots of each sale, ordered by position
  products:   Catalog entries (full CRUD)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL for
  better read concurrency and crash recovery.

USAGE:
  st, err := sqlite.New("./data/pos.db")   // ":memory:" for tests
  if err != nil { ... }
  defer st.Close()
  led := ledger.NewLedger(st)

SEE ALSO:
  - ledger/store.go: SaleStore contract
  - ledger/store/memory.go: in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tiendita/pos-engine/catalog"
	"github.com/tiendita/pos-engine/ledger"
)

// Store implements ledger.SaleStore and catalog.ProductStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Sales (append-mostly; only is_pending ever changes)
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		total_cents INTEGER NOT NULL,
		payment_method TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		is_pending INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_pending
		ON sales(is_pending);
	CREATE INDEX IF NOT EXISTS idx_sales_customer
		ON sales(customer_name) WHERE customer_name != '';

	-- Sale line snapshots, ordered by position within a sale
	CREATE TABLE IF NOT EXISTS sale_items (
		sale_id TEXT NOT NULL REFERENCES sales(id),
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		unit_price_cents INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (sale_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_sale_items_sale
		ON sale_items(sale_id);

	-- Products (catalog; full CRUD)
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price_cents INTEGER NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		stock INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_category
		ON products(category);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SALE STORE (ledger.SaleStore interface)
// =============================================================================

// Append inserts a sale and its line snapshots atomically.
func (s *Store) Append(ctx context.Context, sale ledger.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ledger.TransportError{Op: "append", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, date, total_cents, payment_method, customer_name, is_pending, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sale.ID,
		sale.Date.UTC().Format(time.RFC3339Nano),
		int64(sale.Total),
		sale.PaymentMethod,
		sale.CustomerName,
		boolToInt(sale.IsPending),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &ledger.TransportError{Op: "append", Err: err}
	}

	for i, it := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, position, product_id, name, unit_price_cents, quantity, unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sale.ID, i, it.ProductID, it.Name, int64(it.UnitPrice), it.Quantity, it.Unit,
		)
		if err != nil {
			return &ledger.TransportError{Op: "append", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ledger.TransportError{Op: "append", Err: err}
	}
	return nil
}

// Load returns the full sale sequence in insertion order, oldest first.
func (s *Store) Load(ctx context.Context) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, total_cents, payment_method, customer_name, is_pending
		FROM sales
		ORDER BY rowid ASC`)
	if err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: err}
	}
	defer rows.Close()

	var sales []ledger.Sale
	index := make(map[ledger.SaleID]int)
	for rows.Next() {
		var (
			sale    ledger.Sale
			date    string
			total   int64
			pending int
		)
		if err := rows.Scan(&sale.ID, &date, &total, &sale.PaymentMethod, &sale.CustomerName, &pending); err != nil {
			return nil, &ledger.TransportError{Op: "load", Err: err}
		}
		sale.Date, err = time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, &ledger.TransportError{Op: "load", Err: fmt.Errorf("bad sale date %q: %w", date, err)}
		}
		sale.Total = ledger.Cents(total)
		sale.IsPending = pending != 0
		index[sale.ID] = len(sales)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: err}
	}

	if err := s.loadItems(ctx, sales, index); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) loadItems(ctx context.Context, sales []ledger.Sale, index map[ledger.SaleID]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, product_id, name, unit_price_cents, quantity, unit
		FROM sale_items
		ORDER BY sale_id, position ASC`)
	if err != nil {
		return &ledger.TransportError{Op: "load", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			saleID ledger.SaleID
			item   ledger.CartItem
			price  int64
		)
		if err := rows.Scan(&saleID, &item.ProductID, &item.Name, &price, &item.Quantity, &item.Unit); err != nil {
			return &ledger.TransportError{Op: "load", Err: err}
		}
		item.UnitPrice = ledger.Cents(price)
		if i, ok := index[saleID]; ok {
			sales[i].Items = append(sales[i].Items, item)
		}
	}
	return rows.Err()
}

// Patch flips is_pending on one sale and touches nothing else.
func (s *Store) Patch(ctx context.Context, id ledger.SaleID, pending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE sales SET is_pending = ? WHERE id = ?`,
		boolToInt(pending), id,
	)
	if err != nil {
		return &ledger.TransportError{Op: "patch", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &ledger.TransportError{Op: "patch", Err: err}
	}
	if n == 0 {
		return &ledger.NotFoundError{SaleID: id}
	}
	return nil
}

// =============================================================================
// PRODUCT STORE (catalog.ProductStore interface)
// =============================================================================

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price_cents, unit, category, stock
		FROM products
		ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var (
			p     catalog.Product
			price int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Unit, &p.Category, &p.Stock); err != nil {
			return nil, err
		}
		p.Price = ledger.Cents(price)
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p     catalog.Product
		price int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, price_cents, unit, category, stock
		FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &price, &p.Unit, &p.Category, &p.Stock)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Price = ledger.Cents(price)
	return &p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price_cents, unit, category, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price_cents = excluded.price_cents,
			unit = excluded.unit,
			category = excluded.category,
			stock = excluded.stock,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, int64(p.Price), p.Unit, p.Category, p.Stock, now, now,
	)
	return err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
