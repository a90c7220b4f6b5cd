/*
Package rest backs the ledger with a remote CRUD endpoint.

PURPOSE:
  Faithful port of the reference's mock-REST persistence (json-server
  style). Sales and products are plain JSON collections:

    GET    /sales              full sale sequence, oldest first
    POST   /sales              append one sale
    PATCH  /sales/{id}         body {"isPending": bool}
    GET    /products           catalog
    POST   /products           create
    PUT    /products/{id}      replace
    DELETE /products/{id}      remove

  The ledger never retries writes; the client retries only idempotent
  failed connections on GET. Failures surface as ledger.TransportError
  with in-memory state untouched.
*/
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/tiendita/pos-engine/catalog"
	"github.com/tiendita/pos-engine/ledger"
)

// Store implements ledger.SaleStore and catalog.ProductStore over HTTP.
type Store struct {
	http *resty.Client
	log  *zap.Logger
}

// New builds a client for the given base URL (e.g. http://localhost:3001).
func New(baseURL string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Connection-level failures on safe methods only.
			return err != nil && resp.Request.Method == http.MethodGet
		})
	return &Store{http: client, log: log}
}

// =============================================================================
// SALE STORE (ledger.SaleStore interface)
// =============================================================================

func (s *Store) Load(ctx context.Context) ([]ledger.Sale, error) {
	var sales []ledger.Sale
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&sales).
		Get("/sales")
	if err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: err}
	}
	if resp.IsError() {
		return nil, &ledger.TransportError{Op: "load", Err: statusError(resp)}
	}
	return sales, nil
}

func (s *Store) Append(ctx context.Context, sale ledger.Sale) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(sale).
		Post("/sales")
	if err != nil {
		return &ledger.TransportError{Op: "append", Err: err}
	}
	if resp.IsError() {
		return &ledger.TransportError{Op: "append", Err: statusError(resp)}
	}
	s.log.Debug("sale appended", zap.String("id", string(sale.ID)))
	return nil
}

func (s *Store) Patch(ctx context.Context, id ledger.SaleID, pending bool) error {
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]bool{"isPending": pending}).
		Patch("/sales/" + string(id))
	if err != nil {
		return &ledger.TransportError{Op: "patch", Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return &ledger.NotFoundError{SaleID: id}
	}
	if resp.IsError() {
		return &ledger.TransportError{Op: "patch", Err: statusError(resp)}
	}
	return nil
}

// =============================================================================
// PRODUCT STORE (catalog.ProductStore interface)
// =============================================================================

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&products).
		Get("/products")
	if err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: err}
	}
	if resp.IsError() {
		return nil, &ledger.TransportError{Op: "load", Err: statusError(resp)}
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var product catalog.Product
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&product).
		Get("/products/" + id)
	if err != nil {
		return nil, &ledger.TransportError{Op: "load", Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, &ledger.TransportError{Op: "load", Err: statusError(resp)}
	}
	return &product, nil
}

func (s *Store) SaveProduct(ctx context.Context, p catalog.Product) error {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}

	req := s.http.R().SetContext(ctx).SetBody(p)
	var resp *resty.Response
	if existing == nil {
		resp, err = req.Post("/products")
	} else {
		resp, err = req.Put("/products/" + p.ID)
	}
	if err != nil {
		return &ledger.TransportError{Op: "save", Err: err}
	}
	if resp.IsError() {
		return &ledger.TransportError{Op: "save", Err: statusError(resp)}
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	resp, err := s.http.R().
		SetContext(ctx).
		Delete("/products/" + id)
	if err != nil {
		return &ledger.TransportError{Op: "delete", Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
	}
	if resp.IsError() {
		return &ledger.TransportError{Op: "delete", Err: statusError(resp)}
	}
	return nil
}

func statusError(resp *resty.Response) error {
	return fmt.Errorf("unexpected status %s: %s", resp.Status(), resp.String())
}
