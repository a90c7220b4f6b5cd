/*
handlers.go - HTTP API handlers for the POS engine

PURPOSE:
  Exposes the sales ledger and catalog via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Products:
    GET    /api/products            List catalog
    POST   /api/products            Create product
    PUT    /api/products/{id}       Update product
    DELETE /api/products/{id}       Delete product

  Sales:
    GET    /api/sales               Sales history (newest first)
    GET    /api/sales/recent        Last N sales (limit query, default 8)
    POST   /api/checkout            Finalize a cart into a sale
    POST   /api/sales/{id}/pay      Mark a pending sale paid

  Reporting:
    GET    /api/stats               Rollups (period=, customer= queries)
    GET    /api/debts               Fiado dashboard groups
    GET    /api/customers           Pending-sale customer names

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Sale/product not found
  - 502: Persistence/transport backend failure
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tiendita/pos-engine/catalog"
	"github.com/tiendita/pos-engine/ledger"
	"github.com/tiendita/pos-engine/stats"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger    *ledger.Ledger
	Finalizer *ledger.Finalizer
	Catalog   *catalog.Service
	Debts     *stats.DebtBook

	log *zap.Logger
	now func() time.Time
}

// NewHandler wires a handler over the given ledger and catalog.
func NewHandler(l *ledger.Ledger, c *catalog.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Ledger:    l,
		Finalizer: ledger.NewFinalizer(l),
		Catalog:   c,
		Debts:     stats.NewDebtBook(l),
		log:       log,
		now:       time.Now,
	}
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Products(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProduct adds a catalog entry.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	created, err := h.Catalog.Create(r.Context(), catalog.Product{
		Name:     req.Name,
		Price:    ledger.Cents(req.UnitPriceCents),
		Unit:     req.Unit,
		Category: req.Category,
		Stock:    req.Stock,
	})
	if err != nil {
		h.writeDomainError(w, "failed to create product", err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductDTO(created))
}

// UpdateProduct replaces a catalog entry.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	updated, err := h.Catalog.Update(r.Context(), catalog.Product{
		ID:       id,
		Name:     req.Name,
		Price:    ledger.Cents(req.UnitPriceCents),
		Unit:     req.Unit,
		Category: req.Category,
		Stock:    req.Stock,
	})
	if err != nil {
		h.writeDomainError(w, "failed to update product", err)
		return
	}

	writeJSON(w, http.StatusOK, toProductDTO(updated))
}

// DeleteProduct removes a catalog entry. Recorded sales are unaffected.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, "failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns the full sales history, newest first.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Ledger.All(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to load sales", err)
		return
	}

	// Ledger order is oldest first; history view shows newest first.
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[len(sales)-1-i] = toSaleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecentSales returns the last N sales, newest first.
func (h *Handler) RecentSales(w http.ResponseWriter, r *http.Request) {
	limit := stats.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	sales, err := h.Ledger.All(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to load sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(stats.Recent(sales, limit)))
}

// Checkout finalizes a cart into a recorded sale.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sale, err := h.Finalizer.Finalize(
		r.Context(),
		toCartItems(req.Items),
		ledger.PaymentMethod(req.PaymentMethod),
		req.IsPending,
		req.CustomerName,
	)
	if err != nil {
		h.writeDomainError(w, "checkout rejected", err)
		return
	}

	h.log.Info("sale recorded",
		zap.String("id", string(sale.ID)),
		zap.Int64("totalCents", int64(sale.Total)),
		zap.String("method", string(sale.PaymentMethod)),
		zap.Bool("pending", sale.IsPending),
	)
	writeJSON(w, http.StatusCreated, toSaleDTO(sale))
}

// PaySale settles a pending sale. Retrying a settled sale succeeds.
func (h *Handler) PaySale(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	if err := h.Ledger.MarkPaid(r.Context(), id); err != nil {
		h.writeDomainError(w, "failed to mark sale paid", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": string(id), "isPending": false})
}

// =============================================================================
// REPORTING HANDLERS
// =============================================================================

// GetStats computes the dashboard rollups for one period and customer filter.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	period := stats.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = stats.PeriodAll
	}
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "unknown period "+string(period), nil)
		return
	}
	customer := r.URL.Query().Get("customer")
	if customer == "" {
		customer = stats.CustomerAll
	}

	sales, err := h.Ledger.All(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to load sales", err)
		return
	}

	filtered := stats.FilterSales(sales, h.now(), period, customer)

	dto := StatsDTO{
		Period:   string(period),
		Customer: customer,
		Summary:  toSummaryDTO(stats.Summarize(filtered)),
		Recent:   toSaleDTOs(stats.Recent(filtered, stats.DefaultRecentLimit)),
	}
	for _, p := range stats.ProductRollup(filtered) {
		dto.Products = append(dto.Products, ProductStatDTO{
			Name:       p.Name,
			Quantity:   p.Quantity,
			TotalCents: int64(p.Total),
			Total:      p.Total.String(),
		})
	}
	for _, p := range stats.PaymentBreakdown(filtered) {
		dto.Payments = append(dto.Payments, PaymentStatDTO{
			Method:     string(p.Method),
			Count:      p.Count,
			Percentage: p.Percentage.Round(1).InexactFloat64(),
		})
	}
	for _, c := range stats.CustomerRollup(filtered) {
		dto.Customers = append(dto.Customers, CustomerStatDTO{
			Name:       c.Name,
			Purchases:  c.Purchases,
			TotalCents: int64(c.Total),
			Total:      c.Total.String(),
		})
	}

	writeJSON(w, http.StatusOK, dto)
}

// ListDebts returns the fiado dashboard groupings.
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Debts.Groups(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to load debts", err)
		return
	}

	dtos := make([]DebtGroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = DebtGroupDTO{
			CustomerName:   g.CustomerName,
			TotalDebtCents: int64(g.Total),
			TotalDebt:      g.Total.String(),
			Sales:          toSaleDTOs(g.Sales),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListCustomers returns the distinct customer names carrying debt.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	names, err := h.Ledger.CustomerNames(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to load customers", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsClientError(err) || errors.Is(err, catalog.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, message, err)
	case ledger.IsNotFound(err) || errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsTransport(err):
		h.log.Error("backend failure", zap.String("context", message), zap.Error(err))
		writeError(w, http.StatusBadGateway, message, err)
	default:
		h.log.Error("internal error", zap.String("context", message), zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
