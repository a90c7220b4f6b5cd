/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract. Monetary fields carry integer cents plus a
  pre-formatted display string; clients never do money math on floats.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in the domain (checkout finalizer, catalog service),
  not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/tiendita/pos-engine/catalog"
	"github.com/tiendita/pos-engine/ledger"
	"github.com/tiendita/pos-engine/stats"
)

// =============================================================================
// PRODUCT TYPES
// =============================================================================

// ProductDTO represents a catalog entry in API responses.
type ProductDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	UnitPrice      string `json:"unitPrice"`
	Unit           string `json:"unit"`
	Category       string `json:"category"`
	Stock          int    `json:"stock"`
}

// ProductRequest is the request to create or update a product.
type ProductRequest struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Unit           string `json:"unit"`
	Category       string `json:"category"`
	Stock          int    `json:"stock"`
}

// =============================================================================
// SALE TYPES
// =============================================================================

// SaleItemDTO is one line of a sale.
type SaleItemDTO struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Unit           string `json:"unit,omitempty"`
	SubtotalCents  int64  `json:"subtotalCents"`
}

// SaleDTO represents a recorded sale.
type SaleDTO struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	Items         []SaleItemDTO `json:"items"`
	TotalCents    int64         `json:"totalCents"`
	Total         string        `json:"total"`
	PaymentMethod string        `json:"paymentMethod"`
	CustomerName  string        `json:"customerName,omitempty"`
	IsPending     bool          `json:"isPending"`
}

// CheckoutItem is one cart line in a checkout request.
type CheckoutItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Unit           string `json:"unit,omitempty"`
}

// CheckoutRequest finalizes a cart into a sale.
type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	PaymentMethod string         `json:"paymentMethod"`
	IsPending     bool           `json:"isPending"`
	CustomerName  string         `json:"customerName,omitempty"`
}

// =============================================================================
// STATISTICS TYPES
// =============================================================================

// SummaryDTO is the revenue split over the filtered set.
type SummaryDTO struct {
	SalesCount   int    `json:"salesCount"`
	TotalCents   int64  `json:"totalCents"`
	Total        string `json:"total"`
	PaidCents    int64  `json:"paidCents"`
	Paid         string `json:"paid"`
	PendingCents int64  `json:"pendingCents"`
	Pending      string `json:"pending"`
}

// ProductStatDTO is one row of the per-product rollup.
type ProductStatDTO struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"totalCents"`
	Total      string `json:"total"`
}

// PaymentStatDTO is one payment method's share of the filtered set.
type PaymentStatDTO struct {
	Method     string  `json:"method"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CustomerStatDTO is one row of the per-customer (credit) rollup.
type CustomerStatDTO struct {
	Name       string `json:"name"`
	Purchases  int    `json:"purchases"`
	TotalCents int64  `json:"totalCents"`
	Total      string `json:"total"`
}

// StatsDTO bundles everything the statistics dashboard shows.
type StatsDTO struct {
	Period    string            `json:"period"`
	Customer  string            `json:"customer"`
	Summary   SummaryDTO        `json:"summary"`
	Products  []ProductStatDTO  `json:"products"`
	Payments  []PaymentStatDTO  `json:"payments"`
	Customers []CustomerStatDTO `json:"customers"`
	Recent    []SaleDTO         `json:"recent"`
}

// DebtGroupDTO is one customer's group on the fiado dashboard.
type DebtGroupDTO struct {
	CustomerName   string    `json:"customerName"`
	TotalDebtCents int64     `json:"totalDebtCents"`
	TotalDebt      string    `json:"totalDebt"`
	Sales          []SaleDTO `json:"sales"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toProductDTO(p catalog.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		UnitPriceCents: int64(p.Price),
		UnitPrice:      p.Price.String(),
		Unit:           p.Unit,
		Category:       p.Category,
		Stock:          p.Stock,
	}
}

func toSaleDTO(s ledger.Sale) SaleDTO {
	items := make([]SaleItemDTO, len(s.Items))
	for i, it := range s.Items {
		items[i] = SaleItemDTO{
			ProductID:      it.ProductID,
			Name:           it.Name,
			UnitPriceCents: int64(it.UnitPrice),
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			SubtotalCents:  int64(it.Subtotal()),
		}
	}
	return SaleDTO{
		ID:            string(s.ID),
		Date:          s.Date.Format(time.RFC3339),
		Items:         items,
		TotalCents:    int64(s.Total),
		Total:         s.Total.String(),
		PaymentMethod: string(s.PaymentMethod),
		CustomerName:  s.CustomerName,
		IsPending:     s.IsPending,
	}
}

func toSaleDTOs(sales []ledger.Sale) []SaleDTO {
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = toSaleDTO(s)
	}
	return dtos
}

func toSummaryDTO(s stats.Summary) SummaryDTO {
	return SummaryDTO{
		SalesCount:   s.Count,
		TotalCents:   int64(s.Total),
		Total:        s.Total.String(),
		PaidCents:    int64(s.Paid),
		Paid:         s.Paid.String(),
		PendingCents: int64(s.Pending),
		Pending:      s.Pending.String(),
	}
}

func toCartItems(items []CheckoutItem) []ledger.CartItem {
	out := make([]ledger.CartItem, len(items))
	for i, it := range items {
		out[i] = ledger.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: ledger.Cents(it.UnitPriceCents),
			Quantity:  it.Quantity,
			Unit:      it.Unit,
		}
	}
	return out
}
