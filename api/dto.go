/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the inventory model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Catalog:
    ProductDTO, ProductRequest, ProductLedgerDTO

  History:
    HistoryDTO, MovementRequest, EditResultDTO, DeleteResultDTO

  Import:
    ImportResultDTO, RejectionDTO

  Dashboard:
    DashboardDTO, CategoryStockDTO, DailyActivityDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and the ledger, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/stock-ledger/csvio"
	"github.com/warp/stock-ledger/inventory"
)

// =============================================================================
// CATALOG
// =============================================================================

// ProductDTO represents a product in API responses. Status and IsLow are
// computed on every read.
type ProductDTO struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
	SafetyStock int    `json:"safety_stock"`
	Status      string `json:"status"`
	IsLow       bool   `json:"is_low"`
}

// ProductRequest is the body of POST and PUT /api/products.
type ProductRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
	SafetyStock int    `json:"safety_stock"`
}

// ProductLedgerDTO explains one product's stock: the opening stock its
// history implies, the net of its movements, and those movements.
type ProductLedgerDTO struct {
	Product      ProductDTO   `json:"product"`
	OpeningStock int          `json:"opening_stock"`
	NetMovement  int          `json:"net_movement"`
	History      []HistoryDTO `json:"history"`
}

// =============================================================================
// HISTORY
// =============================================================================

// HistoryDTO represents one movement. Orphaned is true when the referenced
// product no longer exists; ProductName is then the last-known name.
type HistoryDTO struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Company     string `json:"company"`
	Orphaned    bool   `json:"orphaned"`
}

// MovementRequest is the body of POST and PUT /api/history. Date defaults
// to today (UTC) when empty.
type MovementRequest struct {
	Type      string `json:"type"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Date      string `json:"date"`
	Company   string `json:"company"`
}

type EditResultDTO struct {
	Item     HistoryDTO `json:"item"`
	Reversed bool       `json:"reversed"`
	Applied  bool       `json:"applied"`
}

type DeleteResultDTO struct {
	Item     HistoryDTO `json:"item"`
	Reversed bool       `json:"reversed"`
}

// =============================================================================
// IMPORT
// =============================================================================

type ImportResultDTO struct {
	BatchID    string         `json:"batch_id"`
	Success    int            `json:"success"`
	Failed     int            `json:"failed"`
	Added      int            `json:"added"`
	Updated    int            `json:"updated"`
	Rejections []RejectionDTO `json:"rejections,omitempty"`
}

type RejectionDTO struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type DashboardDTO struct {
	TotalProducts int                `json:"total_products"`
	TotalStock    int                `json:"total_stock"`
	LowStockCount int                `json:"low_stock_count"`
	Categories    []CategoryStockDTO `json:"categories"`
	Activity      []DailyActivityDTO `json:"activity"`
	LowStock      []ProductDTO       `json:"low_stock"`
}

type CategoryStockDTO struct {
	Name  string          `json:"name"`
	Stock int             `json:"stock"`
	Share decimal.Decimal `json:"share"` // percent of total stock
}

type DailyActivityDTO struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toProductDTO(p inventory.Product) ProductDTO {
	return ProductDTO{
		ID:          int64(p.ID),
		Code:        p.Code,
		Name:        p.Name,
		Category:    p.Category,
		Stock:       p.Stock,
		SafetyStock: p.SafetyStock,
		Status:      string(p.Status()),
		IsLow:       p.IsLow(),
	}
}

func toProductDTOs(products []inventory.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}

// toHistoryDTO needs the set of live product ids to flag orphans; nil
// means "unknown" and never flags.
func toHistoryDTO(h inventory.HistoryItem, live map[inventory.ProductID]bool) HistoryDTO {
	return HistoryDTO{
		ID:          int64(h.ID),
		Type:        string(h.Type),
		Date:        h.Date,
		ProductID:   int64(h.ProductID),
		ProductName: h.ProductName,
		Quantity:    h.Quantity,
		Company:     h.Company,
		Orphaned:    live != nil && !live[h.ProductID],
	}
}

func toImportResultDTO(res csvio.Result) ImportResultDTO {
	dto := ImportResultDTO{
		BatchID: res.BatchID,
		Success: res.Success,
		Failed:  res.Failed,
		Added:   res.Added,
		Updated: res.Updated,
	}
	for _, r := range res.Rejections {
		dto.Rejections = append(dto.Rejections, RejectionDTO{Line: r.Line, Reason: r.Reason})
	}
	return dto
}

func toDashboardDTO(s inventory.Summary, low []inventory.Product) DashboardDTO {
	dto := DashboardDTO{
		TotalProducts: s.TotalProducts,
		TotalStock:    s.TotalStock,
		LowStockCount: s.LowStockCount,
		Categories:    make([]CategoryStockDTO, len(s.Categories)),
		Activity:      make([]DailyActivityDTO, len(s.Activity)),
		LowStock:      toProductDTOs(low),
	}
	for i, c := range s.Categories {
		dto.Categories[i] = CategoryStockDTO{Name: c.Name, Stock: c.Stock, Share: c.Share}
	}
	for i, a := range s.Activity {
		dto.Activity[i] = DailyActivityDTO{Date: a.Date, Inbound: a.Inbound, Outbound: a.Outbound}
	}
	return dto
}
