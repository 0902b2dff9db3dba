/*
handlers.go - HTTP API handlers for the stock ledger

PURPOSE:
  Exposes the inventory ledger, the CSV importer and the query layer via a
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Catalog:
    GET    /api/products               List products (q, sort, dir, category_case, low)
    POST   /api/products               Create product
    PUT    /api/products/{id}          Overwrite product fields
    DELETE /api/products/{id}          Delete product (history is kept)
    GET    /api/products/{id}/ledger   Opening stock, net movement and history

  History:
    GET    /api/history                List movements, newest first
    POST   /api/history                Record a movement
    PUT    /api/history/{id}           Edit a movement (reverse then re-apply)
    DELETE /api/history/{id}           Delete a movement (reverse)

  CSV:
    POST   /api/import                 Merge a raw CSV body by product code
    GET    /api/export                 Download the catalog (lang=ko|en)

  Dashboard:
    GET    /api/dashboard              Totals, category shares, daily activity

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Clear everything

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Ledger: The only writer of stock
  - Importer: CSV merge on top of the ledger

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status, mapped in one
  place (statusFor):
  - 400: Validation errors, invalid input
  - 404: Product or history record not found
  - 422: CSV import with no acceptable row
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/stock-ledger/csvio"
	"github.com/warp/stock-ledger/inventory"
)

// maxImportBytes bounds the body of POST /api/import.
const maxImportBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger   *inventory.Ledger
	Importer *csvio.Importer

	// Now is the clock used for default dates and export file names.
	Now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over the given ledger.
func NewHandler(ledger *inventory.Ledger) *Handler {
	return &Handler{
		Ledger:   ledger,
		Importer: csvio.NewImporter(ledger),
		Now:      time.Now,
	}
}

func (h *Handler) today() string {
	return h.Now().UTC().Format(time.DateOnly)
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListProducts returns the filtered and sorted catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	key, err := inventory.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sort key", err)
		return
	}
	dir, err := inventory.ParseDirection(q.Get("dir"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sort direction", err)
		return
	}
	opts := inventory.DefaultFilterOptions
	if strings.EqualFold(q.Get("category_case"), "insensitive") {
		opts.CaseSensitiveCategory = false
	}

	products, err := h.Ledger.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	view := inventory.FilterAndSort(products, q.Get("q"), inventory.SortState{Key: key, Direction: dir}, opts)
	if low, _ := strconv.ParseBool(q.Get("low")); low {
		view = inventory.LowStock(view)
	}
	writeJSON(w, http.StatusOK, toProductDTOs(view))
}

// CreateProduct adds a product with the next free id.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Ledger.UpsertProduct(r.Context(), inventory.ProductDraft{
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Stock:       req.Stock,
		SafetyStock: req.SafetyStock,
	})
	if err != nil {
		writeDomainError(w, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// UpdateProduct overwrites every editable field of a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Ledger.UpsertProduct(r.Context(), inventory.ProductDraft{
		Editing:     true,
		ID:          inventory.ProductID(id),
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Stock:       req.Stock,
		SafetyStock: req.SafetyStock,
	})
	if err != nil {
		writeDomainError(w, "Failed to update product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// DeleteProduct removes a product. Its history stays.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteProduct(r.Context(), inventory.ProductID(id)); err != nil {
		writeDomainError(w, "Failed to delete product", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetProductLedger breaks a product's stock down into the opening stock its
// history implies plus the net of its movements.
func (h *Handler) GetProductLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, err := h.Ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read ledger", err)
		return
	}

	pid := inventory.ProductID(id)
	idx := slices.IndexFunc(snap.Products, func(p inventory.Product) bool { return p.ID == pid })
	if idx < 0 {
		writeDomainError(w, "Failed to read product ledger", &inventory.ProductNotFoundError{ID: pid})
		return
	}

	dto := ProductLedgerDTO{
		Product:      toProductDTO(snap.Products[idx]),
		OpeningStock: inventory.Baselines(snap.Products, snap.History)[pid],
		NetMovement:  inventory.NetMovement(snap.History, pid),
		History:      []HistoryDTO{},
	}
	live := liveIDs(snap.Products)
	for _, item := range snap.History {
		if item.ProductID == pid {
			dto.History = append(dto.History, toHistoryDTO(item, live))
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// ListHistory returns every movement, newest first.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history", err)
		return
	}
	live := liveIDs(snap.Products)

	dtos := make([]HistoryDTO, len(snap.History))
	for i, item := range snap.History {
		dtos[i] = toHistoryDTO(item, live)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordTransaction prepends a movement and applies it to stock.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	m, ok := h.decodeMovement(w, r)
	if !ok {
		return
	}
	item, err := h.Ledger.Record(r.Context(), m)
	if err != nil {
		writeDomainError(w, "Failed to record transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHistoryDTO(item, nil))
}

// EditTransaction rewrites a movement in place.
func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, ok := h.decodeMovement(w, r)
	if !ok {
		return
	}
	res, err := h.Ledger.Edit(r.Context(), inventory.HistoryID(id), m)
	if err != nil {
		writeDomainError(w, "Failed to edit transaction", err)
		return
	}
	live := map[inventory.ProductID]bool{res.Item.ProductID: res.Applied}
	writeJSON(w, http.StatusOK, EditResultDTO{
		Item:     toHistoryDTO(res.Item, live),
		Reversed: res.Reversed,
		Applied:  res.Applied,
	})
}

// DeleteTransaction removes a movement and reverses it.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.Ledger.DeleteTransaction(r.Context(), inventory.HistoryID(id))
	if err != nil {
		writeDomainError(w, "Failed to delete transaction", err)
		return
	}
	live := map[inventory.ProductID]bool{res.Item.ProductID: res.Reversed}
	writeJSON(w, http.StatusOK, DeleteResultDTO{
		Item:     toHistoryDTO(res.Item, live),
		Reversed: res.Reversed,
	})
}

func (h *Handler) decodeMovement(w http.ResponseWriter, r *http.Request) (inventory.Movement, bool) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return inventory.Movement{}, false
	}
	txType, err := inventory.ParseTxType(req.Type)
	if err != nil {
		writeDomainError(w, "Invalid transaction type", err)
		return inventory.Movement{}, false
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = h.today()
	}
	return inventory.Movement{
		Type:      txType,
		ProductID: inventory.ProductID(req.ProductID),
		Quantity:  req.Quantity,
		Date:      date,
		Company:   req.Company,
	}, true
}

// =============================================================================
// CSV HANDLERS
// =============================================================================

// ImportCSV merges the raw request body into the catalog.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read CSV body", err)
		return
	}

	res, err := h.Importer.Import(r.Context(), string(body))
	if errors.Is(err, inventory.ErrEmptyImport) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Nothing to import",
			Code:    codeFor(err),
			Details: toImportResultDTO(res),
		})
		return
	}
	if err != nil {
		writeDomainError(w, "Failed to import CSV", err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResultDTO(res))
}

// ExportCSV downloads the catalog as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	products, err := h.Ledger.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	labels := csvio.LabelsFor(r.URL.Query().Get("lang"))
	filename := csvio.ExportFilename(labels.FilePrefix, h.Now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	if err := csvio.Export(w, products, labels); err != nil {
		log.Printf("api: export aborted: %v", err)
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns catalog totals and recent activity.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	days := inventory.DefaultActivityDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid days", err)
			return
		}
		days = n
	}

	snap, err := h.Ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard", err)
		return
	}
	summary := inventory.Summarize(snap.Products, snap.History, days)
	writeJSON(w, http.StatusOK, toDashboardDTO(summary, inventory.LowStock(snap.Products)))
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func liveIDs(products []inventory.Product) map[inventory.ProductID]bool {
	live := make(map[inventory.ProductID]bool, len(products))
	for _, p := range products {
		live[p.ID] = true
	}
	return live
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case inventory.IsNotFound(err):
		return http.StatusNotFound
	case inventory.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrEmptyImport):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, inventory.ErrHistoryNotFound):
		return "history_not_found"
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, inventory.ErrInvalidProduct):
		return "invalid_product"
	case errors.Is(err, inventory.ErrInvalidTxType):
		return "invalid_type"
	case errors.Is(err, inventory.ErrEmptyImport):
		return "empty_import"
	default:
		return "internal"
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

func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{
		Error:   message,
		Code:    codeFor(err),
		Details: err.Error(),
	})
}
