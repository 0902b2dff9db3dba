/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that replace the ledger state with
	realistic data for demos. Each scenario is a complete snapshot: a
	catalog plus a newest-first history whose movements are already
	reflected in the catalog stock.

AVAILABLE SCENARIOS:

	demo:       Office catalog with a few recent movements
	orphans:    Demo catalog after a product was deleted; its records remain
	empty:      No products, no history

HOW SCENARIOS WORK:
 1. Build the snapshot
 2. Ledger.Load replaces the whole state in one transaction
 3. Observers (the Redis mirror) receive every product and every removal

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "demo"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a builder to 'scenarioBuilders'

NOTE:

	Scenarios replace all data. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler struct
  - cmd/server/main.go: -seed flag
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/warp/stock-ledger/inventory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "demo",
		Name:        "Office Supplies",
		Description: "Seven products across furniture, electronics and accessories with three recent movements",
	},
	{
		ID:          "orphans",
		Name:        "Deleted Product",
		Description: "Demo catalog after the laptop stand was deleted; its movements stay in history",
	},
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "No products and no history",
	},
}

var scenarioBuilders = map[string]func() inventory.Snapshot{
	"demo":    demoSnapshot,
	"orphans": orphansSnapshot,
	"empty":   func() inventory.Snapshot { return inventory.Snapshot{} },
}

func demoSnapshot() inventory.Snapshot {
	return inventory.Snapshot{
		Products: []inventory.Product{
			{ID: 1, Code: "P-001", Name: "고급 사무용 의자", Category: "가구", Stock: 45, SafetyStock: 10},
			{ID: 2, Code: "P-002", Name: "스탠딩 데스크", Category: "가구", Stock: 8, SafetyStock: 15},
			{ID: 3, Code: "P-003", Name: "무선 마우스", Category: "전자제품", Stock: 120, SafetyStock: 30},
			{ID: 4, Code: "P-004", Name: "기계식 키보드", Category: "전자제품", Stock: 55, SafetyStock: 20},
			{ID: 5, Code: "P-005", Name: "27인치 모니터", Category: "전자제품", Stock: 3, SafetyStock: 5},
			{ID: 6, Code: "P-006", Name: "USB-C 허브", Category: "악세사리", Stock: 80, SafetyStock: 25},
			{ID: 7, Code: "P-007", Name: "노트북 거치대", Category: "악세사리", Stock: 42, SafetyStock: 15},
		},
		History: []inventory.HistoryItem{
			{ID: 3, Type: inventory.TxInbound, Date: "2023-10-27", ProductID: 3, ProductName: "무선 마우스", Quantity: 100, Company: "로지텍 도매"},
			{ID: 2, Type: inventory.TxOutbound, Date: "2023-10-26", ProductID: 1, ProductName: "고급 사무용 의자", Quantity: 5, Company: "스타트업 A사"},
			{ID: 1, Type: inventory.TxInbound, Date: "2023-10-25", ProductID: 1, ProductName: "고급 사무용 의자", Quantity: 50, Company: "체어메이커(주)"},
		},
	}
}

func orphansSnapshot() inventory.Snapshot {
	snap := demoSnapshot()
	snap.History = append([]inventory.HistoryItem{
		{ID: 5, Type: inventory.TxOutbound, Date: "2023-10-29", ProductID: 7, ProductName: "노트북 거치대", Quantity: 2, Company: "디자인랩"},
		{ID: 4, Type: inventory.TxInbound, Date: "2023-10-28", ProductID: 7, ProductName: "노트북 거치대", Quantity: 10, Company: "-"},
	}, snap.History...)
	snap.Products = slices.DeleteFunc(snap.Products, func(p inventory.Product) bool { return p.ID == 7 })
	return snap
}

// ScenarioSnapshot returns the snapshot of a named scenario.
func ScenarioSnapshot(id string) (inventory.Snapshot, bool) {
	build, ok := scenarioBuilders[id]
	if !ok {
		return inventory.Snapshot{}, false
	}
	return build(), true
}

// Seed loads the scenario when the catalog is empty. It reports whether it
// loaded anything.
func Seed(ctx context.Context, ledger *inventory.Ledger, id string) (bool, error) {
	snap, ok := ScenarioSnapshot(id)
	if !ok {
		return false, fmt.Errorf("unknown scenario: %s", id)
	}
	products, err := ledger.Products(ctx)
	if err != nil {
		return false, err
	}
	if len(products) > 0 {
		return false, nil
	}
	if err := ledger.Load(ctx, snap); err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snap, ok := ScenarioSnapshot(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("unknown scenario: %s", req.ScenarioID))
		return
	}
	if err := h.Ledger.Load(r.Context(), snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"scenario": req.ScenarioID,
		"products": len(snap.Products),
		"history":  len(snap.History),
	})
}

// ResetDatabase clears all products and history.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.Load(r.Context(), inventory.Snapshot{}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
