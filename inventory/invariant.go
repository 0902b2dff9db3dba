package inventory

// NetMovement sums the signed deltas of every record referencing id.
func NetMovement(history []HistoryItem, id ProductID) int {
	net := 0
	for _, h := range history {
		if h.ProductID == id {
			net += h.Delta()
		}
	}
	return net
}

// Baselines returns the initial stock each product implies:
// stock minus the net movement of its history.
func Baselines(products []Product, history []HistoryItem) map[ProductID]int {
	net := make(map[ProductID]int, len(products))
	for _, h := range history {
		net[h.ProductID] += h.Delta()
	}
	out := make(map[ProductID]int, len(products))
	for _, p := range products {
		out[p.ID] = p.Stock - net[p.ID]
	}
	return out
}

// Orphans returns the records whose product is no longer in the catalog,
// in log order.
func Orphans(products []Product, history []HistoryItem) []HistoryItem {
	known := make(map[ProductID]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}
	var out []HistoryItem
	for _, h := range history {
		if !known[h.ProductID] {
			out = append(out, h)
		}
	}
	return out
}

// MaxReferencedProductID returns the largest product id referenced by any
// record. ok is false for an empty log.
func MaxReferencedProductID(history []HistoryItem) (max ProductID, ok bool) {
	for i, h := range history {
		if i == 0 || h.ProductID > max {
			max = h.ProductID
		}
	}
	return max, len(history) > 0
}
