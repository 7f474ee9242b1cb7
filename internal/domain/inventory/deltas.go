package inventory

import (
	"sort"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// ComputeDeltas calcula el delta neto por producto al pasar de oldItems a newItems.
// Delta = Σ(newItems) − Σ(oldItems); positivo = hay que sacar más stock, negativo = se devuelve.
// Los productos con delta neto 0 se omiten: un update sin cambios no escribe movimientos.
func ComputeDeltas(oldItems, newItems []entity.ItemCount) map[string]int {
	deltas := make(map[string]int)
	for _, it := range newItems {
		deltas[it.ProductID] += it.Count
	}
	for _, it := range oldItems {
		deltas[it.ProductID] -= it.Count
	}
	for productID, d := range deltas {
		if d == 0 {
			delete(deltas, productID)
		}
	}
	return deltas
}

// StockDeltas convierte los deltas de reserva (desde la óptica del pedido) en cambios de stock:
// reservar más unidades resta stock.
func StockDeltas(reservation map[string]int) map[string]int {
	out := make(map[string]int, len(reservation))
	for productID, d := range reservation {
		if d != 0 {
			out[productID] = -d
		}
	}
	return out
}

// MergeItems suma las cantidades por producto y devuelve el resultado ordenado por ProductID.
// El orden ascendente es el orden global de bloqueo de filas.
func MergeItems(items []entity.ItemCount) []entity.ItemCount {
	sums := make(map[string]int, len(items))
	for _, it := range items {
		sums[it.ProductID] += it.Count
	}
	out := make([]entity.ItemCount, 0, len(sums))
	for _, productID := range SortedProductIDs(sums) {
		out = append(out, entity.ItemCount{ProductID: productID, Count: sums[productID]})
	}
	return out
}

// SortedProductIDs devuelve las claves en orden ascendente.
func SortedProductIDs(m map[string]int) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
