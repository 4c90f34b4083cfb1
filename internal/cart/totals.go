package cart

import "storefront/cart/internal/domain"

// Totals derives display figures from the backend totals. The fee line is
// taken out of the subtotal and the item count; fees never go below zero.
func (s *Store) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		feeAmount float64
		count     int
	)
	for _, item := range s.items {
		if s.isFeeLocked(item) {
			feeAmount += item.LineTotal()
			continue
		}
		count += item.Qty
	}
	feeAmount = domain.Round2(feeAmount)

	subtotal := domain.Round2(s.backendTotals.Subtotal - feeAmount)
	total := domain.Round2(s.backendTotals.Total)

	return domain.Totals{
		Count:    count,
		Subtotal: subtotal,
		Fees:     max(0, domain.Round2(total-subtotal)),
		Total:    total,
	}
}

// ProductQuantity returns how many units of a product are in the cart, 0 if
// none. Lines are matched on their canonical product id, which the decoder
// resolved from productId, product.id or id.
func (s *Store) ProductQuantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ProductID != "" && domain.SameID(item.ProductID, productID) {
			return item.Qty
		}
	}
	return 0
}

// IsFee reports whether item is the synthetic delivery fee line.
func (s *Store) IsFee(item domain.CartItem) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isFeeLocked(item)
}
