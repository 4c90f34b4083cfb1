package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CartItem is a single cart line. ProductID is always the canonical product
// key, whatever shape the backend used to send it.
type CartItem struct {
	ID        string  `json:"id"`        // Server-assigned cart line id
	ProductID string  `json:"productId"` // Catalog product id
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	Brand     string  `json:"brand,omitempty"`
	Category  string  `json:"category,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// LineTotal is price times quantity, rounded to cents.
func (i CartItem) LineTotal() float64 {
	return Round2(i.Price * float64(i.Qty))
}

type cartLineWire struct {
	ID        json.RawMessage `json:"id"`
	ProductID json.RawMessage `json:"productId"`
	Product   *struct {
		ID json.RawMessage `json:"id"`
	} `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	ImageURL string  `json:"imageUrl"`
}

// UnmarshalJSON accepts a top-level productId, a nested product.id or the
// line's own id, in that order, and keeps the first numeric one as ProductID.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	var w cartLineWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := rawID(w.ID)
	if err != nil {
		return fmt.Errorf("cart line id: %w", err)
	}

	candidates := make([]string, 0, 3)
	productID, err := rawID(w.ProductID)
	if err != nil {
		return fmt.Errorf("cart line productId: %w", err)
	}
	candidates = append(candidates, productID)
	if w.Product != nil {
		nested, err := rawID(w.Product.ID)
		if err != nil {
			return fmt.Errorf("cart line product.id: %w", err)
		}
		candidates = append(candidates, nested)
	}
	candidates = append(candidates, id)

	*i = CartItem{
		ID:        id,
		ProductID: pickProductID(candidates),
		Name:      w.Name,
		Price:     w.Price,
		Qty:       w.Qty,
		Brand:     w.Brand,
		Category:  w.Category,
		ImageURL:  w.ImageURL,
	}
	return nil
}

func pickProductID(candidates []string) string {
	for _, c := range candidates {
		if isNumeric(c) {
			return c
		}
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// rawID turns a JSON string or number into its string form. Missing and null
// values become "".
func rawID(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", nil
	}
	if strings.HasPrefix(s, `"`) {
		var out string
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		return out, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("unsupported id %s", s)
	}
	return n.String(), nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// SameID compares two ids numerically when both are numbers ("5" == "5.0"),
// otherwise as plain strings.
func SameID(a, b string) bool {
	if isNumeric(a) && isNumeric(b) {
		fa, _ := strconv.ParseFloat(a, 64)
		fb, _ := strconv.ParseFloat(b, 64)
		return fa == fb
	}
	return a == b
}

// CartDTO is the backend's authoritative cart representation. Optional
// totals are pointers so a missing field can be told apart from zero.
type CartDTO struct {
	Items          []CartItem `json:"items"`
	Subtotal       *float64   `json:"subtotal"`
	Total          *float64   `json:"total,omitempty"`
	Weight         *float64   `json:"weight,omitempty"`
	UnderTwentyLbs *bool      `json:"under_twenty_lbs,omitempty"`
}

// BackendTotals holds the server-computed money and weight figures.
type BackendTotals struct {
	Subtotal       float64 `json:"subtotal"`
	Total          float64 `json:"total"`
	Weight         float64 `json:"weight"`
	UnderTwentyLbs bool    `json:"under_twenty_lbs"`
}

// BackendTotals fills missing fields: total falls back to subtotal, and
// everything else to zero values.
func (d *CartDTO) BackendTotals() BackendTotals {
	var t BackendTotals
	if d.Subtotal != nil {
		t.Subtotal = *d.Subtotal
	}
	switch {
	case d.Total != nil:
		t.Total = *d.Total
	case d.Subtotal != nil:
		t.Total = *d.Subtotal
	}
	if d.Weight != nil {
		t.Weight = *d.Weight
	}
	if d.UnderTwentyLbs != nil {
		t.UnderTwentyLbs = *d.UnderTwentyLbs
	}
	return t
}

// Totals are the display-ready figures derived from cart state.
type Totals struct {
	Count    int     `json:"count"`    // Quantity of non-fee items
	Subtotal float64 `json:"subtotal"` // Backend subtotal minus the fee line
	Fees     float64 `json:"fees"`     // Never negative
	Total    float64 `json:"total"`
}
