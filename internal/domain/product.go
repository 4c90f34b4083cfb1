package domain

type Product struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
	Weight  float64 `json:"weight"`
	InStock bool    `json:"in_stock"`
}

// ProductQuery mirrors the catalog listing parameters.
type ProductQuery struct {
	Page   int
	Limit  int
	Search string
}

type ProductPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}
