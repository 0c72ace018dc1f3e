package entity

// LineItem is one reconstructed row of a pack slip. Quantity is always
// strictly positive on any item the parser emits.
type LineItem struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Notes       string  `json:"notes"`
}
